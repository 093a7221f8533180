package result

import (
	"container/list"
	"context"
	"time"

	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// Transport is the minimal read surface the state machine needs from a
// session connection: pull the next server frame, already partitioned and
// decoded. Defined here (rather than imported from session) so that
// session can depend on result without a cycle.
type Transport interface {
	ReadServerMessage(ctx context.Context) (xproto.Kind, *xproto.Message, error)
}

// Notice carries one dispatched asynchronous server notice (spec §4.2
// "Notice dispatch"). Exactly one of the typed fields is set.
type Notice struct {
	Warning                *Warning
	SessionVariableChanged *SessionVariableChanged
	SessionStateChanged    *SessionStateChanged
}

// SessionVariableChanged reports a server-side session variable update.
type SessionVariableChanged struct {
	Name  string
	Value []byte
}

// SessionStateChanged reports a server-side session state transition; Param
// follows the wire's small integer enumeration (account-expired, etc).
type SessionStateChanged struct {
	Param uint32
	Value []byte
}

// NoticeHandler receives every dispatched notice, in arrival order,
// synchronously. It never influences Result state (spec §4.2).
type NoticeHandler func(Notice)

const (
	noticeTypeWarning                = 1
	noticeTypeSessionVariableChanged = 2
	noticeTypeSessionStateChanged    = 3
)

// Result is one statement's response stream (spec §3, §4.2). Exactly one
// Result is live per session at a time; submitting a new statement while a
// Result is live implicitly buffers the old one to completion.
type Result struct {
	transport Transport
	notices   NoticeHandler

	state State

	columns  []Column
	buffered *list.List // of *Row, already-fetched but not yet returned to the caller

	lastInsertID  int64
	affectedItems int64
	info          string
	warnings      []Warning

	started time.Time
	ended   time.Time

	moreResultSets bool
	atBoundary     bool // true once fetch-done-more-resultsets has been seen and not yet consumed by NextResultSet
	err            error
}

// New constructs a Result in the given initial state (await-metadata-initial
// for statements that may return rows, await-exec-ok-initial otherwise; spec
// §4.2 "Initial state"), reading from transport and dispatching notices to
// notices (which may be nil).
func New(transport Transport, initial State, notices NoticeHandler) *Result {
	return &Result{
		transport:     transport,
		notices:       notices,
		state:         initial,
		buffered:      list.New(),
		lastInsertID:  -1,
		affectedItems: -1,
		started:       time.Now(),
	}
}

// HasData reports whether this statement produced a row-bearing result set
// (as opposed to a bare exec-ok).
func (r *Result) HasData() bool {
	switch r.state {
	case StateAwaitMetadataInitial, StateAwaitExecOkInitial:
		return r.state == StateAwaitMetadataInitial
	}
	return len(r.columns) > 0 || r.buffered.Len() > 0 || r.state == StateAwaitRows || r.state == StateAwaitMetadata
}

// ColumnMetadata returns the current result set's columns. Empty until
// metadata has actually been read off the wire.
func (r *Result) ColumnMetadata() []Column { return append([]Column(nil), r.columns...) }

// AffectedItems returns the number of rows/documents affected, or -1 if
// not yet known / not applicable.
func (r *Result) AffectedItems() int64 { return r.affectedItems }

// LastInsertID returns the generated id, or -1 if none.
func (r *Result) LastInsertID() int64 { return r.lastInsertID }

// Warnings returns every warning/note accumulated so far, in arrival order.
func (r *Result) Warnings() []Warning { return append([]Warning(nil), r.warnings...) }

// ExecutionTime reports wall-clock time from Result creation to reaching a
// terminal state; zero while still in flight.
func (r *Result) ExecutionTime() time.Duration {
	if r.ended.IsZero() {
		return 0
	}
	return r.ended.Sub(r.started)
}

// State exposes the current automaton state, primarily for tests.
func (r *Result) State() State { return r.state }

func (r *Result) finish() {
	if r.ended.IsZero() {
		r.ended = time.Now()
	}
}

// step reads and applies exactly one inbound non-notice message, dispatching
// any notices encountered transparently along the way, per the transition
// table in spec §4.2.
func (r *Result) step(ctx context.Context) error {
	for {
		kind, m, err := r.transport.ReadServerMessage(ctx)
		if err != nil {
			r.state = StateError
			r.err = err
			r.finish()
			return err
		}
		if kind == xproto.KindNotice {
			r.dispatchNotice(m)
			continue
		}
		if kind == xproto.KindError {
			xe := errorFromMessage(m)
			r.state = StateError
			r.err = xe
			r.finish()
			return xe
		}
		return r.apply(kind, m)
	}
}

func errorFromMessage(m *xproto.Message) error {
	code := uint32(m.GetUint64("code"))
	if xerr.IsTransportLostCode(code) {
		return xerr.New(xerr.KindTransportLost, "result: server reported code %d", code)
	}
	return xerr.Server(code, m.GetString("sql_state"), m.GetString("msg"))
}

// DecodeNotice decodes a raw Notice frame's payload into a Notice. Exported
// so callers that dispatch notices outside of a live Result's transport
// loop (session's handshake, which can carry a SessionStateChanged
// account-expired notice before any Result exists, spec §4.2, §4.3) can
// reuse the same decoding the state machine uses internally. ok is false
// for an unrecognised notice type.
func DecodeNotice(n *xproto.Message) (Notice, bool) {
	payload := n.GetBytes("payload")
	switch n.GetUint64("type") {
	case noticeTypeWarning:
		w, err := xproto.DecodeNamed("Warning", payload)
		if err != nil {
			return Notice{}, false
		}
		warn := newWarning(uint32(w.GetUint64("level")), uint32(w.GetUint64("code")), w.GetString("msg"))
		return Notice{Warning: &warn}, true
	case noticeTypeSessionVariableChanged:
		v, err := xproto.DecodeNamed("SessionVariableChanged", payload)
		if err != nil {
			return Notice{}, false
		}
		return Notice{SessionVariableChanged: &SessionVariableChanged{
			Name: v.GetString("name"), Value: v.GetBytes("value"),
		}}, true
	case noticeTypeSessionStateChanged:
		s, err := xproto.DecodeNamed("SessionStateChanged", payload)
		if err != nil {
			return Notice{}, false
		}
		return Notice{SessionStateChanged: &SessionStateChanged{
			Param: uint32(s.GetUint64("param")), Value: s.GetBytes("value"),
		}}, true
	}
	return Notice{}, false
}

func (r *Result) dispatchNotice(n *xproto.Message) {
	notice, ok := DecodeNotice(n)
	if !ok {
		return
	}
	if notice.Warning != nil {
		r.warnings = append(r.warnings, *notice.Warning)
	}
	if r.notices != nil {
		r.notices(notice)
	}
}

// apply advances the state machine for one non-notice, non-error message,
// per the transition table in spec §4.2.
func (r *Result) apply(kind xproto.Kind, m *xproto.Message) error {
	switch r.state {
	case StateAwaitMetadataInitial:
		switch kind {
		case xproto.KindResultsetColumnMetaData:
			r.pushColumn(m)
			r.state = StateAwaitMetadata
			return nil
		case xproto.KindSQLStmtExecuteOk:
			r.storeExecStats(m)
			r.state = StateDone
			r.finish()
			return nil
		}
	case StateAwaitMetadata:
		switch kind {
		case xproto.KindResultsetColumnMetaData:
			r.pushColumn(m)
			return nil
		case xproto.KindResultsetRow:
			r.bufferRow(m)
			r.state = StateAwaitRows
			return nil
		case xproto.KindResultsetFetchDone:
			r.state = StateAwaitExecOk
			return nil
		}
	case StateAwaitRows:
		switch kind {
		case xproto.KindResultsetRow:
			r.bufferRow(m)
			return nil
		case xproto.KindResultsetFetchDone:
			r.state = StateAwaitExecOk
			return nil
		case xproto.KindResultsetFetchDoneMoreResultsets:
			r.columns = nil
			r.moreResultSets = true
			r.atBoundary = true
			r.state = StateAwaitMetadata
			return nil
		}
	case StateAwaitExecOkInitial, StateAwaitExecOk:
		if kind == xproto.KindSQLStmtExecuteOk {
			r.storeExecStats(m)
			r.state = StateDone
			r.finish()
			return nil
		}
	}
	r.err = xerr.New(xerr.KindProtocolViolation, "result: unexpected kind %d in state %s", kind, r.state)
	r.state = StateError
	r.finish()
	return r.err
}

func (r *Result) pushColumn(m *xproto.Message) {
	r.columns = append(r.columns, Column{
		Type:             ColumnType(m.GetUint64("type")),
		Name:             m.GetString("name"),
		OriginalName:     m.GetString("original_name"),
		Table:            m.GetString("table"),
		OriginalTable:    m.GetString("original_table"),
		Schema:           m.GetString("schema"),
		Catalog:          m.GetString("catalog"),
		CharsetID:        m.GetUint64("collation"),
		FractionalDigits: uint32(m.GetUint64("fractional_digits")),
		Length:           uint32(m.GetUint64("length")),
		Flags:            uint32(m.GetUint64("flags")),
		ContentType:      uint32(m.GetUint64("content_type")),
	})
}

func (r *Result) bufferRow(m *xproto.Message) {
	fields := m.RepeatedBytes("fields")
	r.buffered.PushBack(newRow(r.columns, fields))
}

func (r *Result) storeExecStats(m *xproto.Message) {
	if len(r.columns) == 0 {
		r.affectedItems = int64(m.GetUint64("rows_affected"))
	}
	if id := m.GetUint64("last_insert_id"); id != 0 {
		r.lastInsertID = int64(id)
	}
	r.info = m.GetString("message")
}

// Info returns the server's human-readable completion message, if any.
func (r *Result) Info() string { return r.info }

// Next drives the state machine forward until either a row is yielded or
// the terminal state is reached (spec §4.2 "Streaming"). Returns (nil, nil)
// at end of result set.
func (r *Result) Next(ctx context.Context) (*Row, error) {
	if r.buffered.Len() > 0 {
		front := r.buffered.Remove(r.buffered.Front())
		return front.(*Row), nil
	}
	for r.state != StateDone && r.state != StateError && !r.atBoundary {
		if err := r.step(ctx); err != nil {
			return nil, err
		}
		if r.buffered.Len() > 0 {
			front := r.buffered.Remove(r.buffered.Front())
			return front.(*Row), nil
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return nil, nil
}

// Buffer drains all remaining rows of the current result set into the
// internal deque (or every remaining result set, when all is true),
// leaving the state machine at done, or at await-metadata if a
// multi-resultset pre-fetch was partial (spec §4.2 "Pre-fetch").
func (r *Result) Buffer(ctx context.Context, all bool) error {
	for {
		for r.state != StateDone && r.state != StateError && !r.atBoundary {
			if err := r.step(ctx); err != nil {
				return err
			}
		}
		if r.state == StateError {
			return r.err
		}
		if r.atBoundary {
			if !all {
				return nil
			}
			r.atBoundary = false
			continue
		}
		return nil
	}
}

// NextResultSet drains outstanding rows of the current set, then advances
// to the next one if the server announced more (spec §4.2 "Multi-result-set
// traversal").
func (r *Result) NextResultSet(ctx context.Context) (bool, error) {
	for r.state != StateDone && r.state != StateError && !r.atBoundary {
		if err := r.step(ctx); err != nil {
			return false, err
		}
	}
	if r.state == StateError {
		return false, r.err
	}
	if r.atBoundary {
		r.atBoundary = false
		r.moreResultSets = false
		return true, nil
	}
	return false, nil
}

// FetchOne is an alias for Next kept for parity with the public facade's
// naming (spec §6 `Result.fetch_one`).
func (r *Result) FetchOne(ctx context.Context) (*Row, error) { return r.Next(ctx) }

// FetchAll drains the current result set and returns every row.
func (r *Result) FetchAll(ctx context.Context) ([]*Row, error) {
	var rows []*Row
	for {
		row, err := r.Next(ctx)
		if err != nil {
			return rows, err
		}
		if row == nil {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// Rewind re-queues the rows passed in, in order, ahead of the rows still
// buffered, so the next Next returns returned[0]. It has no effect on rows
// not yet read off the wire.
func (r *Result) Rewind(returned []*Row) {
	fresh := list.New()
	for _, row := range returned {
		fresh.PushBack(row)
	}
	fresh.PushBackList(r.buffered)
	r.buffered = fresh
}
