package result_test

import (
	"context"
	"testing"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

type frame struct {
	kind xproto.Kind
	m    *xproto.Message
}

type fakeTransport struct {
	frames []frame
	pos    int
}

func (f *fakeTransport) ReadServerMessage(ctx context.Context) (xproto.Kind, *xproto.Message, error) {
	if f.pos >= len(f.frames) {
		return 0, nil, xerr.New(xerr.KindTransportLost, "result_test: no more frames")
	}
	fr := f.frames[f.pos]
	f.pos++
	return fr.kind, fr.m, nil
}

func columnMeta(name string, typ uint32) frame {
	m := xproto.NewMessage("ColumnMetaData")
	m.SetUint64("type", uint64(typ))
	m.SetString("name", name)
	return frame{xproto.KindResultsetColumnMetaData, m}
}

func row(values ...[]byte) frame {
	m := xproto.NewMessage("Row")
	for _, v := range values {
		m.AppendBytes("fields", v)
	}
	return frame{xproto.KindResultsetRow, m}
}

func scalarString(s string) []byte {
	sc := xproto.NewMessage("Scalar")
	sc.SetUint64("type", xproto.ScalarString)
	sc.SetBytes("v_string", []byte(s))
	payload, err := xproto.EncodeScalar(sc)
	if err != nil {
		panic(err)
	}
	return payload
}

func scalarInt(v int64) []byte {
	sc := xproto.NewMessage("Scalar")
	sc.SetUint64("type", xproto.ScalarSignedInt)
	sc.SetInt64("v_signed_int", v)
	payload, err := xproto.EncodeScalar(sc)
	if err != nil {
		panic(err)
	}
	return payload
}

func fetchDone() frame {
	return frame{xproto.KindResultsetFetchDone, xproto.NewMessage("FetchDone")}
}

func fetchDoneMore() frame {
	return frame{xproto.KindResultsetFetchDoneMoreResultsets, xproto.NewMessage("FetchDoneMoreResultsets")}
}

func execOk(affected, lastID uint64) frame {
	m := xproto.NewMessage("StmtExecuteOk")
	m.SetUint64("rows_affected", affected)
	m.SetUint64("last_insert_id", lastID)
	return frame{xproto.KindSQLStmtExecuteOk, m}
}

func noticeWarning(level, code uint32, text string) frame {
	w := xproto.NewMessage("Warning")
	w.SetUint64("level", uint64(level))
	w.SetUint64("code", uint64(code))
	w.SetString("msg", text)
	payload, err := xproto.EncodeNamed(w)
	if err != nil {
		panic(err)
	}
	n := xproto.NewMessage("Notice")
	n.SetUint64("type", 1)
	n.SetBytes("payload", payload)
	return frame{xproto.KindNotice, n}
}

func TestSQLSelectSingleRow(t *testing.T) {
	tr := &fakeTransport{frames: []frame{
		columnMeta("n", uint32(result.ColSignedInt)),
		columnMeta("s", uint32(result.ColBytes)),
		row(scalarInt(1), scalarString("x")),
		fetchDone(),
		execOk(0, 0),
	}}
	r := result.New(tr, result.StateAwaitMetadataInitial, nil)
	rows, err := r.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	n, err := rows[0].Int64(0)
	if err != nil || n != 1 {
		t.Fatalf("col0 = %d, %v", n, err)
	}
	s, err := rows[0].String(1)
	if err != nil || s != "x" {
		t.Fatalf("col1 = %q, %v", s, err)
	}
	if r.AffectedItems() != -1 {
		t.Fatalf("affected = %d, want -1", r.AffectedItems())
	}
}

func TestSQLInsertExecOk(t *testing.T) {
	tr := &fakeTransport{frames: []frame{execOk(1, 42)}}
	r := result.New(tr, result.StateAwaitExecOkInitial, nil)
	if r.HasData() {
		t.Fatal("insert result should not have data")
	}
	row, err := r.Next(context.Background())
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if row != nil {
		t.Fatal("expected no row")
	}
	if r.AffectedItems() != 1 {
		t.Fatalf("affected = %d, want 1", r.AffectedItems())
	}
	if r.LastInsertID() != 42 {
		t.Fatalf("lastInsertID = %d, want 42", r.LastInsertID())
	}
}

func TestMultiResultSetTraversal(t *testing.T) {
	tr := &fakeTransport{frames: []frame{
		columnMeta("n", uint32(result.ColSignedInt)),
		row(scalarInt(1)),
		row(scalarInt(2)),
		row(scalarInt(3)),
		fetchDoneMore(),
		columnMeta("n", uint32(result.ColSignedInt)),
		row(scalarInt(4)),
		row(scalarInt(5)),
		fetchDone(),
		execOk(0, 0),
	}}
	r := result.New(tr, result.StateAwaitMetadataInitial, nil)
	ctx := context.Background()
	first, err := r.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll 1: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first set len = %d, want 3", len(first))
	}
	more, err := r.NextResultSet(ctx)
	if err != nil {
		t.Fatalf("NextResultSet: %v", err)
	}
	if !more {
		t.Fatal("expected another result set")
	}
	second, err := r.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll 2: %v", err)
	}
	if len(second) != 2 {
		t.Fatalf("second set len = %d, want 2", len(second))
	}
	more, err = r.NextResultSet(ctx)
	if err != nil {
		t.Fatalf("NextResultSet 2: %v", err)
	}
	if more {
		t.Fatal("expected no more result sets")
	}
}

func TestNoticeTransparency(t *testing.T) {
	tr := &fakeTransport{frames: []frame{
		columnMeta("n", uint32(result.ColSignedInt)),
		noticeWarning(1, 1265, "data truncated"),
		row(scalarInt(1)),
		noticeWarning(2, 1364, "field has no default"),
		row(scalarInt(2)),
		fetchDone(),
		execOk(0, 0),
	}}
	r := result.New(tr, result.StateAwaitMetadataInitial, nil)
	rows, err := r.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	warnings := r.Warnings()
	if len(warnings) != 2 {
		t.Fatalf("len(warnings) = %d, want 2", len(warnings))
	}
	if warnings[0].Code != 1265 || warnings[1].Code != 1364 {
		t.Fatalf("warnings = %+v", warnings)
	}
}

func TestProtocolViolationOnUnexpectedKind(t *testing.T) {
	tr := &fakeTransport{frames: []frame{execOk(0, 0), execOk(0, 0)}}
	r := result.New(tr, result.StateAwaitExecOkInitial, nil)
	ctx := context.Background()
	if _, err := r.Next(ctx); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	// state machine is already done; a further explicit step would be a
	// caller bug, not exercised here. Instead force a genuine mismatch:
	// await-exec-ok-initial never accepts a row.
	tr2 := &fakeTransport{frames: []frame{row(scalarInt(1))}}
	r2 := result.New(tr2, result.StateAwaitExecOkInitial, nil)
	if _, err := r2.Next(ctx); !xerr.Is(err, xerr.KindProtocolViolation) {
		t.Fatalf("err = %v, want protocol-violation", err)
	}
}
