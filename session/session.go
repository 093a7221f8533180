package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/tracepb"
	"github.com/mysqlx-shell/core/wire"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

const bootstrapQuery = "select @@lower_case_table_names, @@version, connection_id(), " +
	"variable_value from performance_schema.session_status where variable_name='mysqlx_ssl_cipher'"

// ServerVersion is the parsed three-part semantic version reported by the
// server (spec §3 "Session").
type ServerVersion struct {
	Major, Minor, Patch int
}

// Session owns exactly one transport and tracks session-wide state (spec
// §3 "Session"). Not safe for concurrent use (spec §5).
type Session struct {
	conn *wire.Conn

	opts Options

	ServerVersion            ServerVersion
	ConnectionID             uint64
	TLSCipher                string
	CaseSensitiveIdentifiers bool
	PasswordExpired          bool

	live *result.Result // weak-held: the currently-live Result, if any

	trace     io.Writer
	traceSink func(tracepb.Event)
	traceID   string
}

// Connect opens a transport, negotiates TLS and capabilities, authenticates,
// and (unless the account is expired) runs the bootstrap query (spec §4.3).
func Connect(ctx context.Context, opts Options) (*Session, error) {
	opts.Normalize()

	network, addr := dialTarget(opts)
	conn, err := wire.Dial(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	s := &Session{conn: conn, opts: opts, ConnectionID: 0}
	if opts.Trace || traceEnabledByEnv() {
		s.trace = traceDestination()
	}
	if opts.TraceSink != nil {
		s.traceSink = opts.TraceSink
		s.traceID = uuid.NewString()
	}

	if opts.TLSMode != TLSDisabled {
		if err := s.negotiateTLS(); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	if err := s.setCapability("client.pwd_expire_ok", true); err != nil {
		_ = conn.Close()
		return nil, err
	}

	expired, err := s.authenticate()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	s.PasswordExpired = expired

	if !expired {
		if err := s.bootstrap(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return s, nil
}

// dialTarget resolves the network/address pair, falling back to the unix
// socket when host is empty or literal "localhost" and a socket path is
// configured (spec §4.3 "Connect" step 1).
func dialTarget(opts Options) (network, addr string) {
	if (opts.Host == "" || opts.Host == "localhost") && opts.UnixSocket != "" {
		return "unix", opts.UnixSocket
	}
	port := opts.Port
	if port == 0 {
		port = 33060
	}
	return "tcp", opts.Host + ":" + strconv.Itoa(port)
}

// negotiateTLS requests TLS via a capabilities-set frame and, on
// acknowledgement, upgrades the transport in place (spec §4.3 step 2).
func (s *Session) negotiateTLS() error {
	if err := s.setCapability("tls", true); err != nil {
		if s.opts.TLSMode == TLSRequired || s.opts.TLSMode == TLSVerifyCA || s.opts.TLSMode == TLSVerifyIdentity {
			return xerr.Wrap(xerr.KindTLSHandshakeFailed, err, "session: server rejected tls capability")
		}
		return nil // preferred: fall back to plaintext
	}
	cfg, err := tlsConfig(s.opts)
	if err != nil {
		return xerr.Wrap(xerr.KindTLSHandshakeFailed, err, "session: build tls config")
	}
	if err := s.conn.UpgradeTLS(cfg); err != nil {
		return err
	}
	if cs, ok := s.conn.ConnectionState(); ok {
		s.TLSCipher = cs.CipherSuite.String()
	}
	return nil
}

func tlsConfig(opts Options) (*tls.Config, error) {
	cfg := &tls.Config{
		ServerName:         opts.Host,
		InsecureSkipVerify: opts.TLSMode == TLSRequired || opts.TLSMode == TLSPreferred,
		MinVersion:         tls.VersionTLS12,
	}
	if opts.CertPath != "" && opts.KeyPath != "" {
		cert, err := tls.LoadX509KeyPair(opts.CertPath, opts.KeyPath)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	if opts.CAPath != "" {
		pool, err := loadCAPool(opts.CAPath)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
		cfg.InsecureSkipVerify = false
	}
	return cfg, nil
}

// setCapability sends a single-capability CapabilitiesSet frame and expects
// an Ok response.
func (s *Session) setCapability(name string, value bool) error {
	set := xproto.NewMessage("CapabilitiesSet")
	capMsg := set.AppendMessage("capabilities", "Capability")
	capMsg.SetString("name", name)
	capMsg.SetBool("bool_value", value)

	if err := s.send(xproto.KindConCapabilitiesSet, set); err != nil {
		return err
	}
	kind, m, err := s.recvDispatchingNotices(context.Background())
	if err != nil {
		return err
	}
	if kind == xproto.KindError {
		return errFromMessage(m)
	}
	if kind != xproto.KindOk {
		return xerr.New(xerr.KindProtocolViolation, "session: expected ok for capability %q, got kind %d", name, kind)
	}
	return nil
}

// recvDispatchingNotices reads frames until a non-notice frame arrives,
// dispatching any notice encountered along the way to handleNotice. Notices
// can be interleaved with the handshake itself — most notably
// SessionStateChanged(account-expired), which the server sends before
// AuthenticateOk rather than waiting for a Result to exist (spec §4.2, §4.3
// "Authentication", scenario S3).
func (s *Session) recvDispatchingNotices(ctx context.Context) (xproto.Kind, *xproto.Message, error) {
	for {
		kind, m, err := s.recv(ctx)
		if err != nil {
			return 0, nil, err
		}
		if kind == xproto.KindNotice {
			if n, ok := result.DecodeNotice(m); ok {
				s.handleNotice(n)
			}
			continue
		}
		return kind, m, nil
	}
}

// authenticate runs the selected mechanism and returns whether the server
// reported the account as expired (spec §4.3 "Authentication").
func (s *Session) authenticate() (bool, error) {
	method := s.opts.AuthMethod
	if method == "" {
		if s.TLSCipher != "" {
			method = "PLAIN"
		} else {
			method = "MYSQL41"
		}
	}

	start := xproto.NewMessage("AuthenticateStart")
	start.SetString("mech_name", method)

	switch method {
	case "PLAIN":
		start.SetBytes("auth_data", authPlainData(s.opts.User, s.opts.Password))
	case "MYSQL41":
		// initial AuthenticateStart carries no data; the server challenges.
	default:
		return false, xerr.New(xerr.KindAuthFailed, "session: unknown auth method %q", method)
	}

	if err := s.send(xproto.KindSessAuthenticateStart, start); err != nil {
		return false, err
	}

	kind, m, err := s.recvDispatchingNotices(context.Background())
	if err != nil {
		return false, err
	}

	if method == "MYSQL41" {
		if kind != xproto.KindSessAuthenticateContinueServer {
			return false, s.authFailure(kind, m)
		}
		salt := m.GetBytes("auth_data")
		cont := xproto.NewMessage("AuthenticateContinue")
		cont.SetBytes("auth_data", authMySQL41Response(s.opts.Schema, s.opts.User, s.opts.Password, salt))
		if err := s.send(xproto.KindSessAuthenticateContinue, cont); err != nil {
			return false, err
		}
		kind, m, err = s.recvDispatchingNotices(context.Background())
		if err != nil {
			return false, err
		}
	}

	if kind != xproto.KindSessAuthenticateOk {
		return false, s.authFailure(kind, m)
	}

	return s.PasswordExpired, nil
}

func (s *Session) authFailure(kind xproto.Kind, m *xproto.Message) error {
	if kind == xproto.KindError {
		return xerr.Wrap(xerr.KindAuthFailed, errFromMessage(m), "session: authentication failed")
	}
	return xerr.New(xerr.KindAuthFailed, "session: unexpected kind %d during authentication", kind)
}

const (
	sessionStateAccountExpired = 2
)

func (s *Session) handleNotice(n result.Notice) {
	if n.SessionStateChanged != nil && n.SessionStateChanged.Param == sessionStateAccountExpired {
		s.PasswordExpired = true
	}
}

// bootstrap issues the bit-exact post-auth query and caches its four values
// (spec §4.3 "Post-auth bootstrapping", §6 "bit-exact").
func (s *Session) bootstrap(ctx context.Context) error {
	res, err := s.ExecuteSQL(ctx, bootstrapQuery, nil)
	if err != nil {
		return err
	}
	row, err := res.FetchOne(ctx)
	if err != nil {
		return err
	}
	if row == nil {
		return nil
	}
	lowerCaseTableNames, err := row.Int64(0)
	if err == nil {
		s.CaseSensitiveIdentifiers = lowerCaseTableNames == 0
	}
	version, err := row.String(1)
	if err == nil {
		s.ServerVersion = parseServerVersion(version)
	}
	connID, err := row.Uint64(2)
	if err == nil {
		s.ConnectionID = connID
	}
	cipher, err := row.String(3)
	if err == nil {
		s.TLSCipher = cipher
	}
	return nil
}

func parseServerVersion(s string) ServerVersion {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '-' })
	var v ServerVersion
	if len(fields) > 0 {
		v.Major, _ = strconv.Atoi(fields[0])
	}
	if len(fields) > 1 {
		v.Minor, _ = strconv.Atoi(fields[1])
	}
	if len(fields) > 2 {
		v.Patch, _ = strconv.Atoi(fields[2])
	}
	return v
}

// ExecuteSQL submits a SQL statement under the "sql" namespace and returns
// its Result in the appropriate initial state (await-metadata-initial,
// since the server decides whether data follows; spec §4.4 "Execute").
func (s *Session) ExecuteSQL(ctx context.Context, stmt string, args []*xproto.Message) (*result.Result, error) {
	return s.ExecuteStmt(ctx, "sql", stmt, args)
}

// ExecuteStmt submits a statement under the given namespace ("sql",
// "xplugin", or "mysqlx"; the "xplugin" namespace carries admin commands
// such as create_collection/list_objects/drop_collection/enable_notices/
// drop_collection_index; spec §6 "session.execute_stmt").
func (s *Session) ExecuteStmt(ctx context.Context, namespace, stmt string, args []*xproto.Message) (*result.Result, error) {
	if err := s.bufferPreviousResult(ctx); err != nil {
		return nil, err
	}
	m := xproto.NewMessage("StmtExecute")
	m.SetString("namespace", namespace)
	m.SetBytes("stmt", []byte(stmt))
	for _, a := range args {
		m.AppendMessageValue("args", a)
	}
	if err := s.send(xproto.KindSQLStmtExecute, m); err != nil {
		return nil, err
	}
	res := result.New(s, result.StateAwaitMetadataInitial, s.handleNotice)
	s.live = res
	return res, nil
}

// ExecuteCrud submits a pre-built CRUD message under the given kind and
// initial state (spec §4.4: find/select use await-metadata-initial;
// insert/update/delete use await-exec-ok-initial).
func (s *Session) ExecuteCrud(ctx context.Context, kind xproto.Kind, m *xproto.Message, initial result.State) (*result.Result, error) {
	if err := s.bufferPreviousResult(ctx); err != nil {
		return nil, err
	}
	if err := s.send(kind, m); err != nil {
		return nil, err
	}
	res := result.New(s, initial, s.handleNotice)
	s.live = res
	return res, nil
}

// bufferPreviousResult enforces the at-most-one-live-Result invariant:
// before submitting a new statement, any still-live previous Result is
// buffered to completion (spec §4.2 "At-most-one live Result invariant").
func (s *Session) bufferPreviousResult(ctx context.Context) error {
	if s.live == nil {
		return nil
	}
	prev := s.live
	s.live = nil
	if prev.State() == result.StateDone || prev.State() == result.StateError {
		return nil
	}
	return prev.Buffer(ctx, true)
}

// Trace directs canonical trace-mode text output to w (spec §4.3, §4.5).
func (s *Session) Trace(w io.Writer) { s.trace = w }

// Close flushes any outstanding Result to consume trailing frames, then
// shuts down the socket (spec §3 "Session" lifecycle).
func (s *Session) Close(ctx context.Context) error {
	if err := s.bufferPreviousResult(ctx); err != nil {
		_ = s.conn.Close()
		return err
	}
	closeMsg := xproto.NewMessage("Close")
	_ = s.send(xproto.KindConClose, closeMsg) // best effort; socket close below is authoritative
	return s.conn.Close()
}

// Abort closes the socket immediately without a graceful Close handshake,
// surfacing transport-lost on any pending read (spec §5 "Cancellation").
func (s *Session) Abort() error { return s.conn.Close() }

// send encodes and writes a client-to-server message, tracing it first if
// trace mode is enabled.
func (s *Session) send(kind xproto.Kind, m *xproto.Message) error {
	if err := xproto.CheckPartition(kind, false); err != nil {
		return err
	}
	if s.trace != nil {
		fmt.Fprintln(s.trace, xproto.TraceText("C->S", kind, m))
	}
	if s.traceSink != nil {
		s.traceSink(tracepb.Event{
			ID:        s.traceID,
			Direction: tracepb.Outbound,
			Kind:      uint32(kind),
			Summary:   xproto.TraceText("C->S", kind, m),
			StartTime: time.Now(),
		})
	}
	payload, err := xproto.Encode(kind, m)
	if err != nil {
		return err
	}
	return s.conn.WriteFrame(byte(kind), payload)
}

// recv reads and decodes the next server-to-client frame.
func (s *Session) recv(ctx context.Context) (xproto.Kind, *xproto.Message, error) {
	frame, err := s.conn.ReadFrame()
	if err != nil {
		return 0, nil, err
	}
	kind := xproto.Kind(frame.Kind)
	if err := xproto.CheckPartition(kind, true); err != nil {
		return 0, nil, err
	}
	m, err := xproto.Decode(kind, frame.Payload)
	if err != nil {
		return 0, nil, err
	}
	if s.trace != nil {
		fmt.Fprintln(s.trace, xproto.TraceText("S->C", kind, m))
	}
	if s.traceSink != nil {
		s.traceSink(tracepb.Event{
			ID:        s.traceID,
			Direction: tracepb.Inbound,
			Kind:      uint32(kind),
			Summary:   xproto.TraceText("S->C", kind, m),
			StartTime: time.Now(),
		})
	}
	return kind, m, nil
}

// ReadServerMessage implements result.Transport.
func (s *Session) ReadServerMessage(ctx context.Context) (xproto.Kind, *xproto.Message, error) {
	return s.recv(ctx)
}

func errFromMessage(m *xproto.Message) error {
	code := uint32(m.GetUint64("code"))
	if xerr.IsTransportLostCode(code) {
		return xerr.New(xerr.KindTransportLost, "session: server reported code %d", code)
	}
	return xerr.Server(code, m.GetString("sql_state"), m.GetString("msg"))
}
