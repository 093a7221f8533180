package session_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mysqlx-shell/core/session"
	"github.com/mysqlx-shell/core/wire"
	"github.com/mysqlx-shell/core/xproto"
)

// fakeServer plays the minimum server side of the connect sequence with
// TLS disabled and PLAIN authentication: one capabilities-set ack, one
// auth-ok, and a canned bootstrap-query response.
func fakeServer(t *testing.T, conn net.Conn) {
	t.Helper()
	sc := wire.NewConn(conn)
	defer conn.Close()

	// capabilities-set (client.pwd_expire_ok) -> Ok
	if _, err := sc.ReadFrame(); err != nil {
		t.Errorf("fakeServer: read capabilities-set: %v", err)
		return
	}
	if err := writeMsg(sc, xproto.KindOk, xproto.NewMessage("Ok")); err != nil {
		t.Errorf("fakeServer: write ok: %v", err)
		return
	}

	// authenticate-start (PLAIN) -> authenticate-ok
	if _, err := sc.ReadFrame(); err != nil {
		t.Errorf("fakeServer: read auth start: %v", err)
		return
	}
	if err := writeMsg(sc, xproto.KindSessAuthenticateOk, xproto.NewMessage("AuthenticateOk")); err != nil {
		t.Errorf("fakeServer: write auth ok: %v", err)
		return
	}

	// bootstrap StmtExecute -> 4 columns, 1 row, fetch-done, exec-ok
	if _, err := sc.ReadFrame(); err != nil {
		t.Errorf("fakeServer: read bootstrap stmt: %v", err)
		return
	}
	cols := []struct {
		name string
		typ  uint64
	}{
		{"@@lower_case_table_names", 1},
		{"@@version", 5},
		{"connection_id()", 2},
		{"variable_value", 5},
	}
	for _, c := range cols {
		cm := xproto.NewMessage("ColumnMetaData")
		cm.SetUint64("type", c.typ)
		cm.SetString("name", c.name)
		if err := writeMsg(sc, xproto.KindResultsetColumnMetaData, cm); err != nil {
			t.Errorf("fakeServer: write column: %v", err)
			return
		}
	}
	row := xproto.NewMessage("Row")
	row.AppendBytes("fields", mustScalarInt(0))
	row.AppendBytes("fields", mustScalarBytes("8.0.99-fake"))
	row.AppendBytes("fields", mustScalarUint(42))
	row.AppendBytes("fields", mustScalarBytes("AES128-GCM-SHA256"))
	if err := writeMsg(sc, xproto.KindResultsetRow, row); err != nil {
		t.Errorf("fakeServer: write row: %v", err)
		return
	}
	if err := writeMsg(sc, xproto.KindResultsetFetchDone, xproto.NewMessage("FetchDone")); err != nil {
		t.Errorf("fakeServer: write fetch-done: %v", err)
		return
	}
	ok := xproto.NewMessage("StmtExecuteOk")
	if err := writeMsg(sc, xproto.KindSQLStmtExecuteOk, ok); err != nil {
		t.Errorf("fakeServer: write exec-ok: %v", err)
		return
	}
}

func writeMsg(c *wire.Conn, kind xproto.Kind, m *xproto.Message) error {
	payload, err := xproto.Encode(kind, m)
	if err != nil {
		return err
	}
	return c.WriteFrame(byte(kind), payload)
}

func mustScalarInt(v int64) []byte {
	m := xproto.NewMessage("Scalar")
	m.SetUint64("type", xproto.ScalarSignedInt)
	m.SetInt64("v_signed_int", v)
	payload, err := xproto.EncodeScalar(m)
	if err != nil {
		panic(err)
	}
	return payload
}

func mustScalarUint(v uint64) []byte {
	m := xproto.NewMessage("Scalar")
	m.SetUint64("type", xproto.ScalarUnsignedInt)
	m.SetUint64("v_unsigned_int", v)
	payload, err := xproto.EncodeScalar(m)
	if err != nil {
		panic(err)
	}
	return payload
}

func mustScalarBytes(s string) []byte {
	m := xproto.NewMessage("Scalar")
	m.SetUint64("type", xproto.ScalarString)
	m.SetBytes("v_string", []byte(s))
	payload, err := xproto.EncodeScalar(m)
	if err != nil {
		panic(err)
	}
	return payload
}

// fakeServerExpiredAccount plays the same sequence as fakeServer, but
// signals account-expired via a SessionStateChanged notice interleaved
// before AuthenticateOk and never expects the bootstrap StmtExecute (spec
// §4.3 "Authentication", §8 scenario S3).
func fakeServerExpiredAccount(t *testing.T, conn net.Conn) {
	t.Helper()
	sc := wire.NewConn(conn)
	defer conn.Close()

	if _, err := sc.ReadFrame(); err != nil {
		t.Errorf("fakeServerExpiredAccount: read capabilities-set: %v", err)
		return
	}
	if err := writeMsg(sc, xproto.KindOk, xproto.NewMessage("Ok")); err != nil {
		t.Errorf("fakeServerExpiredAccount: write ok: %v", err)
		return
	}

	if _, err := sc.ReadFrame(); err != nil {
		t.Errorf("fakeServerExpiredAccount: read auth start: %v", err)
		return
	}
	if err := writeMsg(sc, xproto.KindNotice, accountExpiredNotice()); err != nil {
		t.Errorf("fakeServerExpiredAccount: write notice: %v", err)
		return
	}
	if err := writeMsg(sc, xproto.KindSessAuthenticateOk, xproto.NewMessage("AuthenticateOk")); err != nil {
		t.Errorf("fakeServerExpiredAccount: write auth ok: %v", err)
		return
	}
}

const sessionStateAccountExpired = 2

func accountExpiredNotice() *xproto.Message {
	state := xproto.NewMessage("SessionStateChanged")
	state.SetUint64("param", sessionStateAccountExpired)
	payload, err := xproto.EncodeNamed(state)
	if err != nil {
		panic(err)
	}
	n := xproto.NewMessage("Notice")
	n.SetUint64("type", 3) // noticeTypeSessionStateChanged
	n.SetBytes("payload", payload)
	return n
}

// TestConnectExpiredAccountSkipsBootstrap is scenario S3 (spec §8, §4.3):
// an account-expired notice interleaved during authentication sets
// PasswordExpired and Connect succeeds without running the bootstrap query
// (which the fake server never serves here — a bootstrap attempt would
// hang the read and fail the test via the context deadline).
func TestConnectExpiredAccountSkipsBootstrap(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		fakeServerExpiredAccount(t, conn)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	opts := session.Options{
		Host:       "127.0.0.1",
		Port:       addr.Port,
		User:       "alice",
		Password:   "secret",
		AuthMethod: "PLAIN",
	}
	opts.SetTLSMode(session.TLSDisabled)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := session.Connect(ctx, opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close(ctx)

	if !s.PasswordExpired {
		t.Fatal("expected PasswordExpired to be true")
	}
	if s.ConnectionID != 0 {
		t.Fatalf("ConnectionID = %d, want 0 (bootstrap must not have run)", s.ConnectionID)
	}
}

func TestConnectPlainNoTLS(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		fakeServer(t, conn)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	opts := session.Options{
		Host:       "127.0.0.1",
		Port:       addr.Port,
		User:       "alice",
		Password:   "secret",
		AuthMethod: "PLAIN",
	}
	opts.SetTLSMode(session.TLSDisabled)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := session.Connect(ctx, opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close(ctx)

	if s.ConnectionID != 42 {
		t.Fatalf("ConnectionID = %d, want 42", s.ConnectionID)
	}
	if s.ServerVersion.Major != 8 {
		t.Fatalf("ServerVersion.Major = %d, want 8", s.ServerVersion.Major)
	}
	if !s.CaseSensitiveIdentifiers {
		t.Fatal("expected case-sensitive identifiers (lower_case_table_names == 0)")
	}
	if s.TLSCipher != "AES128-GCM-SHA256" {
		t.Fatalf("TLSCipher = %q", s.TLSCipher)
	}
}
