package mysqlx_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mysqlx-shell/core/mysqlx"
	"github.com/mysqlx-shell/core/session"
	"github.com/mysqlx-shell/core/wire"
	"github.com/mysqlx-shell/core/xproto"
)

func writeMsg(t *testing.T, c *wire.Conn, kind xproto.Kind, m *xproto.Message) error {
	t.Helper()
	payload, err := xproto.Encode(kind, m)
	if err != nil {
		return err
	}
	return c.WriteFrame(byte(kind), payload)
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

// bootstrapServer answers only the connect sequence (capabilities, auth,
// bootstrap query).
func bootstrapServer(t *testing.T, conn net.Conn) {
	t.Helper()
	sc := wire.NewConn(conn)
	defer conn.Close()

	if _, err := sc.ReadFrame(); err != nil {
		return
	}
	if err := writeMsg(t, sc, xproto.KindOk, xproto.NewMessage("Ok")); err != nil {
		return
	}
	if _, err := sc.ReadFrame(); err != nil {
		return
	}
	if err := writeMsg(t, sc, xproto.KindSessAuthenticateOk, xproto.NewMessage("AuthenticateOk")); err != nil {
		return
	}
	if _, err := sc.ReadFrame(); err != nil {
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
		if err := writeMsg(t, sc, xproto.KindResultsetColumnMetaData, cm); err != nil {
			return
		}
	}
	row := xproto.NewMessage("Row")
	row.AppendBytes("fields", mustScalarUint(0))
	row.AppendBytes("fields", mustScalarBytes("8.0.99-fake"))
	row.AppendBytes("fields", mustScalarUint(7))
	row.AppendBytes("fields", mustScalarBytes("AES128-GCM-SHA256"))
	if err := writeMsg(t, sc, xproto.KindResultsetRow, row); err != nil {
		return
	}
	if err := writeMsg(t, sc, xproto.KindResultsetFetchDone, xproto.NewMessage("FetchDone")); err != nil {
		return
	}
	_ = writeMsg(t, sc, xproto.KindSQLStmtExecuteOk, xproto.NewMessage("StmtExecuteOk"))
}

// TestSchemaCollectionTableWiring connects over a fake server and verifies
// that Schema/Collection/Table produce builders wired to the same
// underlying session (spec §6 "External interfaces").
func TestSchemaCollectionTableWiring(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		bootstrapServer(t, conn)
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

	s, err := mysqlx.Connect(ctx, opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	<-done
	defer s.Close(ctx)

	schema := s.Schema("myschema")
	if schema.Name() != "myschema" {
		t.Fatalf("schema name = %q", schema.Name())
	}
	if fb := schema.Collection("people").Find("age > 1"); fb == nil {
		t.Fatal("Collection.Find returned nil")
	}
	if fb := schema.Table("people").Select("name"); fb == nil {
		t.Fatal("Table.Select returned nil")
	}
}
