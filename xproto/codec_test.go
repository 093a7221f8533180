package xproto_test

import (
	"testing"

	"github.com/mysqlx-shell/core/xproto"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := xproto.NewMessage("AuthenticateStart")
	m.SetString("mech_name", "MYSQL41")
	m.SetBytes("auth_data", []byte{1, 2, 3})

	payload, err := xproto.Encode(xproto.KindSessAuthenticateStart, m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := xproto.Decode(xproto.KindSessAuthenticateStart, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.GetString("mech_name") != "MYSQL41" {
		t.Fatalf("mech_name = %q", decoded.GetString("mech_name"))
	}
	if string(decoded.GetBytes("auth_data")) != "\x01\x02\x03" {
		t.Fatalf("auth_data mismatch")
	}
}

func TestDecodeUnregisteredKindFailsMalformed(t *testing.T) {
	_, err := xproto.Decode(xproto.Kind(200), []byte{0x00})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestKindPartition(t *testing.T) {
	if !xproto.KindSessAuthenticateStart.IsClient() {
		t.Fatal("AuthenticateStart should be client kind")
	}
	if !xproto.KindOk.IsServer() {
		t.Fatal("Ok should be server kind")
	}
	if err := xproto.CheckPartition(xproto.KindOk, false); err == nil {
		t.Fatal("expected protocol-violation crossing partition")
	}
}

func TestExprNestedMessageRoundTrip(t *testing.T) {
	find := xproto.NewMessage("Find")
	criteria := find.GetMessage("criteria", "Expr")
	criteria.SetUint64("type", 5) // OPERATOR
	criteria.SetString("function_name", ">")
	lhs := criteria.AppendMessage("args", "Expr")
	lhs.SetUint64("type", 1) // IDENT
	ident := lhs.GetMessage("identifier", "ColumnIdentifier")
	ident.SetString("name", "age")

	payload, err := xproto.Encode(xproto.KindCrudFind, find)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := xproto.Decode(xproto.KindCrudFind, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	dCriteria := decoded.GetMessage("criteria", "Expr")
	if dCriteria.GetString("function_name") != ">" {
		t.Fatalf("function_name = %q", dCriteria.GetString("function_name"))
	}
	args := dCriteria.Repeated("args", "Expr")
	if len(args) != 1 {
		t.Fatalf("args len = %d, want 1", len(args))
	}
	dIdent := args[0].GetMessage("identifier", "ColumnIdentifier")
	if dIdent.GetString("name") != "age" {
		t.Fatalf("identifier name = %q", dIdent.GetString("name"))
	}
}
