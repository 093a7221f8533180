package sqlstmt_test

import (
	"context"
	"testing"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/sqlstmt"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

type fakeExecutor struct {
	lastStmt string
	lastArgs []*xproto.Message
}

func (f *fakeExecutor) ExecuteSQL(ctx context.Context, stmt string, args []*xproto.Message) (*result.Result, error) {
	f.lastStmt = stmt
	f.lastArgs = args
	tr := &fakeTransport{}
	return result.New(tr, result.StateAwaitExecOkInitial, nil), nil
}

type fakeTransport struct{ served bool }

func (f *fakeTransport) ReadServerMessage(ctx context.Context) (xproto.Kind, *xproto.Message, error) {
	if f.served {
		return 0, nil, xerr.New(xerr.KindTransportLost, "sqlstmt_test: no more frames")
	}
	f.served = true
	m := xproto.NewMessage("StmtExecuteOk")
	m.SetUint64("rows_affected", 1)
	return xproto.KindSQLStmtExecuteOk, m, nil
}

func TestStmtBindPositionalArgs(t *testing.T) {
	fe := &fakeExecutor{}
	_, err := sqlstmt.New(fe, "update people set age = ? where id = ?").Bind(30).Bind(7).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(fe.lastArgs) != 2 {
		t.Fatalf("len(args) = %d, want 2", len(fe.lastArgs))
	}
	if fe.lastArgs[0].GetInt64("v_signed_int") != 30 {
		t.Fatalf("arg0 = %d, want 30", fe.lastArgs[0].GetInt64("v_signed_int"))
	}
	if fe.lastArgs[1].GetInt64("v_signed_int") != 7 {
		t.Fatalf("arg1 = %d, want 7", fe.lastArgs[1].GetInt64("v_signed_int"))
	}
}

func TestStmtBindAfterExecuteFails(t *testing.T) {
	fe := &fakeExecutor{}
	s := sqlstmt.New(fe, "select 1")
	if _, err := s.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := s.Bind(1).Execute(context.Background()); !xerr.Is(err, xerr.KindChainViolation) {
		t.Fatalf("err = %v, want chain-violation", err)
	}
}

func TestStmtUnsupportedBindType(t *testing.T) {
	fe := &fakeExecutor{}
	type weird struct{}
	_, err := sqlstmt.New(fe, "select ?").Bind(weird{}).Execute(context.Background())
	if !xerr.Is(err, xerr.KindMalformed) {
		t.Fatalf("err = %v, want malformed", err)
	}
}
