package crud

import (
	"context"
	"testing"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// fakeExecutor captures the last submitted CRUD message and hands back a
// minimal Result built from canned frames, mirroring result_test.go's
// fakeTransport (no mocking library appears anywhere in the pack for this
// shape of dependency).
type fakeExecutor struct {
	lastKind xproto.Kind
	lastMsg  *xproto.Message
	frames   []fakeFrame
}

type fakeFrame struct {
	kind xproto.Kind
	m    *xproto.Message
}

func (f *fakeExecutor) ReadServerMessage(ctx context.Context) (xproto.Kind, *xproto.Message, error) {
	if len(f.frames) == 0 {
		return 0, nil, xerr.New(xerr.KindTransportLost, "crud_test: no more frames")
	}
	fr := f.frames[0]
	f.frames = f.frames[1:]
	return fr.kind, fr.m, nil
}

func (f *fakeExecutor) ExecuteCrud(ctx context.Context, kind xproto.Kind, m *xproto.Message, initial result.State) (*result.Result, error) {
	f.lastKind = kind
	f.lastMsg = m
	return result.New(f, initial, nil), nil
}

func execOk(affected uint64) fakeFrame {
	m := xproto.NewMessage("StmtExecuteOk")
	m.SetUint64("rows_affected", affected)
	return fakeFrame{xproto.KindSQLStmtExecuteOk, m}
}

func TestCrudFindWithBind(t *testing.T) {
	fe := &fakeExecutor{frames: []fakeFrame{execOk(0)}}
	col := NewCollection(fe, "myschema", "people")

	_, err := col.Find("age > :a").Bind("a", 18).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fe.lastKind != xproto.KindCrudFind {
		t.Fatalf("kind = %v, want CrudFind", fe.lastKind)
	}
	criteria := fe.lastMsg.GetMessage("criteria", "Expr")
	if criteria.GetUint64("type") != wireExprOperator {
		t.Fatalf("criteria type = %d, want operator", criteria.GetUint64("type"))
	}
	args := criteria.Repeated("args", "Expr")
	if len(args) != 2 {
		t.Fatalf("len(args) = %d, want 2", len(args))
	}
	rhs := args[1]
	if rhs.GetUint64("type") != wireExprLiteral {
		t.Fatalf("rhs type = %d, want literal", rhs.GetUint64("type"))
	}
	lit := rhs.GetMessage("literal", "Scalar")
	if lit.GetInt64("v_signed_int") != 18 {
		t.Fatalf("bound literal = %d, want 18", lit.GetInt64("v_signed_int"))
	}
}

func TestCrudFindUnboundPlaceholderFails(t *testing.T) {
	fe := &fakeExecutor{}
	col := NewCollection(fe, "myschema", "people")
	_, err := col.Find("age > :a").Execute(context.Background())
	if !xerr.Is(err, xerr.KindUnboundPlaceholder) {
		t.Fatalf("err = %v, want unbound-placeholder", err)
	}
}

func TestCrudChainGrammarRejectsRepeatedWhere(t *testing.T) {
	fe := &fakeExecutor{}
	tbl := NewTable(fe, "myschema", "people")
	fb := tbl.Select().Where("a > 1").Where("b > 2")
	if _, err := fb.Execute(context.Background()); !xerr.Is(err, xerr.KindChainViolation) {
		t.Fatalf("err = %v, want chain-violation", err)
	}
}

func TestCrudChainGrammarRejectsGroupByAfterOrderBy(t *testing.T) {
	fe := &fakeExecutor{}
	tbl := NewTable(fe, "myschema", "people")
	fb := tbl.Select().OrderBy("name").GroupBy("dept")
	if _, err := fb.Execute(context.Background()); !xerr.Is(err, xerr.KindChainViolation) {
		t.Fatalf("err = %v, want chain-violation", err)
	}
}

func TestCrudChainGrammarFullSelectAccepted(t *testing.T) {
	fe := &fakeExecutor{frames: []fakeFrame{execOk(0)}}
	tbl := NewTable(fe, "myschema", "people")
	fb := tbl.Select().
		GroupBy("dept").
		Having("count(id) > :min").
		OrderBy("name desc").
		Limit(10).
		Offset(5).
		Bind("min", 2)
	if _, err := fb.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fe.lastMsg.GetUint64("data_model") != dataModelTable {
		t.Fatalf("data_model = %d, want table", fe.lastMsg.GetUint64("data_model"))
	}
	lim := fe.lastMsg.GetMessage("limit", "Limit")
	if lim.GetUint64("row_count") != 10 || lim.GetUint64("offset") != 5 {
		t.Fatalf("limit = %+v", lim)
	}
}

func TestCrudInsertRequiresAtLeastOneRow(t *testing.T) {
	fe := &fakeExecutor{}
	col := NewCollection(fe, "myschema", "people")
	if _, err := col.Insert().Execute(context.Background()); !xerr.Is(err, xerr.KindChainViolation) {
		t.Fatalf("err = %v, want chain-violation", err)
	}
}

func TestCrudInsertValues(t *testing.T) {
	fe := &fakeExecutor{frames: []fakeFrame{execOk(1)}}
	col := NewCollection(fe, "myschema", "people")
	res, err := col.Insert().Values("alice", 30).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fe.lastKind != xproto.KindCrudInsert {
		t.Fatalf("kind = %v, want CrudInsert", fe.lastKind)
	}
	rows := fe.lastMsg.Repeated("row", "TypedRow")
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	values := rows[0].Repeated("values", "Expr")
	if len(values) != 2 {
		t.Fatalf("len(values) = %d, want 2", len(values))
	}
	if res.AffectedItems() != 1 {
		t.Fatalf("affected = %d, want 1", res.AffectedItems())
	}
}

func TestCrudUpdateRequiresAtLeastOneSet(t *testing.T) {
	fe := &fakeExecutor{}
	col := NewCollection(fe, "myschema", "people")
	if _, err := col.Update("id == 1").Execute(context.Background()); !xerr.Is(err, xerr.KindChainViolation) {
		t.Fatalf("err = %v, want chain-violation", err)
	}
}

func TestCrudUpdateSetWhereLimit(t *testing.T) {
	fe := &fakeExecutor{frames: []fakeFrame{execOk(3)}}
	col := NewCollection(fe, "myschema", "people")
	res, err := col.Update("active == true").Set("age", ":newage").Bind("newage", 31).Limit(1).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fe.lastKind != xproto.KindCrudUpdate {
		t.Fatalf("kind = %v, want CrudUpdate", fe.lastKind)
	}
	ops := fe.lastMsg.Repeated("operation", "UpdateOperation")
	if len(ops) != 1 {
		t.Fatalf("len(ops) = %d, want 1", len(ops))
	}
	if res.AffectedItems() != 3 {
		t.Fatalf("affected = %d, want 3", res.AffectedItems())
	}
}

func TestCrudDeleteWhereOrderLimit(t *testing.T) {
	fe := &fakeExecutor{frames: []fakeFrame{execOk(2)}}
	col := NewCollection(fe, "myschema", "people")
	res, err := col.Delete("age < 18").OrderBy("name").Limit(2).Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fe.lastKind != xproto.KindCrudDelete {
		t.Fatalf("kind = %v, want CrudDelete", fe.lastKind)
	}
	if res.AffectedItems() != 2 {
		t.Fatalf("affected = %d, want 2", res.AffectedItems())
	}
}
