package crud

import (
	"context"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// InsertBuilder accumulates an Insert CRUD message: insert -> (row)+
// (bind*) execute. At least one row must be added before execute.
type InsertBuilder struct {
	exec      Executor
	dataModel int

	collection *xproto.Message
	rows       [][]*expr
	executed   bool
	err        error

	bound map[string]*expr
}

func newInsertBuilder(exec Executor, collection *xproto.Message, dataModel int) *InsertBuilder {
	return &InsertBuilder{exec: exec, dataModel: dataModel, collection: collection, bound: map[string]*expr{}}
}

// Values appends a row of immediate Go values (no placeholders).
func (ib *InsertBuilder) Values(values ...any) *InsertBuilder {
	if ib.err != nil {
		return ib
	}
	row := make([]*expr, len(values))
	for i, v := range values {
		e, err := literalFromValue(v)
		if err != nil {
			ib.err = err
			return ib
		}
		row[i] = e
	}
	ib.rows = append(ib.rows, row)
	return ib
}

// Row appends a row parsed from string expressions, allowing named
// placeholders to be used and bound later.
func (ib *InsertBuilder) Row(exprs ...string) *InsertBuilder {
	if ib.err != nil {
		return ib
	}
	row := make([]*expr, len(exprs))
	for i, s := range exprs {
		e, err := parseExpr(s)
		if err != nil {
			ib.err = err
			return ib
		}
		row[i] = e
	}
	ib.rows = append(ib.rows, row)
	return ib
}

// Bind records a value for a named placeholder referenced by Row.
func (ib *InsertBuilder) Bind(name string, value any) *InsertBuilder {
	if ib.err != nil {
		return ib
	}
	if ib.executed {
		ib.err = xerr.New(xerr.KindChainViolation, "crud: bind is not legal after execute")
		return ib
	}
	e, err := literalFromValue(value)
	if err != nil {
		ib.err = err
		return ib
	}
	ib.bound[name] = e
	return ib
}

// Execute submits the accumulated Insert message.
func (ib *InsertBuilder) Execute(ctx context.Context) (*result.Result, error) {
	if ib.err != nil {
		return nil, ib.err
	}
	if ib.executed {
		return nil, xerr.New(xerr.KindChainViolation, "crud: execute already called")
	}
	if len(ib.rows) == 0 {
		return nil, xerr.New(xerr.KindChainViolation, "crud: insert requires at least one row")
	}

	var parts []*expr
	for _, row := range ib.rows {
		parts = append(parts, row...)
	}
	if err := checkPlaceholders(parts, ib.bound); err != nil {
		return nil, err
	}

	m := xproto.NewMessage("Insert")
	m.SetMessage("collection", ib.collection)
	m.SetUint64("data_model", uint64(ib.dataModel))
	for _, row := range ib.rows {
		tr := xproto.NewMessage("TypedRow")
		for _, e := range row {
			bound, err := bindValues(e, ib.bound)
			if err != nil {
				return nil, err
			}
			tr.AppendMessageValue("values", toMessage(bound))
		}
		m.AppendMessageValue("row", tr)
	}

	ib.executed = true
	return ib.exec.ExecuteCrud(ctx, xproto.KindCrudInsert, m, result.StateAwaitExecOkInitial)
}
