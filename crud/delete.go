package crud

import (
	"context"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// deleteStage is the chain-grammar phase marker for DeleteBuilder:
// delete -> (where)? (orderBy)? (limit)? (bind*) execute.
type deleteStage int

const (
	deleteStageInit deleteStage = iota
	deleteStageWhere
	deleteStageOrderBy
	deleteStageLimit
	deleteStageExecuted
)

// DeleteBuilder accumulates a Delete CRUD message.
type DeleteBuilder struct {
	exec      Executor
	dataModel int

	stage deleteStage
	err   error

	collection *xproto.Message
	criteria   *expr
	order      []*xproto.Message
	limitCount uint64
	limitSet   bool

	bound map[string]*expr
	parts []*expr
}

func newDeleteBuilder(exec Executor, collection *xproto.Message, dataModel int, criteria string) *DeleteBuilder {
	db := &DeleteBuilder{exec: exec, dataModel: dataModel, collection: collection, bound: map[string]*expr{}}
	if criteria != "" {
		e, err := parseExpr(criteria)
		if err != nil {
			db.err = err
			return db
		}
		db.criteria = e
		db.parts = append(db.parts, e)
		db.stage = deleteStageWhere
	}
	return db
}

// Where sets the filter criteria. Legal only once, before any later stage.
func (db *DeleteBuilder) Where(criteria string) *DeleteBuilder {
	if db.err != nil {
		return db
	}
	if db.stage != deleteStageInit {
		db.err = xerr.New(xerr.KindChainViolation, "crud: where is not legal after this builder's current stage")
		return db
	}
	e, err := parseExpr(criteria)
	if err != nil {
		db.err = err
		return db
	}
	db.criteria = e
	db.parts = append(db.parts, e)
	db.stage = deleteStageWhere
	return db
}

// OrderBy adds sort expressions. Legal only once, at or before where.
func (db *DeleteBuilder) OrderBy(exprs ...string) *DeleteBuilder {
	if db.err != nil {
		return db
	}
	if db.stage > deleteStageWhere {
		db.err = xerr.New(xerr.KindChainViolation, "crud: orderBy is not legal after this builder's current stage")
		return db
	}
	for _, s := range exprs {
		e, dir, err := parseOrderExpr(s)
		if err != nil {
			db.err = err
			return db
		}
		db.parts = append(db.parts, e)
		om := xproto.NewMessage("OrderExpr")
		om.SetMessage("expr", toMessage(e))
		om.SetUint64("direction", dir)
		db.order = append(db.order, om)
	}
	db.stage = deleteStageOrderBy
	return db
}

// Limit sets the row-count cap. Legal only once, at or before orderBy.
func (db *DeleteBuilder) Limit(rowCount uint64) *DeleteBuilder {
	if db.err != nil {
		return db
	}
	if db.stage > deleteStageOrderBy {
		db.err = xerr.New(xerr.KindChainViolation, "crud: limit is not legal after this builder's current stage")
		return db
	}
	db.limitCount, db.limitSet = rowCount, true
	db.stage = deleteStageLimit
	return db
}

// Bind records a value for a named placeholder.
func (db *DeleteBuilder) Bind(name string, value any) *DeleteBuilder {
	if db.err != nil {
		return db
	}
	if db.stage == deleteStageExecuted {
		db.err = xerr.New(xerr.KindChainViolation, "crud: bind is not legal after execute")
		return db
	}
	e, err := literalFromValue(value)
	if err != nil {
		db.err = err
		return db
	}
	db.bound[name] = e
	return db
}

// Execute submits the accumulated Delete message.
func (db *DeleteBuilder) Execute(ctx context.Context) (*result.Result, error) {
	if db.err != nil {
		return nil, db.err
	}
	if db.stage == deleteStageExecuted {
		return nil, xerr.New(xerr.KindChainViolation, "crud: execute already called")
	}
	if err := checkPlaceholders(db.parts, db.bound); err != nil {
		return nil, err
	}

	m := xproto.NewMessage("Delete")
	m.SetMessage("collection", db.collection)
	m.SetUint64("data_model", uint64(db.dataModel))
	if db.criteria != nil {
		bound, err := bindValues(db.criteria, db.bound)
		if err != nil {
			return nil, err
		}
		m.SetMessage("criteria", toMessage(bound))
	}
	for _, o := range db.order {
		m.AppendMessageValue("order", o)
	}
	if db.limitSet {
		lim := xproto.NewMessage("Limit")
		lim.SetUint64("row_count", db.limitCount)
		m.SetMessage("limit", lim)
	}

	db.stage = deleteStageExecuted
	return db.exec.ExecuteCrud(ctx, xproto.KindCrudDelete, m, result.StateAwaitExecOkInitial)
}
