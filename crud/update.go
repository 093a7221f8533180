package crud

import (
	"context"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// UpdateOperation.operation tags. SET is the only one exposed today; the
// wire shape leaves room for the document-partial-update operations
// (item-remove, array-insert, etc.) without a schema change.
const (
	updateOpSet = 1
)

// updateStage is the chain-grammar phase marker for UpdateBuilder:
// update -> (where)? (orderBy)? (limit)? (bind*) execute, with set calls
// accepted at any point before execute.
type updateStage int

const (
	updateStageInit updateStage = iota
	updateStageWhere
	updateStageOrderBy
	updateStageLimit
	updateStageExecuted
)

// UpdateBuilder accumulates an Update CRUD message.
type UpdateBuilder struct {
	exec      Executor
	dataModel int

	stage updateStage
	err   error

	collection *xproto.Message
	criteria   *expr
	operations []operationSpec
	order      []*xproto.Message
	limitCount uint64
	limitSet   bool

	bound map[string]*expr
	parts []*expr
}

type operationSpec struct {
	column string
	value  *expr
}

func newUpdateBuilder(exec Executor, collection *xproto.Message, dataModel int, criteria string) *UpdateBuilder {
	ub := &UpdateBuilder{exec: exec, dataModel: dataModel, collection: collection, bound: map[string]*expr{}}
	if criteria != "" {
		e, err := parseExpr(criteria)
		if err != nil {
			ub.err = err
			return ub
		}
		ub.criteria = e
		ub.parts = append(ub.parts, e)
		ub.stage = updateStageWhere
	}
	return ub
}

// Set accumulates one column-assignment operation. May be called any
// number of times, at any point before execute.
func (ub *UpdateBuilder) Set(column, value string) *UpdateBuilder {
	if ub.err != nil {
		return ub
	}
	if ub.stage == updateStageExecuted {
		ub.err = xerr.New(xerr.KindChainViolation, "crud: set is not legal after execute")
		return ub
	}
	e, err := parseExpr(value)
	if err != nil {
		ub.err = err
		return ub
	}
	ub.parts = append(ub.parts, e)
	ub.operations = append(ub.operations, operationSpec{column: column, value: e})
	return ub
}

// Where sets the filter criteria. Legal only once, before any later stage.
func (ub *UpdateBuilder) Where(criteria string) *UpdateBuilder {
	if ub.err != nil {
		return ub
	}
	if ub.stage != updateStageInit {
		ub.err = xerr.New(xerr.KindChainViolation, "crud: where is not legal after this builder's current stage")
		return ub
	}
	e, err := parseExpr(criteria)
	if err != nil {
		ub.err = err
		return ub
	}
	ub.criteria = e
	ub.parts = append(ub.parts, e)
	ub.stage = updateStageWhere
	return ub
}

// OrderBy adds sort expressions. Legal only once, at or before where.
func (ub *UpdateBuilder) OrderBy(exprs ...string) *UpdateBuilder {
	if ub.err != nil {
		return ub
	}
	if ub.stage > updateStageWhere {
		ub.err = xerr.New(xerr.KindChainViolation, "crud: orderBy is not legal after this builder's current stage")
		return ub
	}
	for _, s := range exprs {
		e, dir, err := parseOrderExpr(s)
		if err != nil {
			ub.err = err
			return ub
		}
		ub.parts = append(ub.parts, e)
		om := xproto.NewMessage("OrderExpr")
		om.SetMessage("expr", toMessage(e))
		om.SetUint64("direction", dir)
		ub.order = append(ub.order, om)
	}
	ub.stage = updateStageOrderBy
	return ub
}

// Limit sets the row-count cap. Legal only once, at or before orderBy.
func (ub *UpdateBuilder) Limit(rowCount uint64) *UpdateBuilder {
	if ub.err != nil {
		return ub
	}
	if ub.stage > updateStageOrderBy {
		ub.err = xerr.New(xerr.KindChainViolation, "crud: limit is not legal after this builder's current stage")
		return ub
	}
	ub.limitCount, ub.limitSet = rowCount, true
	ub.stage = updateStageLimit
	return ub
}

// Bind records a value for a named placeholder.
func (ub *UpdateBuilder) Bind(name string, value any) *UpdateBuilder {
	if ub.err != nil {
		return ub
	}
	if ub.stage == updateStageExecuted {
		ub.err = xerr.New(xerr.KindChainViolation, "crud: bind is not legal after execute")
		return ub
	}
	e, err := literalFromValue(value)
	if err != nil {
		ub.err = err
		return ub
	}
	ub.bound[name] = e
	return ub
}

// Execute submits the accumulated Update message.
func (ub *UpdateBuilder) Execute(ctx context.Context) (*result.Result, error) {
	if ub.err != nil {
		return nil, ub.err
	}
	if ub.stage == updateStageExecuted {
		return nil, xerr.New(xerr.KindChainViolation, "crud: execute already called")
	}
	if len(ub.operations) == 0 {
		return nil, xerr.New(xerr.KindChainViolation, "crud: update requires at least one set operation")
	}
	if err := checkPlaceholders(ub.parts, ub.bound); err != nil {
		return nil, err
	}

	m := xproto.NewMessage("Update")
	m.SetMessage("collection", ub.collection)
	m.SetUint64("data_model", uint64(ub.dataModel))
	if ub.criteria != nil {
		bound, err := bindValues(ub.criteria, ub.bound)
		if err != nil {
			return nil, err
		}
		m.SetMessage("criteria", toMessage(bound))
	}
	for _, op := range ub.operations {
		bound, err := bindValues(op.value, ub.bound)
		if err != nil {
			return nil, err
		}
		uo := xproto.NewMessage("UpdateOperation")
		source := uo.GetMessage("source", "ColumnIdentifier")
		source.SetString("name", op.column)
		uo.SetUint64("operation", updateOpSet)
		uo.SetMessage("value", toMessage(bound))
		m.AppendMessageValue("operation", uo)
	}
	for _, o := range ub.order {
		m.AppendMessageValue("order", o)
	}
	if ub.limitSet {
		lim := xproto.NewMessage("Limit")
		lim.SetUint64("row_count", ub.limitCount)
		m.SetMessage("limit", lim)
	}

	ub.stage = updateStageExecuted
	return ub.exec.ExecuteCrud(ctx, xproto.KindCrudUpdate, m, result.StateAwaitExecOkInitial)
}
