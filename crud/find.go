package crud

import (
	"context"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// findStage is the chain-grammar phase marker for FindBuilder:
//
//	select  ->  (where)?  (groupBy (having)?)?  (orderBy)?  (limit (offset)?)?  (bind*)  execute
//
// (spec §4.4). Each stage constant is the furthest point a call may have
// reached; a method call is legal only if the builder's current stage is
// still at or before the stage immediately preceding it.
type findStage int

const (
	findStageInit findStage = iota
	findStageWhere
	findStageGroupBy
	findStageHaving
	findStageOrderBy
	findStageLimit
	findStageOffset
	findStageExecuted
)

// FindBuilder accumulates a Find CRUD message (spec §3 "Statement
// builder", §4.4 "Builder chain enforcement").
type FindBuilder struct {
	exec      Executor
	dataModel int

	stage findStage
	err   error

	criteria         *expr
	projections      []*xproto.Message
	grouping         []*expr
	groupingCriteria *expr
	order            []*xproto.Message
	limitCount       uint64
	limitSet         bool
	offsetVal        uint64

	collection *xproto.Message
	bound      map[string]*expr
	parts      []*expr // every parsed subtree, for placeholder closure checking
}

func newFindBuilder(exec Executor, collection *xproto.Message, dataModel int, criteria string) *FindBuilder {
	fb := &FindBuilder{exec: exec, dataModel: dataModel, collection: collection, bound: map[string]*expr{}}
	if criteria != "" {
		e, err := parseExpr(criteria)
		if err != nil {
			fb.err = err
			return fb
		}
		fb.criteria = e
		fb.parts = append(fb.parts, e)
		fb.stage = findStageWhere
	}
	return fb
}

func (fb *FindBuilder) addProjection(source string) error {
	e, err := parseExpr(source)
	if err != nil {
		return err
	}
	fb.parts = append(fb.parts, e)
	m := xproto.NewMessage("Projection")
	m.SetMessage("source", toMessage(e))
	fb.projections = append(fb.projections, m)
	return nil
}

// Where sets the filter criteria. Legal only once, before any later stage
// (spec §4.4 "select.where.where is rejected").
func (fb *FindBuilder) Where(criteria string) *FindBuilder {
	if fb.err != nil {
		return fb
	}
	if fb.stage != findStageInit {
		fb.err = xerr.New(xerr.KindChainViolation, "crud: where is not legal after this builder's current stage")
		return fb
	}
	e, err := parseExpr(criteria)
	if err != nil {
		fb.err = err
		return fb
	}
	fb.criteria = e
	fb.parts = append(fb.parts, e)
	fb.stage = findStageWhere
	return fb
}

// GroupBy adds grouping expressions. Legal only once, at or before where.
func (fb *FindBuilder) GroupBy(exprs ...string) *FindBuilder {
	if fb.err != nil {
		return fb
	}
	if fb.stage > findStageWhere {
		fb.err = xerr.New(xerr.KindChainViolation, "crud: groupBy is not legal after this builder's current stage")
		return fb
	}
	for _, s := range exprs {
		e, err := parseExpr(s)
		if err != nil {
			fb.err = err
			return fb
		}
		fb.grouping = append(fb.grouping, e)
		fb.parts = append(fb.parts, e)
	}
	fb.stage = findStageGroupBy
	return fb
}

// Having sets the post-grouping filter. Legal only immediately after
// groupBy (spec §4.4 "select.orderBy.groupBy is rejected" implies having
// cannot precede its own groupBy either).
func (fb *FindBuilder) Having(criteria string) *FindBuilder {
	if fb.err != nil {
		return fb
	}
	if fb.stage != findStageGroupBy {
		fb.err = xerr.New(xerr.KindChainViolation, "crud: having must immediately follow groupBy")
		return fb
	}
	e, err := parseExpr(criteria)
	if err != nil {
		fb.err = err
		return fb
	}
	fb.groupingCriteria = e
	fb.parts = append(fb.parts, e)
	fb.stage = findStageHaving
	return fb
}

// OrderBy adds sort expressions ("col" or "col desc"/"col asc"). Legal
// only once, at or before having.
func (fb *FindBuilder) OrderBy(exprs ...string) *FindBuilder {
	if fb.err != nil {
		return fb
	}
	if fb.stage > findStageHaving {
		fb.err = xerr.New(xerr.KindChainViolation, "crud: orderBy is not legal after this builder's current stage")
		return fb
	}
	for _, s := range exprs {
		e, dir, err := parseOrderExpr(s)
		if err != nil {
			fb.err = err
			return fb
		}
		fb.parts = append(fb.parts, e)
		om := xproto.NewMessage("OrderExpr")
		om.SetMessage("expr", toMessage(e))
		om.SetUint64("direction", dir)
		fb.order = append(fb.order, om)
	}
	fb.stage = findStageOrderBy
	return fb
}

// Limit sets the row-count cap. Legal only once, at or before orderBy.
func (fb *FindBuilder) Limit(rowCount uint64) *FindBuilder {
	if fb.err != nil {
		return fb
	}
	if fb.stage > findStageOrderBy {
		fb.err = xerr.New(xerr.KindChainViolation, "crud: limit is not legal after this builder's current stage")
		return fb
	}
	fb.limitCount, fb.limitSet = rowCount, true
	fb.stage = findStageLimit
	return fb
}

// Offset sets the row-skip count. Legal only immediately after limit.
func (fb *FindBuilder) Offset(offset uint64) *FindBuilder {
	if fb.err != nil {
		return fb
	}
	if fb.stage != findStageLimit {
		fb.err = xerr.New(xerr.KindChainViolation, "crud: offset must immediately follow limit")
		return fb
	}
	fb.offsetVal = offset
	fb.stage = findStageOffset
	return fb
}

// Bind records a value for a named placeholder. May be called any number
// of times, at any point before execute (spec §4.4 "except .bind, which
// may be called any number of times until .execute").
func (fb *FindBuilder) Bind(name string, value any) *FindBuilder {
	if fb.err != nil {
		return fb
	}
	if fb.stage == findStageExecuted {
		fb.err = xerr.New(xerr.KindChainViolation, "crud: bind is not legal after execute")
		return fb
	}
	e, err := literalFromValue(value)
	if err != nil {
		fb.err = err
		return fb
	}
	fb.bound[name] = e
	return fb
}

// Execute submits the accumulated Find message. Every placeholder
// referenced anywhere in the builder must have been bound (spec §4.4
// "Parameter binding").
func (fb *FindBuilder) Execute(ctx context.Context) (*result.Result, error) {
	if fb.err != nil {
		return nil, fb.err
	}
	if fb.stage == findStageExecuted {
		return nil, xerr.New(xerr.KindChainViolation, "crud: execute already called")
	}
	if err := checkPlaceholders(fb.parts, fb.bound); err != nil {
		return nil, err
	}

	m := xproto.NewMessage("Find")
	m.SetMessage("collection", fb.collection)
	m.SetUint64("data_model", uint64(fb.dataModel))
	if fb.criteria != nil {
		bound, err := bindValues(fb.criteria, fb.bound)
		if err != nil {
			return nil, err
		}
		m.SetMessage("criteria", toMessage(bound))
	}
	for _, g := range fb.grouping {
		bound, err := bindValues(g, fb.bound)
		if err != nil {
			return nil, err
		}
		m.AppendMessageValue("grouping", toMessage(bound))
	}
	if fb.groupingCriteria != nil {
		bound, err := bindValues(fb.groupingCriteria, fb.bound)
		if err != nil {
			return nil, err
		}
		m.SetMessage("grouping_criteria", toMessage(bound))
	}
	for _, p := range fb.projections {
		m.AppendMessageValue("projection", p)
	}
	for _, o := range fb.order {
		m.AppendMessageValue("order", o)
	}
	if fb.limitSet {
		lim := xproto.NewMessage("Limit")
		lim.SetUint64("row_count", fb.limitCount)
		lim.SetUint64("offset", fb.offsetVal)
		m.SetMessage("limit", lim)
	}

	fb.stage = findStageExecuted
	return fb.exec.ExecuteCrud(ctx, xproto.KindCrudFind, m, result.StateAwaitMetadataInitial)
}
