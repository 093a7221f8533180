package crud

import (
	"context"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/xproto"
)

// Data model tags carried on every CRUD message (Find/Insert/Update/Delete
// share the same "collection" + "data_model" shape regardless of whether
// the target is a relational table or a document collection).
const (
	dataModelDocument = 1
	dataModelTable    = 2
)

// Executor submits a pre-built CRUD message and returns its Result in the
// given initial state. *session.Session satisfies this implicitly.
type Executor interface {
	ExecuteCrud(ctx context.Context, kind xproto.Kind, m *xproto.Message, initial result.State) (*result.Result, error)
}

// Collection is a document-model CRUD target (spec §3 "Statement builder").
type Collection struct {
	exec   Executor
	schema string
	name   string
}

// NewCollection binds a schema-qualified collection name to exec.
func NewCollection(exec Executor, schema, name string) Collection {
	return Collection{exec: exec, schema: schema, name: name}
}

func (c Collection) collectionMessage() *xproto.Message {
	col := xproto.NewMessage("Collection")
	col.SetString("schema", c.schema)
	col.SetString("name", c.name)
	return col
}

// Find starts a find builder filtered by criteria (an empty string means
// unfiltered), per the chain-grammar `find -> (where)? (groupBy (having)?)?
// (orderBy)? (limit (offset)?)? (bind*) execute` (spec §4.4).
func (c Collection) Find(criteria string) *FindBuilder {
	return newFindBuilder(c.exec, c.collectionMessage(), dataModelDocument, criteria)
}

// Insert starts an insert builder accumulating document rows.
func (c Collection) Insert() *InsertBuilder {
	return newInsertBuilder(c.exec, c.collectionMessage(), dataModelDocument)
}

// Update starts an update builder filtered by criteria.
func (c Collection) Update(criteria string) *UpdateBuilder {
	return newUpdateBuilder(c.exec, c.collectionMessage(), dataModelDocument, criteria)
}

// Delete starts a delete builder filtered by criteria.
func (c Collection) Delete(criteria string) *DeleteBuilder {
	return newDeleteBuilder(c.exec, c.collectionMessage(), dataModelDocument, criteria)
}

// Modify is the DevAPI-facing alias for Update (the grammar is named
// "modify" in spec §4.4's builder list; the wire message it produces is
// still named Update).
func (c Collection) Modify(criteria string) *UpdateBuilder { return c.Update(criteria) }

// Remove is the DevAPI-facing alias for Delete (spec §4.4's "remove"
// grammar; the wire message it produces is still named Delete).
func (c Collection) Remove(criteria string) *DeleteBuilder { return c.Delete(criteria) }

// Table is a relational-model CRUD target sharing the same message shapes
// as Collection under data_model = table (spec §4.4 "table.select(...)").
type Table struct {
	exec   Executor
	schema string
	name   string
}

// NewTable binds a schema-qualified table name to exec.
func NewTable(exec Executor, schema, name string) Table {
	return Table{exec: exec, schema: schema, name: name}
}

func (t Table) collectionMessage() *xproto.Message {
	col := xproto.NewMessage("Collection")
	col.SetString("schema", t.schema)
	col.SetString("name", t.name)
	return col
}

// Select starts a find builder projecting the given column expressions
// (empty means `select *`).
func (t Table) Select(projection ...string) *FindBuilder {
	fb := newFindBuilder(t.exec, t.collectionMessage(), dataModelTable, "")
	for _, p := range projection {
		if err := fb.addProjection(p); err != nil {
			fb.err = err
		}
	}
	return fb
}

// Insert starts an insert builder accumulating row values.
func (t Table) Insert() *InsertBuilder {
	return newInsertBuilder(t.exec, t.collectionMessage(), dataModelTable)
}

// Update starts an update builder filtered by criteria.
func (t Table) Update(criteria string) *UpdateBuilder {
	return newUpdateBuilder(t.exec, t.collectionMessage(), dataModelTable, criteria)
}

// Delete starts a delete builder filtered by criteria.
func (t Table) Delete(criteria string) *DeleteBuilder {
	return newDeleteBuilder(t.exec, t.collectionMessage(), dataModelTable, criteria)
}
