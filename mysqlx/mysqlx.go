// Package mysqlx is the public facade over the X Protocol core: session
// lifecycle, schema/collection/table entry points for the CRUD and SQL
// statement builders, and result consumption (spec §6 "External
// interfaces").
package mysqlx

import (
	"context"

	"github.com/mysqlx-shell/core/crud"
	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/session"
	"github.com/mysqlx-shell/core/sqlstmt"
	"github.com/mysqlx-shell/core/xproto"
)

// Session is the public handle returned by Connect. It embeds the L3
// session so TLS/auth/bootstrap state (ServerVersion, ConnectionID,
// TLSCipher, CaseSensitiveIdentifiers, PasswordExpired) is directly
// visible, and adds the L5 entry points spec §6 names.
type Session struct {
	*session.Session
}

// Connect opens and authenticates a session (spec §6 "session.connect").
func Connect(ctx context.Context, opts session.Options) (*Session, error) {
	s, err := session.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Session{Session: s}, nil
}

// Query submits sql under the "sql" namespace with no bound args (spec §6
// "session.query(sql, buffered=false) -> Result"). When buffered is true
// every remaining result set is pre-fetched before Query returns.
func (s *Session) Query(ctx context.Context, sql string, buffered bool) (*result.Result, error) {
	res, err := s.ExecuteSQL(ctx, sql, nil)
	if err != nil {
		return nil, err
	}
	if buffered {
		if err := res.Buffer(ctx, true); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Execute runs sql and drains its Result, discarding any data (spec §6
// "session.execute(sql) — convenience that drains the Result").
func (s *Session) Execute(ctx context.Context, sql string) error {
	res, err := s.ExecuteSQL(ctx, sql, nil)
	if err != nil {
		return err
	}
	return res.Buffer(ctx, true)
}

// Sql starts a positional-placeholder SQL statement builder (spec §4.4
// "sql -> (bind*) execute").
func (s *Session) Sql(text string) *sqlstmt.Stmt {
	return sqlstmt.New(s.Session, text)
}

// Schema names a schema to operate within; it performs no round-trip by
// itself (spec §3 does not model Schema as a wire concept beyond the
// Collection.schema/Table.schema qualifier carried on every CRUD message).
type Schema struct {
	sess *Session
	name string
}

// Schema returns a handle scoped to the named schema.
func (s *Session) Schema(name string) Schema {
	return Schema{sess: s, name: name}
}

// Name returns the schema's name.
func (s Schema) Name() string { return s.name }

// Collection returns a document-model CRUD target within this schema.
func (s Schema) Collection(name string) crud.Collection {
	return crud.NewCollection(s.sess.Session, s.name, name)
}

// Table returns a relational-model CRUD target within this schema.
func (s Schema) Table(name string) crud.Table {
	return crud.NewTable(s.sess.Session, s.name, name)
}

// ExecuteStmt submits a statement under an explicit namespace (spec §6
// "session.execute_stmt(namespace, stmt, args)").
func (s *Session) ExecuteStmt(ctx context.Context, namespace, stmt string, args []*xproto.Message) (*result.Result, error) {
	return s.Session.ExecuteStmt(ctx, namespace, stmt, args)
}
