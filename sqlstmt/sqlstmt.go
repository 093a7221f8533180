// Package sqlstmt implements the plain-SQL statement builder of L5: the
// `sql(text).bind(value).bind(value)...execute()` grammar, wiring
// positional arguments into the X Protocol StmtExecute message submitted
// through L3 (spec §3 "Statement builder", §4.4).
package sqlstmt

import (
	"context"

	"github.com/mysqlx-shell/core/result"
	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// Executor submits a SQL statement with positional args. *session.Session
// satisfies this implicitly.
type Executor interface {
	ExecuteSQL(ctx context.Context, stmt string, args []*xproto.Message) (*result.Result, error)
}

// Stmt accumulates a SQL statement and its positional bound arguments.
// Unlike the CRUD builders, there is no chain-grammar beyond "bind any
// number of times, then execute once": the statement text is opaque SQL,
// not a parsed expression tree, so there is nothing to sequence.
type Stmt struct {
	exec     Executor
	text     string
	args     []*xproto.Message
	executed bool
	err      error
}

// New starts a statement builder for text.
func New(exec Executor, text string) *Stmt {
	return &Stmt{exec: exec, text: text}
}

// Bind appends the next positional argument, substituted for the next `?`
// placeholder in declaration order (spec §4.4 "Parameter binding").
func (s *Stmt) Bind(value any) *Stmt {
	if s.err != nil {
		return s
	}
	if s.executed {
		s.err = xerr.New(xerr.KindChainViolation, "sqlstmt: bind is not legal after execute")
		return s
	}
	scalar, err := scalarFromValue(value)
	if err != nil {
		s.err = err
		return s
	}
	s.args = append(s.args, scalar)
	return s
}

// Execute submits the statement.
func (s *Stmt) Execute(ctx context.Context) (*result.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.executed {
		return nil, xerr.New(xerr.KindChainViolation, "sqlstmt: execute already called")
	}
	s.executed = true
	return s.exec.ExecuteSQL(ctx, s.text, s.args)
}

// scalarFromValue converts a bound Go value into a "Scalar" xproto.Message
// (the wire shape for StmtExecute.args), mirroring crud.literalFromValue's
// type switch but materialised directly since SQL statement args have no
// placeholder-closure step to defer through.
func scalarFromValue(value any) (*xproto.Message, error) {
	m := xproto.NewMessage("Scalar")
	switch v := value.(type) {
	case nil:
		m.SetUint64("type", xproto.ScalarNull)
	case bool:
		m.SetUint64("type", xproto.ScalarBool)
		m.SetBool("v_bool", v)
	case int:
		m.SetUint64("type", xproto.ScalarSignedInt)
		m.SetInt64("v_signed_int", int64(v))
	case int8:
		m.SetUint64("type", xproto.ScalarSignedInt)
		m.SetInt64("v_signed_int", int64(v))
	case int16:
		m.SetUint64("type", xproto.ScalarSignedInt)
		m.SetInt64("v_signed_int", int64(v))
	case int32:
		m.SetUint64("type", xproto.ScalarSignedInt)
		m.SetInt64("v_signed_int", int64(v))
	case int64:
		m.SetUint64("type", xproto.ScalarSignedInt)
		m.SetInt64("v_signed_int", v)
	case uint:
		m.SetUint64("type", xproto.ScalarUnsignedInt)
		m.SetUint64("v_unsigned_int", uint64(v))
	case uint8:
		m.SetUint64("type", xproto.ScalarUnsignedInt)
		m.SetUint64("v_unsigned_int", uint64(v))
	case uint16:
		m.SetUint64("type", xproto.ScalarUnsignedInt)
		m.SetUint64("v_unsigned_int", uint64(v))
	case uint32:
		m.SetUint64("type", xproto.ScalarUnsignedInt)
		m.SetUint64("v_unsigned_int", uint64(v))
	case uint64:
		m.SetUint64("type", xproto.ScalarUnsignedInt)
		m.SetUint64("v_unsigned_int", v)
	case float32:
		m.SetUint64("type", xproto.ScalarDouble)
		m.SetDouble("v_double", float64(v))
	case float64:
		m.SetUint64("type", xproto.ScalarDouble)
		m.SetDouble("v_double", v)
	case string:
		m.SetUint64("type", xproto.ScalarString)
		m.SetBytes("v_string", []byte(v))
	case []byte:
		m.SetUint64("type", xproto.ScalarBytes)
		m.SetBytes("v_octets", v)
	default:
		return nil, xerr.New(xerr.KindMalformed, "sqlstmt: unsupported bind value type %T", value)
	}
	return m, nil
}
