// Package crud implements the fluent find/insert/update/delete/select
// statement builders of L5: parsing string expressions into an expression
// tree, accumulating constraints under a chain-grammar, and materialising
// the result into an L2 CRUD message for submission through L3.
package crud

import (
	"strings"

	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// exprKind discriminates the algebraic cases of the expression tree (spec
// §3 "Expression tree").
type exprKind int

const (
	exprIdentifier exprKind = iota
	exprLiteral
	exprPlaceholder
	exprFunctionCall
	exprOperator
	exprArray
)

// Wire-level Expr.type tags. Operator and function-call share a shape
// (name + args) but are tagged distinctly, mirroring how the real X
// Protocol separates FUNC_CALL from OPERATOR while reusing the same
// Identifier/args payload.
const (
	wireExprIdentifier  = 1
	wireExprLiteral     = 2
	wireExprPlaceholder = 3
	wireExprFuncCall    = 4
	wireExprOperator    = 5
	wireExprArray       = 6
)

// expr is one node of the expression tree. Only the fields relevant to
// kind are populated.
type expr struct {
	kind exprKind

	path []string // identifier: first segment is the column name, rest is document_path

	litType uint64 // literal: xproto.ScalarSignedInt etc.
	litI    int64
	litU    uint64
	litF    float64
	litB    bool
	litS    []byte
	litNull bool

	placeholder string // placeholder name, without the leading ':'

	name string  // function/operator name
	args []*expr // function/operator args, or array elements
}

func identifier(path []string) *expr { return &expr{kind: exprIdentifier, path: path} }

func placeholder(name string) *expr { return &expr{kind: exprPlaceholder, placeholder: name} }

func call(name string, args ...*expr) *expr {
	return &expr{kind: exprFunctionCall, name: name, args: args}
}

func operator(name string, args ...*expr) *expr {
	return &expr{kind: exprOperator, name: name, args: args}
}

func arrayLit(items []*expr) *expr { return &expr{kind: exprArray, args: items} }

func literalNull() *expr { return &expr{kind: exprLiteral, litNull: true} }

func literalBool(v bool) *expr { return &expr{kind: exprLiteral, litType: xproto.ScalarBool, litB: v} }

func literalInt(v int64) *expr {
	return &expr{kind: exprLiteral, litType: xproto.ScalarSignedInt, litI: v}
}

func literalUint(v uint64) *expr {
	return &expr{kind: exprLiteral, litType: xproto.ScalarUnsignedInt, litU: v}
}

func literalFloat(v float64) *expr {
	return &expr{kind: exprLiteral, litType: xproto.ScalarDouble, litF: v}
}

func literalString(v string) *expr {
	return &expr{kind: exprLiteral, litType: xproto.ScalarString, litS: []byte(v)}
}

// placeholders collects, in first-occurrence order, every placeholder name
// referenced anywhere in e (spec §4.4 "Parameter binding" step 1).
func placeholders(e *expr, into *[]string, seen map[string]bool) {
	if e == nil {
		return
	}
	if e.kind == exprPlaceholder {
		if !seen[e.placeholder] {
			seen[e.placeholder] = true
			*into = append(*into, e.placeholder)
		}
		return
	}
	for _, a := range e.args {
		placeholders(a, into, seen)
	}
}

// bindValues substitutes every placeholder node in e for the literal bound
// under its name, failing unbound-placeholder if any is missing. It returns
// a new tree; the original is left untouched.
func bindValues(e *expr, bound map[string]*expr) (*expr, error) {
	if e == nil {
		return nil, nil
	}
	if e.kind == exprPlaceholder {
		v, ok := bound[e.placeholder]
		if !ok {
			return nil, xerr.New(xerr.KindUnboundPlaceholder, "crud: placeholder %q is not bound", e.placeholder)
		}
		return v, nil
	}
	if len(e.args) == 0 {
		return e, nil
	}
	out := *e
	out.args = make([]*expr, len(e.args))
	for i, a := range e.args {
		b, err := bindValues(a, bound)
		if err != nil {
			return nil, err
		}
		out.args[i] = b
	}
	return &out, nil
}

// toMessage materialises e into an "Expr" xproto.Message.
func toMessage(e *expr) *xproto.Message {
	m := xproto.NewMessage("Expr")
	switch e.kind {
	case exprIdentifier:
		m.SetUint64("type", wireExprIdentifier)
		ident := m.GetMessage("identifier", "ColumnIdentifier")
		ident.SetString("name", e.path[0])
		for _, seg := range e.path[1:] {
			ident.AppendString("document_path", seg)
		}
	case exprLiteral:
		m.SetUint64("type", wireExprLiteral)
		m.SetMessage("literal", toScalar(e))
	case exprPlaceholder:
		m.SetUint64("type", wireExprPlaceholder)
		m.SetString("placeholder_name", e.placeholder)
	case exprFunctionCall:
		m.SetUint64("type", wireExprFuncCall)
		m.SetString("function_name", e.name)
		for _, a := range e.args {
			m.AppendMessageValue("args", toMessage(a))
		}
	case exprOperator:
		m.SetUint64("type", wireExprOperator)
		m.SetString("function_name", e.name)
		for _, a := range e.args {
			m.AppendMessageValue("args", toMessage(a))
		}
	case exprArray:
		m.SetUint64("type", wireExprArray)
		for _, a := range e.args {
			m.AppendMessageValue("array", toMessage(a))
		}
	}
	return m
}

func toScalar(e *expr) *xproto.Message {
	s := xproto.NewMessage("Scalar")
	if e.litNull {
		s.SetUint64("type", xproto.ScalarNull)
		return s
	}
	s.SetUint64("type", e.litType)
	switch e.litType {
	case xproto.ScalarSignedInt:
		s.SetInt64("v_signed_int", e.litI)
	case xproto.ScalarUnsignedInt:
		s.SetUint64("v_unsigned_int", e.litU)
	case xproto.ScalarDouble:
		s.SetDouble("v_double", e.litF)
	case xproto.ScalarBool:
		s.SetBool("v_bool", e.litB)
	case xproto.ScalarString:
		s.SetBytes("v_string", e.litS)
	case xproto.ScalarBytes:
		s.SetBytes("v_octets", e.litS)
	}
	return s
}

// quoteIdentifier implicitly back-tick quotes name when it contains any
// character outside [A-Za-z0-9_$], doubling embedded back-ticks to escape
// them (spec §4.4 "Expression parsing").
func quoteIdentifier(name string) string {
	if !needsQuoting(name) {
		return name
	}
	var b strings.Builder
	b.WriteByte('`')
	for _, r := range name {
		if r == '`' {
			b.WriteString("``")
		} else {
			b.WriteRune(r)
		}
	}
	b.WriteByte('`')
	return b.String()
}

func needsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '$':
			// always legal
		case r >= '0' && r <= '9':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	return false
}
