package crud

import (
	"strconv"
	"strings"

	"github.com/mysqlx-shell/core/xerr"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokPlaceholder
	tokOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
)

type token struct {
	kind tokenKind
	text string
}

// lex tokenizes a string expression as accepted by `.where`, `.having`,
// document field selectors, and CRUD projection lists (spec §4.4
// "Expression parsing").
func lex(s string) ([]token, error) {
	var toks []token
	i, n := 0, len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '[':
			toks = append(toks, token{tokLBracket, "["})
			i++
		case c == ']':
			toks = append(toks, token{tokRBracket, "]"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '.' && !(i+1 < n && isDigit(s[i+1])):
			toks = append(toks, token{tokDot, "."})
			i++
		case c == ':':
			j := i + 1
			for j < n && isIdentByte(s[j], j == i+1) {
				j++
			}
			if j == i+1 {
				return nil, xerr.New(xerr.KindMalformed, "crud: expected placeholder name at %d", i)
			}
			toks = append(toks, token{tokPlaceholder, s[i+1 : j]})
			i = j
		case c == '\'' || c == '"':
			str, j, err := lexString(s, i, c)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokString, str})
			i = j
		case c == '`':
			ident, j, err := lexBacktick(s, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokIdent, ident})
			i = j
		case isDigit(c):
			num, j := lexNumber(s, i)
			toks = append(toks, token{tokNumber, num})
			i = j
		case isIdentByte(c, true):
			j := i + 1
			for j < n && isIdentByte(s[j], false) {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j]})
			i = j
		default:
			op, j, err := lexOperator(s, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{tokOp, op})
			i = j
		}
	}
	toks = append(toks, token{tokEOF, ""})
	return toks, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentByte(c byte, first bool) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == '$' {
		return true
	}
	if !first && isDigit(c) {
		return true
	}
	return false
}

func lexString(s string, i int, quote byte) (string, int, error) {
	var b strings.Builder
	j := i + 1
	for j < len(s) {
		c := s[j]
		if c == quote {
			if j+1 < len(s) && s[j+1] == quote {
				b.WriteByte(quote)
				j += 2
				continue
			}
			return b.String(), j + 1, nil
		}
		if c == '\\' && j+1 < len(s) {
			b.WriteByte(s[j+1])
			j += 2
			continue
		}
		b.WriteByte(c)
		j++
	}
	return "", 0, xerr.New(xerr.KindMalformed, "crud: unterminated string literal")
}

func lexBacktick(s string, i int) (string, int, error) {
	var b strings.Builder
	j := i + 1
	for j < len(s) {
		if s[j] == '`' {
			if j+1 < len(s) && s[j+1] == '`' {
				b.WriteByte('`')
				j += 2
				continue
			}
			return b.String(), j + 1, nil
		}
		b.WriteByte(s[j])
		j++
	}
	return "", 0, xerr.New(xerr.KindMalformed, "crud: unterminated quoted identifier")
}

func lexNumber(s string, i int) (string, int) {
	j := i
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
		}
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && isDigit(s[k]) {
			j = k
			for j < len(s) && isDigit(s[j]) {
				j++
			}
		}
	}
	return s[i:j], j
}

var multiByteOps = []string{"==", "!=", "<>", ">=", "<=", "&&", "||"}

func lexOperator(s string, i int) (string, int, error) {
	for _, op := range multiByteOps {
		if strings.HasPrefix(s[i:], op) {
			return op, i + len(op), nil
		}
	}
	switch s[i] {
	case '>', '<', '+', '-', '*', '/', '%', '!', '=':
		return string(s[i]), i + 1, nil
	}
	return "", 0, xerr.New(xerr.KindMalformed, "crud: unexpected character %q at %d", s[i], i)
}

// parseNumberLiteral turns a lexed numeric token into the appropriate
// literal expr (int, unsigned, or double).
func parseNumberLiteral(text string) (*expr, error) {
	if !strings.ContainsAny(text, ".eE") {
		if v, err := strconv.ParseInt(text, 10, 64); err == nil {
			return literalInt(v), nil
		}
		if v, err := strconv.ParseUint(text, 10, 64); err == nil {
			return literalUint(v), nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, xerr.New(xerr.KindMalformed, "crud: invalid numeric literal %q: %v", text, err)
	}
	return literalFloat(v), nil
}
