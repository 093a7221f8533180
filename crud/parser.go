package crud

import (
	"strings"

	"github.com/mysqlx-shell/core/xerr"
)

// parser is a small precedence-climbing recursive-descent parser over the
// token stream produced by lex. Operator precedence, low to high:
// || , && , comparison (== != <> > >= < <=, like, in, is), additive (+ -),
// multiplicative (* / %), unary (- not), primary.
type parser struct {
	toks []token
	pos  int
}

// parseExpr parses a string expression into the expression tree (spec
// §4.4 "Expression parsing").
func parseExpr(s string) (*expr, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, xerr.New(xerr.KindMalformed, "crud: unexpected trailing input at token %q", p.peek().text)
	}
	return e, nil
}

func (p *parser) peek() token  { return p.toks[p.pos] }
func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.peek().kind != kind {
		return xerr.New(xerr.KindMalformed, "crud: expected %s, got %q", what, p.peek().text)
	}
	p.advance()
	return nil
}

func isOp(t token, names ...string) bool {
	if t.kind != tokOp && t.kind != tokIdent {
		return false
	}
	for _, n := range names {
		if strings.EqualFold(t.text, n) {
			return true
		}
	}
	return false
}

func (p *parser) parseOr() (*expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for isOp(p.peek(), "||", "or") {
		op := p.advance().text
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = operator(normalizeOp(op), left, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (*expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for isOp(p.peek(), "&&", "and") {
		op := p.advance().text
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = operator(normalizeOp(op), left, right)
	}
	return left, nil
}

var comparisonOps = []string{"==", "!=", "<>", ">=", "<=", ">", "<", "like", "in", "is"}

func (p *parser) parseComparison() (*expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for isOp(p.peek(), comparisonOps...) {
		op := p.advance().text
		if strings.EqualFold(op, "is") && isOp(p.peek(), "not") {
			p.advance()
			op = "is_not"
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = operator(normalizeOp(op), left, right)
	}
	return left, nil
}

func (p *parser) parseAdditive() (*expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for isOp(p.peek(), "+", "-") {
		op := p.advance().text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = operator(op, left, right)
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (*expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for isOp(p.peek(), "*", "/", "%") {
		op := p.advance().text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = operator(op, left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (*expr, error) {
	if isOp(p.peek(), "-") {
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return operator("-", e), nil
	}
	if isOp(p.peek(), "not", "!") {
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return operator("not", e), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.advance()
		return parseNumberLiteral(t.text)
	case tokString:
		p.advance()
		return literalString(t.text), nil
	case tokPlaceholder:
		p.advance()
		return placeholder(t.text), nil
	case tokLParen:
		p.advance()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case tokLBracket:
		return p.parseArray()
	case tokIdent:
		return p.parseIdentOrCall(t.text)
	}
	return nil, xerr.New(xerr.KindMalformed, "crud: unexpected token %q", t.text)
}

func (p *parser) parseArray() (*expr, error) {
	if err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	var items []*expr
	if p.peek().kind != tokRBracket {
		for {
			e, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			items = append(items, e)
			if p.peek().kind != tokComma {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return arrayLit(items), nil
}

func (p *parser) parseIdentOrCall(first string) (*expr, error) {
	p.advance()
	switch strings.ToLower(first) {
	case "true":
		return literalBool(true), nil
	case "false":
		return literalBool(false), nil
	case "null":
		return literalNull(), nil
	}
	if p.peek().kind == tokLParen {
		p.advance()
		var args []*expr
		if p.peek().kind != tokRParen {
			for {
				a, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.peek().kind != tokComma {
					break
				}
				p.advance()
			}
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return call(first, args...), nil
	}
	path := []string{first}
	for p.peek().kind == tokDot {
		p.advance()
		seg := p.peek()
		if seg.kind != tokIdent {
			return nil, xerr.New(xerr.KindMalformed, "crud: expected identifier after '.', got %q", seg.text)
		}
		p.advance()
		path = append(path, seg.text)
	}
	return identifier(path), nil
}

// normalizeOp canonicalises a keyword/symbol alias onto a single operator
// name shared across the tree (function_name carries both spellings
// equally well on the wire).
func normalizeOp(op string) string {
	switch strings.ToLower(op) {
	case "or":
		return "||"
	case "and":
		return "&&"
	case "<>":
		return "!="
	default:
		return strings.ToLower(op)
	}
}
