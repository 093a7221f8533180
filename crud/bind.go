package crud

import (
	"strings"

	"github.com/mysqlx-shell/core/xerr"
)

// Sort directions carried on OrderExpr.direction.
const (
	orderAsc  = 1
	orderDesc = 2
)

// parseOrderExpr splits a trailing "asc"/"desc" keyword (case-insensitive)
// off an order-by expression, defaulting to ascending.
func parseOrderExpr(s string) (*expr, uint64, error) {
	fields := strings.Fields(s)
	dir := uint64(orderAsc)
	text := s
	if len(fields) > 1 {
		last := strings.ToLower(fields[len(fields)-1])
		if last == "asc" || last == "desc" {
			if last == "desc" {
				dir = orderDesc
			}
			text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), fields[len(fields)-1]))
		}
	}
	e, err := parseExpr(text)
	if err != nil {
		return nil, 0, err
	}
	return e, dir, nil
}

// literalFromValue converts a bound Go value into a literal expr node
// (spec §4.4 "Parameter binding" step 3).
func literalFromValue(value any) (*expr, error) {
	switch v := value.(type) {
	case nil:
		return literalNull(), nil
	case bool:
		return literalBool(v), nil
	case int:
		return literalInt(int64(v)), nil
	case int8:
		return literalInt(int64(v)), nil
	case int16:
		return literalInt(int64(v)), nil
	case int32:
		return literalInt(int64(v)), nil
	case int64:
		return literalInt(v), nil
	case uint:
		return literalUint(uint64(v)), nil
	case uint8:
		return literalUint(uint64(v)), nil
	case uint16:
		return literalUint(uint64(v)), nil
	case uint32:
		return literalUint(uint64(v)), nil
	case uint64:
		return literalUint(v), nil
	case float32:
		return literalFloat(float64(v)), nil
	case float64:
		return literalFloat(v), nil
	case string:
		return literalString(v), nil
	case []byte:
		return &expr{kind: exprLiteral, litType: 7, litS: v}, nil // ScalarBytes
	default:
		return nil, xerr.New(xerr.KindMalformed, "crud: unsupported bind value type %T", value)
	}
}

// checkPlaceholders verifies that every placeholder referenced anywhere in
// parts has a bound value, failing unbound-placeholder otherwise (spec
// §4.4 "Parameter binding" step 2).
func checkPlaceholders(parts []*expr, bound map[string]*expr) error {
	var names []string
	seen := map[string]bool{}
	for _, p := range parts {
		placeholders(p, &names, seen)
	}
	for _, n := range names {
		if _, ok := bound[n]; !ok {
			return xerr.New(xerr.KindUnboundPlaceholder, "crud: placeholder %q is not bound", n)
		}
	}
	return nil
}
