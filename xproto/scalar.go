package xproto

// Scalar.type discriminant values, shared between the CRUD expression
// builder (crud) that produces Scalar messages and the result row decoder
// (result) that consumes them.
const (
	ScalarSignedInt   = 1
	ScalarUnsignedInt = 2
	ScalarDouble      = 3
	ScalarBool        = 5
	ScalarString      = 6
	ScalarBytes       = 7
	ScalarNull        = 8
)

// Expr.type discriminant values (spec §3 "Expression tree").
const (
	ExprIdentifier  = 1
	ExprLiteral     = 2
	ExprPlaceholder = 3
	ExprFuncCall    = 4
	ExprOperator    = 5
	ExprArray       = 6
	ExprObject      = 7
)

// DecodeScalar parses a Scalar message from payload (row field bytes are
// each one Scalar message).
func DecodeScalar(payload []byte) (*Message, error) {
	return decodeBare("Scalar", payload)
}

// EncodeScalar serialises a Scalar message to bytes for embedding as a row
// field.
func EncodeScalar(m *Message) ([]byte, error) {
	return encodeBare(m)
}
