package result

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/mysqlx-shell/core/xerr"
	"github.com/mysqlx-shell/core/xproto"
)

// Row is one decoded data row. Field bytes are each an independently
// Scalar-encoded Protocol-Buffers message (spec §3 "Row"); decoding is
// lazy and happens each time a field is accessed (nothing is cached), since
// most callers never touch most columns of a wide result.
type Row struct {
	cols   []Column
	fields [][]byte
}

func newRow(cols []Column, fields [][]byte) *Row {
	return &Row{cols: cols, fields: fields}
}

// Len reports the number of fields in the row.
func (r *Row) Len() int { return len(r.fields) }

func (r *Row) columnAt(i int) (Column, error) {
	if i < 0 || i >= len(r.cols) {
		return Column{}, xerr.New(xerr.KindProtocolViolation, "result: column index %d out of range (%d columns)", i, len(r.cols))
	}
	return r.cols[i], nil
}

// Value decodes field i into a Value, choosing the Value tag from the
// Scalar's own type; it does not check the column's logical type. The typed
// accessors Int64, Uint64 and Float64 check the column type first.
func (r *Row) Value(i int) (Value, error) {
	col, err := r.columnAt(i)
	if err != nil {
		return Value{}, err
	}
	if i >= len(r.fields) {
		return Value{}, xerr.New(xerr.KindProtocolViolation, "result: field index %d out of range (%d fields)", i, len(r.fields))
	}
	raw := r.fields[i]
	if raw == nil {
		return NewNull(), nil
	}
	scalar, err := xproto.DecodeScalar(raw)
	if err != nil {
		return Value{}, xerr.Wrap(xerr.KindMalformed, err, "result: decode column %q", col.Name)
	}
	return scalarToValue(col, scalar)
}

func scalarToValue(col Column, scalar *xproto.Message) (Value, error) {
	switch scalar.GetUint64("type") {
	case xproto.ScalarNull:
		return NewNull(), nil
	case xproto.ScalarSignedInt:
		return NewInt64(scalar.GetInt64("v_signed_int")), nil
	case xproto.ScalarUnsignedInt:
		return NewUint64(scalar.GetUint64("v_unsigned_int")), nil
	case xproto.ScalarDouble:
		return NewFloat64(scalar.GetDouble("v_double")), nil
	case xproto.ScalarBool:
		return NewBool(scalar.GetBool("v_bool")), nil
	case xproto.ScalarBytes:
		return decodeBytesScalar(col, scalar)
	case xproto.ScalarString:
		return NewString(string(scalar.GetBytes("v_string"))), nil
	default:
		return Value{}, xerr.New(xerr.KindMalformed, "result: unknown scalar type %d", scalar.GetUint64("type"))
	}
}

// decodeBytesScalar interprets a bytes-tagged Scalar according to the
// column's logical type: the wire format carries everything that isn't a
// fixed-width int/double/bool as length-prefixed bytes, so the column
// metadata is what tells us whether those bytes are a decimal string, a
// datetime, a set/enum label, or an opaque blob.
func decodeBytesScalar(col Column, scalar *xproto.Message) (Value, error) {
	raw := scalar.GetBytes("v_octets")
	switch col.Type {
	case ColDecimal:
		return NewDecimal(string(raw)), nil
	case ColDateTime, ColTime:
		t, err := parseXDateTime(raw, col.Type)
		if err != nil {
			return Value{}, err
		}
		return NewDateTime(t), nil
	default:
		return NewBytes(raw), nil
	}
}

// parseXDateTime decodes the X Protocol's packed DATETIME/TIME encoding:
// a sequence of length-encoded integers (year, month, day, hour, minute,
// second, microsecond), trailing fields omitted when zero.
func parseXDateTime(raw []byte, typ ColumnType) (time.Time, error) {
	var fields [7]uint64
	pos := 0
	for idx := 0; idx < len(fields) && pos < len(raw); idx++ {
		v, n, err := readVarUint(raw[pos:])
		if err != nil {
			return time.Time{}, xerr.Wrap(xerr.KindMalformed, err, "result: parse datetime field %d", idx)
		}
		fields[idx] = v
		pos += n
	}
	if typ == ColTime {
		return time.Date(0, 1, 1, int(fields[0]), int(fields[1]), int(fields[2]), int(fields[3])*1000, time.UTC), nil
	}
	return time.Date(int(fields[0]), time.Month(fields[1]), int(fields[2]),
		int(fields[3]), int(fields[4]), int(fields[5]), int(fields[6])*1000, time.UTC), nil
}

// readVarUint reads one protobuf-style base-128 varint from b.
func readVarUint(b []byte) (uint64, int, error) {
	v, n := binary.Uvarint(b)
	if n <= 0 {
		return 0, 0, xerr.New(xerr.KindMalformed, "result: truncated varint")
	}
	return v, n, nil
}

// Int64 returns field i as a signed integer, failing if the column is not
// a signed-integer-compatible type.
func (r *Row) Int64(i int) (int64, error) {
	col, err := r.columnAt(i)
	if err != nil {
		return 0, err
	}
	if col.Type != ColSignedInt {
		return 0, xerr.New(xerr.KindTypeMismatch, "result: column %q is not a signed integer", col.Name)
	}
	v, err := r.Value(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.Int64()
	if !ok {
		return 0, nil
	}
	return n, nil
}

// Uint64 returns field i as an unsigned integer.
func (r *Row) Uint64(i int) (uint64, error) {
	col, err := r.columnAt(i)
	if err != nil {
		return 0, err
	}
	if col.Type != ColUnsignedInt && col.Type != ColBit {
		return 0, xerr.New(xerr.KindTypeMismatch, "result: column %q is not an unsigned integer", col.Name)
	}
	v, err := r.Value(i)
	if err != nil {
		return 0, err
	}
	n, ok := v.Uint64()
	if !ok {
		return 0, nil
	}
	return n, nil
}

// Float64 returns field i as a float/double.
func (r *Row) Float64(i int) (float64, error) {
	col, err := r.columnAt(i)
	if err != nil {
		return 0, err
	}
	if col.Type != ColDouble && col.Type != ColFloat {
		return 0, xerr.New(xerr.KindTypeMismatch, "result: column %q is not a floating point type", col.Name)
	}
	v, err := r.Value(i)
	if err != nil {
		return 0, err
	}
	f, ok := v.Float64()
	if ok {
		return f, nil
	}
	if n, ok := v.Int64(); ok {
		return float64(n), nil
	}
	return math.NaN(), nil
}

// String returns field i as a string (sets, enums, decimals and bytes
// columns all satisfy this).
func (r *Row) String(i int) (string, error) {
	col, err := r.columnAt(i)
	if err != nil {
		return "", err
	}
	v, err := r.Value(i)
	if err != nil {
		return "", err
	}
	if s, ok := v.String(); ok {
		return s, nil
	}
	if b, ok := v.Bytes(); ok {
		return string(b), nil
	}
	return "", xerr.New(xerr.KindTypeMismatch, "result: column %q (%v) is not string-compatible", col.Name, col.Type)
}

// Bytes returns field i as raw bytes.
func (r *Row) Bytes(i int) ([]byte, error) {
	v, err := r.Value(i)
	if err != nil {
		return nil, err
	}
	if b, ok := v.Bytes(); ok {
		return b, nil
	}
	if s, ok := v.String(); ok {
		return []byte(s), nil
	}
	return nil, nil
}

// Bool returns field i as a boolean.
func (r *Row) Bool(i int) (bool, error) {
	col, err := r.columnAt(i)
	if err != nil {
		return false, err
	}
	v, err := r.Value(i)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, xerr.New(xerr.KindTypeMismatch, "result: column %q is not a boolean", col.Name)
	}
	return b, nil
}

// IsNull reports whether field i is SQL/document NULL.
func (r *Row) IsNull(i int) (bool, error) {
	v, err := r.Value(i)
	if err != nil {
		return false, err
	}
	return v.IsNull(), nil
}
