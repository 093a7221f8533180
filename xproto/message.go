package xproto

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Message is a thin, protobuf-reflection-backed wrapper used in place of
// protoc-generated accessor methods (there is no protoc step in this
// repository; see DESIGN.md). Upper layers (session, result, crud) never
// touch protoreflect directly — they go through these typed helpers.
type Message struct {
	raw  *dynamicpb.Message
	name string
}

func wrap(name string, raw *dynamicpb.Message) *Message {
	return &Message{raw: raw, name: name}
}

// NewMessage allocates an empty message of the named schema type.
func NewMessage(name string) *Message {
	return wrap(name, schema.New(name))
}

// Name returns the schema message name (e.g. "AuthenticateStart").
func (m *Message) Name() string { return m.name }

// Raw exposes the underlying proto.Message for Marshal/Unmarshal.
func (m *Message) Raw() proto.Message { return m.raw }

func (m *Message) field(name string) protoreflect.FieldDescriptor {
	fd := m.raw.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(fmt.Sprintf("xproto: message %s has no field %q", m.name, name))
	}
	return fd
}

func (m *Message) GetString(field string) string { return m.raw.Get(m.field(field)).String() }
func (m *Message) SetString(field, v string) {
	m.raw.Set(m.field(field), protoreflect.ValueOfString(v))
}

func (m *Message) GetBytes(field string) []byte { return m.raw.Get(m.field(field)).Bytes() }
func (m *Message) SetBytes(field string, v []byte) {
	m.raw.Set(m.field(field), protoreflect.ValueOfBytes(v))
}

func (m *Message) GetUint64(field string) uint64 { return m.raw.Get(m.field(field)).Uint() }
func (m *Message) SetUint64(field string, v uint64) {
	m.raw.Set(m.field(field), protoreflect.ValueOfUint64(v))
}

func (m *Message) GetInt64(field string) int64 { return m.raw.Get(m.field(field)).Int() }
func (m *Message) SetInt64(field string, v int64) {
	m.raw.Set(m.field(field), protoreflect.ValueOfInt64(v))
}

func (m *Message) GetDouble(field string) float64 { return m.raw.Get(m.field(field)).Float() }
func (m *Message) SetDouble(field string, v float64) {
	m.raw.Set(m.field(field), protoreflect.ValueOfFloat64(v))
}

func (m *Message) GetBool(field string) bool { return m.raw.Get(m.field(field)).Bool() }
func (m *Message) SetBool(field string, v bool) {
	m.raw.Set(m.field(field), protoreflect.ValueOfBool(v))
}

// HasField reports whether an optional scalar/message field is set.
func (m *Message) HasField(field string) bool { return m.raw.Has(m.field(field)) }

// GetMessage returns the named singular-message field, wrapped, allocating
// it in place (protobuf3 singular message fields are implicitly optional).
func (m *Message) GetMessage(field, msgName string) *Message {
	fd := m.field(field)
	v := m.raw.Mutable(fd)
	return wrap(msgName, v.Message().Interface().(*dynamicpb.Message))
}

// SetMessage assigns a previously-built sub-message into field.
func (m *Message) SetMessage(field string, sub *Message) {
	m.raw.Set(m.field(field), protoreflect.ValueOfMessage(sub.raw.ProtoReflect()))
}

// AppendMessage appends and returns a new element of a repeated message
// field.
func (m *Message) AppendMessage(field, msgName string) *Message {
	fd := m.field(field)
	list := m.raw.Mutable(fd).List()
	md := fd.Message()
	elem := dynamicpb.NewMessage(md)
	list.Append(protoreflect.ValueOfMessage(elem.ProtoReflect()))
	return wrap(msgName, elem)
}

// AppendMessageValue appends a previously-built message as a new element of
// a repeated message field (unlike AppendMessage, which allocates a fresh
// empty element for the caller to fill in place).
func (m *Message) AppendMessageValue(field string, sub *Message) {
	fd := m.field(field)
	list := m.raw.Mutable(fd).List()
	list.Append(protoreflect.ValueOfMessage(sub.raw.ProtoReflect()))
}

// Repeated returns every element of a repeated message field, wrapped.
func (m *Message) Repeated(field, msgName string) []*Message {
	fd := m.field(field)
	if !m.raw.Has(fd) {
		return nil
	}
	list := m.raw.Get(fd).List()
	out := make([]*Message, list.Len())
	for i := range out {
		out[i] = wrap(msgName, list.Get(i).Message().Interface().(*dynamicpb.Message))
	}
	return out
}

// RepeatedBytes returns every element of a repeated bytes field.
func (m *Message) RepeatedBytes(field string) [][]byte {
	fd := m.field(field)
	if !m.raw.Has(fd) {
		return nil
	}
	list := m.raw.Get(fd).List()
	out := make([][]byte, list.Len())
	for i := range out {
		out[i] = list.Get(i).Bytes()
	}
	return out
}

// AppendBytes appends v to a repeated bytes field.
func (m *Message) AppendBytes(field string, v []byte) {
	fd := m.field(field)
	list := m.raw.Mutable(fd).List()
	list.Append(protoreflect.ValueOfBytes(v))
}

// AppendString appends v to a repeated string field.
func (m *Message) AppendString(field, v string) {
	fd := m.field(field)
	list := m.raw.Mutable(fd).List()
	list.Append(protoreflect.ValueOfString(v))
}

// RepeatedStrings returns every element of a repeated string field.
func (m *Message) RepeatedStrings(field string) []string {
	fd := m.field(field)
	if !m.raw.Has(fd) {
		return nil
	}
	list := m.raw.Get(fd).List()
	out := make([]string, list.Len())
	for i := range out {
		out[i] = list.Get(i).String()
	}
	return out
}

// AppendUint64 appends v to a repeated uint64 field.
func (m *Message) AppendUint64(field string, v uint64) {
	fd := m.field(field)
	list := m.raw.Mutable(fd).List()
	list.Append(protoreflect.ValueOfUint64(v))
}

// RepeatedUint64 returns every element of a repeated uint64 field.
func (m *Message) RepeatedUint64(field string) []uint64 {
	fd := m.field(field)
	if !m.raw.Has(fd) {
		return nil
	}
	list := m.raw.Get(fd).List()
	out := make([]uint64, list.Len())
	for i := range out {
		out[i] = list.Get(i).Uint()
	}
	return out
}
