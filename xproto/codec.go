// Package xproto is the L2 message codec: it maps frame kind bytes to typed
// message variants in both directions and serialises/parses their
// Protocol-Buffers payloads (spec §4.5).
package xproto

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"github.com/mysqlx-shell/core/xerr"
)

// Encode serialises m as the payload for kind.
func Encode(kind Kind, m *Message) ([]byte, error) {
	if !Registered(kind) {
		return nil, xerr.New(xerr.KindMalformed, "xproto: unregistered kind %d", kind)
	}
	payload, err := proto.Marshal(m.Raw())
	if err != nil {
		return nil, xerr.Wrap(xerr.KindMalformed, err, "xproto: marshal %s", m.Name())
	}
	return payload, nil
}

// Decode parses payload as the message variant registered for kind.
// Unrecognised kinds fail malformed, per spec §4.5.
func Decode(kind Kind, payload []byte) (*Message, error) {
	name := NameOf(kind)
	if name == "" {
		return nil, xerr.New(xerr.KindMalformed, "xproto: unrecognised kind %d", kind)
	}
	m := NewMessage(name)
	if err := proto.Unmarshal(payload, m.Raw()); err != nil {
		return nil, xerr.Wrap(xerr.KindMalformed, err, "xproto: unmarshal %s", name)
	}
	return m, nil
}

// DecodeNamed parses payload as the named message type, independent of any
// frame Kind. Used by callers (e.g. Notice payload expansion) that know the
// schema message name directly rather than via a Kind.
func DecodeNamed(name string, payload []byte) (*Message, error) {
	return decodeBare(name, payload)
}

// EncodeNamed serialises m to bytes, independent of any frame Kind. Used for
// embedding a message as another message's opaque payload (e.g. Warning
// inside Notice).
func EncodeNamed(m *Message) ([]byte, error) {
	return encodeBare(m)
}

// decodeBare parses payload as the named message type, independent of any
// frame Kind (used for sub-messages embedded as raw bytes, e.g. Scalar
// inside a Row field).
func decodeBare(name string, payload []byte) (*Message, error) {
	m := NewMessage(name)
	if err := proto.Unmarshal(payload, m.Raw()); err != nil {
		return nil, xerr.Wrap(xerr.KindMalformed, err, "xproto: unmarshal %s", name)
	}
	return m, nil
}

func encodeBare(m *Message) ([]byte, error) {
	payload, err := proto.Marshal(m.Raw())
	if err != nil {
		return nil, xerr.Wrap(xerr.KindMalformed, err, "xproto: marshal %s", m.Name())
	}
	return payload, nil
}

// TraceText renders kind/m in the canonical textual form printed by trace
// mode (spec §4.5): Protocol-Buffers text format, with Notice payloads
// recursively expanded rather than shown as opaque bytes.
func TraceText(direction string, kind Kind, m *Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s(kind=%d)", direction, m.Name(), kind)
	body := prototext.Format(m.Raw())
	body = strings.TrimSpace(body)
	if body != "" {
		b.WriteString(" { ")
		b.WriteString(strings.ReplaceAll(body, "\n", " "))
		b.WriteString(" }")
	}
	if m.Name() == "Notice" {
		if nested, ok := expandNotice(m); ok {
			b.WriteString(" -> ")
			b.WriteString(nested)
		}
	}
	return b.String()
}

// expandNotice decodes a Notice's opaque payload according to its type
// discriminant so trace output never shows raw bytes for well-known notice
// kinds.
func expandNotice(n *Message) (string, bool) {
	const (
		noticeWarning                = 1
		noticeSessionVariableChanged = 2
		noticeSessionStateChanged    = 3
	)
	payload := n.GetBytes("payload")
	switch n.GetUint64("type") {
	case noticeWarning:
		w := NewMessage("Warning")
		if err := proto.Unmarshal(payload, w.Raw()); err != nil {
			return "", false
		}
		return prototext.Format(w.Raw()), true
	case noticeSessionVariableChanged:
		v := NewMessage("SessionVariableChanged")
		if err := proto.Unmarshal(payload, v.Raw()); err != nil {
			return "", false
		}
		return prototext.Format(v.Raw()), true
	case noticeSessionStateChanged:
		s := NewMessage("SessionStateChanged")
		if err := proto.Unmarshal(payload, s.Raw()); err != nil {
			return "", false
		}
		return prototext.Format(s.Raw()), true
	}
	return "", false
}
