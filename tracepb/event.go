package tracepb

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Direction tags which way a traced frame travelled.
type Direction uint32

const (
	Inbound  Direction = 0
	Outbound Direction = 1
)

func (d Direction) String() string {
	if d == Outbound {
		return "outbound"
	}
	return "inbound"
}

// Event is the Go-native view of a TraceEvent, mirroring the teacher's
// proxy.Event/eventToProto split: plain struct on this side, wire message on
// the other.
type Event struct {
	ID        string
	Direction Direction
	Kind      uint32
	Summary   string
	Payload   []byte
	StartTime time.Time
	Duration  time.Duration
}

func field(md protoreflect.MessageDescriptor, name string) protoreflect.FieldDescriptor {
	fd := md.Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(fmt.Sprintf("tracepb: message %s has no field %q", md.Name(), name))
	}
	return fd
}

// toMessage renders e as a TraceEvent dynamicpb.Message.
func (e Event) toMessage() *dynamicpb.Message {
	md := schema.Descriptor("TraceEvent")
	m := dynamicpb.NewMessage(md)
	m.Set(field(md, "id"), protoreflect.ValueOfString(e.ID))
	m.Set(field(md, "direction"), protoreflect.ValueOfUint32(uint32(e.Direction)))
	m.Set(field(md, "kind"), protoreflect.ValueOfUint32(e.Kind))
	m.Set(field(md, "summary"), protoreflect.ValueOfString(e.Summary))
	if len(e.Payload) > 0 {
		m.Set(field(md, "payload"), protoreflect.ValueOfBytes(e.Payload))
	}
	m.Set(field(md, "start_time"), protoreflect.ValueOfMessage(timestamppb.New(e.StartTime).ProtoReflect()))
	m.Set(field(md, "duration"), protoreflect.ValueOfMessage(durationpb.New(e.Duration).ProtoReflect()))
	return m
}

// eventFromMessage reconstructs an Event from a TraceEvent dynamicpb.Message.
func eventFromMessage(m *dynamicpb.Message) (Event, error) {
	md := schema.Descriptor("TraceEvent")
	ev := Event{
		ID:      m.Get(field(md, "id")).String(),
		Kind:    uint32(m.Get(field(md, "kind")).Uint()),
		Summary: m.Get(field(md, "summary")).String(),
		Payload: m.Get(field(md, "payload")).Bytes(),
	}
	ev.Direction = Direction(m.Get(field(md, "direction")).Uint())

	if ts := m.Get(field(md, "start_time")).Message(); ts.IsValid() {
		var pb timestamppb.Timestamp
		if err := copyMessage(ts.Interface(), &pb); err != nil {
			return Event{}, fmt.Errorf("tracepb: start_time: %w", err)
		}
		ev.StartTime = pb.AsTime()
	}
	if d := m.Get(field(md, "duration")).Message(); d.IsValid() {
		var pb durationpb.Duration
		if err := copyMessage(d.Interface(), &pb); err != nil {
			return Event{}, fmt.Errorf("tracepb: duration: %w", err)
		}
		ev.Duration = pb.AsDuration()
	}
	return ev, nil
}

// copyMessage merges a dynamicpb-held well-known-type value into a concrete
// generated struct (timestamppb.Timestamp, durationpb.Duration) field by
// field, since the dynamic message and the concrete type share the same
// descriptor but not the same Go type.
func copyMessage(src protoreflect.ProtoMessage, dst protoreflect.ProtoMessage) error {
	dstRefl := dst.ProtoReflect()
	src.ProtoReflect().Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		dstRefl.Set(dstRefl.Descriptor().Fields().ByNumber(fd.Number()), v)
		return true
	})
	return nil
}
