package tracepb

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// WatchRequest subscribes to a session's trace stream (an empty SessionID
// subscribes to every session).
type WatchRequest struct {
	raw *dynamicpb.Message
}

// NewWatchRequest allocates an empty WatchRequest.
func NewWatchRequest() *WatchRequest {
	return &WatchRequest{raw: schema.New("WatchRequest")}
}

func (r *WatchRequest) SessionID() string {
	return r.raw.Get(field(schema.Descriptor("WatchRequest"), "session_id")).String()
}

func (r *WatchRequest) SetSessionID(id string) {
	r.raw.Set(field(schema.Descriptor("WatchRequest"), "session_id"), protoreflect.ValueOfString(id))
}

// WatchResponse carries one TraceEvent.
type WatchResponse struct {
	raw *dynamicpb.Message
}

// NewWatchResponse allocates an empty WatchResponse.
func NewWatchResponse() *WatchResponse {
	return &WatchResponse{raw: schema.New("WatchResponse")}
}

// NewWatchResponseFor wraps ev as a WatchResponse ready to send.
func NewWatchResponseFor(ev Event) *WatchResponse {
	r := NewWatchResponse()
	r.raw.Set(field(schema.Descriptor("WatchResponse"), "event"), protoreflect.ValueOfMessage(ev.toMessage().ProtoReflect()))
	return r
}

// Event extracts the carried TraceEvent.
func (r *WatchResponse) Event() (Event, error) {
	fd := field(schema.Descriptor("WatchResponse"), "event")
	v := r.raw.Get(fd).Message().Interface().(*dynamicpb.Message)
	return eventFromMessage(v)
}
