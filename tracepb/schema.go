// Package tracepb defines the wire schema for the trace-mode diagnostic
// side-channel: a TraceEvent per decoded frame, streamed to an external
// monitor over gRPC (spec.md §4.5/§7 trace mode). Like xproto, there is no
// protoc step here — the schema is assembled at process start via
// internal/protobuild, this time importing the well-known Timestamp/Duration
// types instead of declaring its own.
package tracepb

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mysqlx-shell/core/internal/protobuild"
)

const (
	typeString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeBytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	typeUint32  = descriptorpb.FieldDescriptorProto_TYPE_UINT32
	typeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
)

func f(name string, n int32, t descriptorpb.FieldDescriptorProto_Type) protobuild.Field {
	return protobuild.Field{Name: name, Number: n, Type: t}
}

func msg(name string, n int32, msgType string) protobuild.Field {
	return protobuild.Field{Name: name, Number: n, Type: typeMessage, MsgType: msgType}
}

func ext(name string, n int32, fullName string) protobuild.Field {
	return protobuild.Field{Name: name, Number: n, Type: typeMessage, External: fullName}
}

var schemaSpec = []protobuild.Message{
	{Name: "TraceEvent", Fields: []protobuild.Field{
		f("id", 1, typeString),
		f("direction", 2, typeUint32),
		f("kind", 3, typeUint32),
		f("summary", 4, typeString),
		f("payload", 5, typeBytes),
		ext("start_time", 6, "google.protobuf.Timestamp"),
		ext("duration", 7, "google.protobuf.Duration"),
	}},
	{Name: "WatchRequest", Fields: []protobuild.Field{
		f("session_id", 1, typeString),
	}},
	{Name: "WatchResponse", Fields: []protobuild.Field{
		msg("event", 1, "TraceEvent"),
	}},
}

var schema = mustBuildSchema()

func mustBuildSchema() *protobuild.File {
	file, err := protobuild.BuildWithImports("tracepb/trace.proto", "tracepb", schemaSpec, []string{
		"google/protobuf/timestamp.proto",
		"google/protobuf/duration.proto",
	})
	if err != nil {
		panic(err)
	}
	return file
}
