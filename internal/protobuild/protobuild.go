// Package protobuild constructs protobuf message schemas at process start
// from plain Go field tables instead of protoc-generated code. It exists
// because this repository has no protoc build step: message descriptors are
// assembled in memory via google.golang.org/protobuf's reflection APIs
// (protodesc + dynamicpb), which is the supported way to describe a schema
// at runtime without generated .pb.go sources.
package protobuild

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Field describes one field of a message in the schema table.
type Field struct {
	Name     string
	Number   int32
	Type     descriptorpb.FieldDescriptorProto_Type
	Repeated bool
	// MsgType names another Message in the same file (for TYPE_MESSAGE
	// fields). Leave empty for scalar fields.
	MsgType string
	// External names a fully-qualified message type from an imported file
	// (e.g. "google.protobuf.Timestamp"), for TYPE_MESSAGE fields that
	// reach outside this schema's own file. Mutually exclusive with
	// MsgType; when set, the owning file must also be imported via
	// BuildWithImports.
	External string
}

// Message describes one message type in the schema table.
type Message struct {
	Name   string
	Fields []Field
}

// File is a compiled schema: a protoreflect.FileDescriptor plus a lookup of
// message descriptors by name, ready to back dynamicpb.Message values.
type File struct {
	desc     protoreflect.FileDescriptor
	messages map[string]protoreflect.MessageDescriptor
}

// Build compiles a table of Message specs into a File. pkg is the protobuf
// package name (e.g. "mysqlx.wire"); path is a synthetic .proto file path
// used only as a descriptor registry key.
func Build(path, pkg string, msgs []Message) (*File, error) {
	return BuildWithImports(path, pkg, msgs, nil)
}

// BuildWithImports is Build plus a list of well-known-type .proto paths
// (e.g. "google/protobuf/timestamp.proto") that fields may reference via
// Field.External. Imported descriptors are resolved out of the global
// registry that the types/known/* packages populate via their own init().
func BuildWithImports(path, pkg string, msgs []Message, imports []string) (*File, error) {
	fd := &descriptorpb.FileDescriptorProto{
		Name:       strPtr(path),
		Package:    strPtr(pkg),
		Syntax:     strPtr("proto3"),
		Dependency: imports,
	}

	for _, m := range msgs {
		dp := &descriptorpb.DescriptorProto{Name: strPtr(m.Name)}
		for _, f := range m.Fields {
			fp := &descriptorpb.FieldDescriptorProto{
				Name:   strPtr(f.Name),
				Number: int32Ptr(f.Number),
				Type:   typePtr(f.Type),
			}
			if f.Repeated {
				fp.Label = labelPtr(descriptorpb.FieldDescriptorProto_LABEL_REPEATED)
			} else {
				fp.Label = labelPtr(descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL)
			}
			if f.Type == descriptorpb.FieldDescriptorProto_TYPE_MESSAGE {
				switch {
				case f.External != "":
					fp.TypeName = strPtr("." + f.External)
				case f.MsgType != "":
					fp.TypeName = strPtr("." + pkg + "." + f.MsgType)
				default:
					return nil, fmt.Errorf("protobuild: field %s.%s: TYPE_MESSAGE requires MsgType or External", m.Name, f.Name)
				}
			}
			dp.Field = append(dp.Field, fp)
		}
		fd.MessageType = append(fd.MessageType, dp)
	}

	reflectFD, err := protodesc.NewFile(fd, protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("protobuild: build file descriptor: %w", err)
	}

	f := &File{desc: reflectFD, messages: make(map[string]protoreflect.MessageDescriptor, len(msgs))}
	for _, m := range msgs {
		md := reflectFD.Messages().ByName(protoreflect.Name(m.Name))
		if md == nil {
			return nil, fmt.Errorf("protobuild: message %s not found after build", m.Name)
		}
		f.messages[m.Name] = md
	}
	return f, nil
}

// New allocates a fresh, empty dynamic message of the named type.
func (f *File) New(name string) *dynamicpb.Message {
	md, ok := f.messages[name]
	if !ok {
		panic(fmt.Sprintf("protobuild: unknown message %q", name))
	}
	return dynamicpb.NewMessage(md)
}

// Descriptor returns the message descriptor for name, for callers that need
// direct protoreflect access (field lookups, etc.).
func (f *File) Descriptor(name string) protoreflect.MessageDescriptor {
	md, ok := f.messages[name]
	if !ok {
		panic(fmt.Sprintf("protobuild: unknown message %q", name))
	}
	return md
}

func strPtr(s string) *string { return &s }
func int32Ptr(i int32) *int32 { return &i }
func typePtr(t descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto_Type {
	return &t
}
func labelPtr(l descriptorpb.FieldDescriptorProto_Label) *descriptorpb.FieldDescriptorProto_Label {
	return &l
}
