package xproto

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/mysqlx-shell/core/internal/protobuild"
)

const (
	typeString  = descriptorpb.FieldDescriptorProto_TYPE_STRING
	typeBytes   = descriptorpb.FieldDescriptorProto_TYPE_BYTES
	typeBool    = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	typeUint32  = descriptorpb.FieldDescriptorProto_TYPE_UINT32
	typeUint64  = descriptorpb.FieldDescriptorProto_TYPE_UINT64
	typeInt64   = descriptorpb.FieldDescriptorProto_TYPE_INT64
	typeDouble  = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
	typeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
)

func f(name string, n int32, t descriptorpb.FieldDescriptorProto_Type) protobuild.Field {
	return protobuild.Field{Name: name, Number: n, Type: t}
}

func rep(name string, n int32, t descriptorpb.FieldDescriptorProto_Type) protobuild.Field {
	return protobuild.Field{Name: name, Number: n, Type: t, Repeated: true}
}

func msg(name string, n int32, msgType string) protobuild.Field {
	return protobuild.Field{Name: name, Number: n, Type: typeMessage, MsgType: msgType}
}

func repMsg(name string, n int32, msgType string) protobuild.Field {
	return protobuild.Field{Name: name, Number: n, Type: typeMessage, MsgType: msgType, Repeated: true}
}

// schemaSpec is the full X Protocol message table: one entry per message
// kind named in spec §3, plus the Expression-tree and CRUD sub-messages of
// §3/§4.4. This stands in for the protoc-generated descriptor that a real
// build would produce from mysqlx*.proto.
var schemaSpec = []protobuild.Message{
	{Name: "AuthenticateStart", Fields: []protobuild.Field{
		f("mech_name", 1, typeString),
		f("auth_data", 2, typeBytes),
		f("initial_response", 3, typeBytes),
	}},
	{Name: "AuthenticateContinue", Fields: []protobuild.Field{f("auth_data", 1, typeBytes)}},
	{Name: "AuthenticateOk", Fields: []protobuild.Field{f("auth_data", 1, typeBytes)}},
	{Name: "AuthenticateFail", Fields: []protobuild.Field{f("message", 1, typeString)}},

	{Name: "Capability", Fields: []protobuild.Field{
		f("name", 1, typeString),
		f("bool_value", 2, typeBool),
	}},
	{Name: "CapabilitiesGet"},
	{Name: "CapabilitiesSet", Fields: []protobuild.Field{repMsg("capabilities", 1, "Capability")}},

	{Name: "Close"},
	{Name: "Ok", Fields: []protobuild.Field{f("message", 1, typeString)}},
	{Name: "Error", Fields: []protobuild.Field{
		f("severity", 1, typeUint32),
		f("code", 2, typeUint32),
		f("sql_state", 3, typeString),
		f("msg", 4, typeString),
	}},

	{Name: "Warning", Fields: []protobuild.Field{
		f("level", 1, typeUint32),
		f("code", 2, typeUint32),
		f("msg", 3, typeString),
	}},
	{Name: "SessionStateChanged", Fields: []protobuild.Field{
		f("param", 1, typeUint32),
		f("value", 2, typeBytes),
	}},
	{Name: "SessionVariableChanged", Fields: []protobuild.Field{
		f("name", 1, typeString),
		f("value", 2, typeBytes),
	}},
	{Name: "Notice", Fields: []protobuild.Field{
		f("type", 1, typeUint32),
		f("scope", 2, typeUint32),
		f("payload", 3, typeBytes),
	}},

	{Name: "Scalar", Fields: []protobuild.Field{
		f("type", 1, typeUint32),
		f("v_signed_int", 2, typeInt64),
		f("v_unsigned_int", 3, typeUint64),
		f("v_double", 4, typeDouble),
		f("v_bool", 5, typeBool),
		f("v_string", 6, typeBytes),
		f("v_octets", 7, typeBytes),
	}},
	{Name: "ColumnIdentifier", Fields: []protobuild.Field{
		rep("document_path", 1, typeString),
		f("name", 2, typeString),
		f("table_name", 3, typeString),
		f("schema_name", 4, typeString),
	}},
	{Name: "ObjectField", Fields: []protobuild.Field{
		f("key", 1, typeString),
		msg("value", 2, "Expr"),
	}},
	{Name: "Expr", Fields: []protobuild.Field{
		f("type", 1, typeUint32),
		msg("identifier", 2, "ColumnIdentifier"),
		msg("literal", 3, "Scalar"),
		f("placeholder_name", 4, typeString),
		f("function_name", 5, typeString),
		repMsg("args", 6, "Expr"),
		repMsg("array", 7, "Expr"),
		repMsg("object_fields", 8, "ObjectField"),
	}},

	{Name: "Collection", Fields: []protobuild.Field{
		f("name", 1, typeString),
		f("schema", 2, typeString),
	}},
	{Name: "Limit", Fields: []protobuild.Field{
		f("row_count", 1, typeUint64),
		f("offset", 2, typeUint64),
	}},
	{Name: "OrderExpr", Fields: []protobuild.Field{
		msg("expr", 1, "Expr"),
		f("direction", 2, typeUint32),
	}},
	{Name: "Projection", Fields: []protobuild.Field{
		msg("source", 1, "Expr"),
		f("alias", 2, typeString),
	}},
	{Name: "TypedRow", Fields: []protobuild.Field{repMsg("values", 1, "Expr")}},
	{Name: "UpdateOperation", Fields: []protobuild.Field{
		msg("source", 1, "ColumnIdentifier"),
		f("operation", 2, typeUint32),
		msg("value", 3, "Expr"),
	}},

	{Name: "Find", Fields: []protobuild.Field{
		msg("collection", 1, "Collection"),
		f("data_model", 2, typeUint32),
		msg("criteria", 3, "Expr"),
		repMsg("args", 4, "Scalar"),
		msg("limit", 5, "Limit"),
		repMsg("order", 6, "OrderExpr"),
		repMsg("grouping", 7, "Expr"),
		msg("grouping_criteria", 8, "Expr"),
		repMsg("projection", 9, "Projection"),
	}},
	{Name: "Insert", Fields: []protobuild.Field{
		msg("collection", 1, "Collection"),
		f("data_model", 2, typeUint32),
		repMsg("row", 3, "TypedRow"),
		repMsg("projection", 4, "Projection"),
	}},
	{Name: "Update", Fields: []protobuild.Field{
		msg("collection", 1, "Collection"),
		f("data_model", 2, typeUint32),
		msg("criteria", 3, "Expr"),
		repMsg("args", 4, "Scalar"),
		repMsg("operation", 5, "UpdateOperation"),
		msg("limit", 6, "Limit"),
		repMsg("order", 7, "OrderExpr"),
	}},
	{Name: "Delete", Fields: []protobuild.Field{
		msg("collection", 1, "Collection"),
		f("data_model", 2, typeUint32),
		msg("criteria", 3, "Expr"),
		repMsg("args", 4, "Scalar"),
		msg("limit", 5, "Limit"),
		repMsg("order", 6, "OrderExpr"),
	}},

	{Name: "StmtExecute", Fields: []protobuild.Field{
		f("namespace", 1, typeString),
		f("stmt", 2, typeBytes),
		repMsg("args", 3, "Scalar"),
		f("compact_metadata", 4, typeBool),
	}},
	{Name: "ColumnMetaData", Fields: []protobuild.Field{
		f("type", 1, typeUint32),
		f("name", 2, typeString),
		f("original_name", 3, typeString),
		f("table", 4, typeString),
		f("original_table", 5, typeString),
		f("schema", 6, typeString),
		f("catalog", 7, typeString),
		f("collation", 8, typeUint64),
		f("fractional_digits", 9, typeUint32),
		f("length", 10, typeUint32),
		f("flags", 11, typeUint32),
		f("content_type", 12, typeUint32),
	}},
	{Name: "Row", Fields: []protobuild.Field{rep("fields", 1, typeBytes)}},
	{Name: "FetchDone"},
	{Name: "FetchDoneMoreResultsets"},
	{Name: "StmtExecuteOk", Fields: []protobuild.Field{
		f("rows_affected", 1, typeUint64),
		f("last_insert_id", 2, typeUint64),
		rep("generated_ids", 3, typeUint64),
		f("message", 4, typeString),
	}},
}

var schema = mustBuildSchema()

func mustBuildSchema() *protobuild.File {
	file, err := protobuild.Build("mysqlx/wire.proto", "mysqlx.wire", schemaSpec)
	if err != nil {
		panic(err)
	}
	return file
}
