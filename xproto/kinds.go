package xproto

import "github.com/mysqlx-shell/core/xerr"

// Kind is the single-byte frame discriminant (spec §3 "Message kind", §6
// "Kind bytes are partitioned into client-only and server-only ranges").
type Kind byte

// Client-to-server kinds (1-39).
const (
	KindConCapabilitiesGet Kind = iota + 1
	KindConCapabilitiesSet
	KindConClose
	KindSessAuthenticateStart
	KindSessAuthenticateContinue
	KindSessReset
	KindSessClose
	KindSQLStmtExecute
	KindCrudFind
	KindCrudInsert
	KindCrudUpdate
	KindCrudDelete
)

// Server-to-client kinds (64-99).
const (
	KindOk Kind = iota + 64
	KindError
	KindConCapabilities
	KindSessAuthenticateContinueServer
	KindSessAuthenticateOk
	KindNotice
	KindResultsetColumnMetaData
	KindResultsetRow
	KindResultsetFetchDone
	KindResultsetFetchDoneMoreResultsets
	KindSQLStmtExecuteOk
)

const clientKindBoundary = 40

// IsClient reports whether k falls in the client-only range.
func (k Kind) IsClient() bool { return k >= 1 && k < clientKindBoundary }

// IsServer reports whether k falls in the server-only range.
func (k Kind) IsServer() bool { return k >= 64 }

// messageName maps a Kind to its schema message name.
var messageName = map[Kind]string{
	KindConCapabilitiesGet:               "CapabilitiesGet",
	KindConCapabilitiesSet:               "CapabilitiesSet",
	KindConClose:                         "Close",
	KindSessAuthenticateStart:            "AuthenticateStart",
	KindSessAuthenticateContinue:         "AuthenticateContinue",
	KindSessReset:                        "Close",
	KindSessClose:                        "Close",
	KindSQLStmtExecute:                   "StmtExecute",
	KindCrudFind:                         "Find",
	KindCrudInsert:                       "Insert",
	KindCrudUpdate:                       "Update",
	KindCrudDelete:                       "Delete",
	KindOk:                               "Ok",
	KindError:                            "Error",
	KindConCapabilities:                  "CapabilitiesSet",
	KindSessAuthenticateContinueServer:   "AuthenticateContinue",
	KindSessAuthenticateOk:               "AuthenticateOk",
	KindNotice:                           "Notice",
	KindResultsetColumnMetaData:          "ColumnMetaData",
	KindResultsetRow:                     "Row",
	KindResultsetFetchDone:               "FetchDone",
	KindResultsetFetchDoneMoreResultsets: "FetchDoneMoreResultsets",
	KindSQLStmtExecuteOk:                 "StmtExecuteOk",
}

// NameOf returns the schema message name for k, or "" if k is unregistered.
func NameOf(k Kind) string { return messageName[k] }

// Registered reports whether k is a known kind.
func Registered(k Kind) bool {
	_, ok := messageName[k]
	return ok
}

// CheckPartition verifies a kind read by one side matches the expected
// direction, failing protocol-violation on a crossed partition (spec §6).
func CheckPartition(k Kind, expectServer bool) error {
	if expectServer && !k.IsServer() {
		return xerr.New(xerr.KindProtocolViolation, "xproto: expected server kind, got %d", k)
	}
	if !expectServer && !k.IsClient() {
		return xerr.New(xerr.KindProtocolViolation, "xproto: expected client kind, got %d", k)
	}
	return nil
}
