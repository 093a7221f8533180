// Package xerr defines the sum-type error kinds propagated by every layer of
// the X Protocol client: transport, codec, session, and statement builders.
package xerr

import (
	"errors"
	"fmt"
)

// Kind discriminates the class of failure, per spec §7.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransportLost
	KindMalformed
	KindTLSHandshakeFailed
	KindAuthFailed
	KindServerError
	KindChainViolation
	KindUnboundPlaceholder
	KindTimeout
	KindProtocolViolation
	KindTypeMismatch
)

func (k Kind) String() string {
	switch k {
	case KindTransportLost:
		return "transport-lost"
	case KindMalformed:
		return "malformed"
	case KindTLSHandshakeFailed:
		return "tls-handshake-failed"
	case KindAuthFailed:
		return "auth-failed"
	case KindServerError:
		return "server-error"
	case KindChainViolation:
		return "chain-violation"
	case KindUnboundPlaceholder:
		return "unbound-placeholder"
	case KindTimeout:
		return "timeout"
	case KindProtocolViolation:
		return "protocol-violation"
	case KindTypeMismatch:
		return "type-mismatch"
	}
	return "unknown"
}

// Error is the concrete error value carried across the core. Code and
// SQLState are only meaningful for KindServerError.
type Error struct {
	Kind     Kind
	Code     uint32
	SQLState string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Kind == KindServerError {
		return fmt.Sprintf("%s: [%s] (%d) %s", e.Kind, e.SQLState, e.Code, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a plain *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a *Error of the given kind, wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Server builds a server-error carrying the code/state/message reported on
// the wire.
func Server(code uint32, sqlState, message string) *Error {
	return &Error{Kind: KindServerError, Code: code, SQLState: sqlState, Message: message}
}

// Is reports whether err (or something it wraps) is an *Error of kind k.
func Is(err error, k Kind) bool {
	var xe *Error
	if errors.As(err, &xe) {
		return xe.Kind == k
	}
	return false
}

// serverGoneCodes mirrors the C-API CR_SERVER_GONE_ERROR/CR_SERVER_LOST class
// of codes that the server can also report wrapped in a typed error frame;
// these are translated to KindTransportLost per spec §7.
var serverGoneCodes = map[uint32]bool{
	2006: true, // CR_SERVER_GONE_ERROR
	2013: true, // CR_SERVER_LOST
	2055: true, // CR_SERVER_LOST_EXTENDED
}

// IsTransportLostCode reports whether a server-reported error code belongs
// to the "connection actually died" class that must be surfaced as
// transport-lost rather than a recoverable server-error.
func IsTransportLostCode(code uint32) bool {
	return serverGoneCodes[code]
}
