// Package session implements the L3 engine: transport setup, TLS/capability
// negotiation, authentication, session-wide state tracking, and notice
// dispatch (spec §4.3).
package session

import (
	"time"

	"github.com/mysqlx-shell/core/tracepb"
)

// TLSMode is the connection's TLS negotiation policy (spec §3 "Connection
// options").
type TLSMode int

const (
	TLSPreferred TLSMode = iota
	TLSDisabled
	TLSRequired
	TLSVerifyCA
	TLSVerifyIdentity
)

func (m TLSMode) String() string {
	switch m {
	case TLSDisabled:
		return "disabled"
	case TLSRequired:
		return "required"
	case TLSVerifyCA:
		return "verify-ca"
	case TLSVerifyIdentity:
		return "verify-identity"
	default:
		return "preferred"
	}
}

// Options is the connection options bag (spec §3 "Connection options").
// Invariant: if either CAPath or CADir is set and TLSMode was left at its
// zero value, Normalize promotes the effective mode to TLSVerifyCA.
type Options struct {
	Host       string
	Port       int
	UnixSocket string

	User     string
	Password string
	Schema   string

	TLSMode      TLSMode
	tlsModeSet   bool
	CAPath       string
	CADir        string
	CertPath     string
	KeyPath      string
	CRL          string
	CRLPath      string
	TLSVersions  []string
	Ciphers      []string

	AuthMethod string // "", "PLAIN", or "MYSQL41"; "" means auto-select

	Trace          bool
	ConnectTimeout time.Duration

	// TraceSink, when set, mirrors every traced frame onto the gRPC
	// tracepb.TraceService stream (spec.md §4.5/§7), in addition to (or
	// instead of) the plain io.Writer form enabled by Trace.
	TraceSink func(tracepb.Event)
}

// SetTLSMode records an explicit TLS mode, distinguishing it from the
// zero-value default so Normalize's CA-path invariant can detect whether
// the caller actually chose a mode.
func (o *Options) SetTLSMode(m TLSMode) {
	o.TLSMode = m
	o.tlsModeSet = true
}

// Normalize applies the CA-path-implies-verify-ca invariant and the
// preferred-by-default rule (spec §3).
func (o *Options) Normalize() {
	if !o.tlsModeSet && o.TLSMode == TLSPreferred {
		if o.CAPath != "" || o.CADir != "" {
			o.TLSMode = TLSVerifyCA
		} else {
			o.TLSMode = TLSPreferred
		}
	}
}
