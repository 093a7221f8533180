// Package classiccompare runs the same bootstrap-style diagnostic query
// over a classic-protocol connection that session.Connect runs over X
// Protocol, and reports where the two disagree — the comparison spec.md §1
// calls out ("classic-protocol client ... noted for comparison").
package classiccompare

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mysqlx-shell/core/session"
)

// Snapshot is the subset of server-reported state both protocols expose.
type Snapshot struct {
	ServerVersion string
	ConnectionID  uint64
	TLSCipher     string
}

// Report is the outcome of comparing an X Protocol session's Snapshot
// against the equivalent classic-protocol Snapshot.
type Report struct {
	X           Snapshot
	Classic     Snapshot
	Differences []string
}

// Matched reports whether every compared field agreed.
func (r Report) Matched() bool { return len(r.Differences) == 0 }

// FetchClassicSnapshot runs the classic-protocol equivalent of session's
// bootstrap query (spec §4.3) and returns the server-reported state,
// following explain.Client's QueryContext/rows.Scan style (explain/explain.go).
func FetchClassicSnapshot(ctx context.Context, db *sql.DB) (Snapshot, error) {
	row := db.QueryRowContext(ctx,
		"select @@version, connection_id(), "+
			"variable_value from performance_schema.session_status "+
			"where variable_name = 'Ssl_cipher'")

	var snap Snapshot
	var cipher sql.NullString
	if err := row.Scan(&snap.ServerVersion, &snap.ConnectionID, &cipher); err != nil {
		return Snapshot{}, fmt.Errorf("classiccompare: fetch snapshot: %w", err)
	}
	snap.TLSCipher = cipher.String
	return snap, nil
}

// Compare reports where sess's negotiated state disagrees with a
// freshly-fetched classic-protocol Snapshot over db.
func Compare(ctx context.Context, sess *session.Session, db *sql.DB) (Report, error) {
	classic, err := FetchClassicSnapshot(ctx, db)
	if err != nil {
		return Report{}, err
	}

	x := Snapshot{
		ServerVersion: fmt.Sprintf("%d.%d.%d", sess.ServerVersion.Major, sess.ServerVersion.Minor, sess.ServerVersion.Patch),
		ConnectionID:  sess.ConnectionID,
		TLSCipher:     sess.TLSCipher,
	}
	return Report{X: x, Classic: classic, Differences: diff(x, classic)}, nil
}

func diff(x, classic Snapshot) []string {
	var out []string
	if x.ServerVersion != classic.ServerVersion {
		out = append(out, fmt.Sprintf("server version: x=%s classic=%s", x.ServerVersion, classic.ServerVersion))
	}
	if x.TLSCipher != classic.TLSCipher {
		out = append(out, fmt.Sprintf("tls cipher: x=%q classic=%q", x.TLSCipher, classic.TLSCipher))
	}
	return out
}
