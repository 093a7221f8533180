package session

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// DialClassic opens a classic-protocol connection alongside an X Protocol
// session, backing the capability-comparison diagnostic mentioned in
// spec.md §1 ("classic-protocol client ... noted for comparison"). The
// classic port is not derivable from Options.Port (the X plugin listens on
// a separate port from the classic server) and must be given explicitly.
func DialClassic(opts Options, classicPort int) (*sql.DB, error) {
	opts.Normalize()
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", opts.User, opts.Password, opts.Host, classicPort, opts.Schema)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("session: dial classic: %w", err)
	}
	return db, nil
}
