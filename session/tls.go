package session

import (
	"crypto/x509"
	"io"
	"os"

	"github.com/mysqlx-shell/core/xerr"
)

func loadCAPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerr.Wrap(xerr.KindTLSHandshakeFailed, err, "session: read ca file")
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, xerr.New(xerr.KindTLSHandshakeFailed, "session: no certificates found in %s", path)
	}
	return pool, nil
}

// traceEnabledByEnv mirrors spec §6's MYSQLX_TRACE_CONNECTION handling:
// any non-empty value enables trace mode at session construction.
func traceEnabledByEnv() bool {
	return os.Getenv("MYSQLX_TRACE_CONNECTION") != ""
}

func traceDestination() io.Writer { return os.Stderr }

// defaultUser returns the connection-string-absent default username, taken
// from the Unix USER environment variable (spec §6 "Environment variables
// consumed").
func defaultUser() string {
	return os.Getenv("USER")
}
