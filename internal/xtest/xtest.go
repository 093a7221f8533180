// Package xtest launches a disposable MySQL container for integration
// tests that need a real X Protocol server, grounded on the teacher's
// proxy/mysql/proxy_test.go container-startup style (startMySQL).
package xtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/mysqlx-shell/core/session"
)

const (
	User     = "root"
	Password = "test"
	Database = "test"

	xPort       = "33060/tcp"
	classicPort = "3306/tcp"
)

// Server is a running MySQL container exposing both the classic and X
// Protocol ports.
type Server struct {
	Host        string
	XPort       int
	ClassicPort int
}

// Options returns session.Options that dial this server's X Protocol port.
func (s Server) Options() session.Options {
	return session.Options{
		Host:     s.Host,
		Port:     s.XPort,
		User:     User,
		Password: Password,
		Schema:   Database,
	}
}

// StartMySQL launches a mysql:8 container with the X Plugin's port exposed
// alongside the classic port, and registers its teardown with t.Cleanup.
// The official mysql:8 image enables the X Plugin by default, unlike
// proxy_test.go's container, which only needs the classic port.
func StartMySQL(t *testing.T) Server {
	t.Helper()

	ctx := context.Background()
	ctr, err := mysql.Run(ctx, "mysql:8",
		mysql.WithDatabase(Database),
		mysql.WithUsername(User),
		mysql.WithPassword(Password),
		testcontainers.WithExposedPorts(xPort),
	)
	if err != nil {
		t.Fatalf("start mysql container: %v", err)
	}
	t.Cleanup(func() {
		if err := ctr.Terminate(context.Background()); err != nil {
			t.Logf("terminate mysql container: %v", err)
		}
	})

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("get host: %v", err)
	}

	xMapped, err := ctr.MappedPort(ctx, xPort)
	if err != nil {
		t.Fatalf("get x protocol port: %v", err)
	}
	classicMapped, err := ctr.MappedPort(ctx, classicPort)
	if err != nil {
		t.Fatalf("get classic port: %v", err)
	}

	return Server{
		Host:        host,
		XPort:       xMapped.Int(),
		ClassicPort: classicMapped.Int(),
	}
}

// DSN returns a classic-protocol DSN for go-sql-driver/mysql against s.
func (s Server) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", User, Password, s.Host, s.ClassicPort, Database)
}
