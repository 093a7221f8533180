// Command classic connects to a MySQL server over both X Protocol and the
// classic protocol and reports where the two disagree, adapted from the
// teacher's example/mysql/main.go polling loop (trimmed from a continuous
// traffic generator down to a one-shot comparison, since the repeated
// doQueries/doTransaction/doNPlus1 traffic it generated has no analogue
// here — this repo compares connection state, not query traffic).
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/mysqlx-shell/core/classiccompare"
	"github.com/mysqlx-shell/core/mysqlx"
	"github.com/mysqlx-shell/core/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run() error {
	ctx := context.Background()

	opts := session.Options{
		Host:     getenv("MYSQLX_HOST", "127.0.0.1"),
		Port:     33060,
		User:     getenv("MYSQLX_USER", "root"),
		Password: os.Getenv("MYSQLX_PASSWORD"),
		Schema:   os.Getenv("MYSQLX_SCHEMA"),
	}

	sess, err := mysqlx.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect x protocol: %w", err)
	}
	defer func() { _ = sess.Close(ctx) }()

	classicPort := 3306
	db, err := session.DialClassic(opts, classicPort)
	if err != nil {
		return fmt.Errorf("dial classic: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping classic: %w", err)
	}

	report, err := classiccompare.Compare(ctx, sess.Session, db)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	fmt.Printf("x protocol:     version=%s connection_id=%d cipher=%q\n",
		report.X.ServerVersion, report.X.ConnectionID, report.X.TLSCipher)
	fmt.Printf("classic protocol: version=%s connection_id=%d cipher=%q\n",
		report.Classic.ServerVersion, report.Classic.ConnectionID, report.Classic.TLSCipher)

	if report.Matched() {
		fmt.Println("no differences")
		return nil
	}

	fmt.Println("differences:")
	for _, d := range report.Differences {
		fmt.Printf("  - %s\n", d)
	}
	return nil
}
