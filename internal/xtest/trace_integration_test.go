package xtest_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mysqlx-shell/core/internal/xtest"
	"github.com/mysqlx-shell/core/mysqlx"
	"github.com/mysqlx-shell/core/traced"
)

// TestTraceStreamMatchesDirectWriter is property S7: gRPC trace streaming
// delivers the same frames seen by a direct Session.Trace writer, for a
// session run against a real server, mirroring proxy_test.go's
// container-backed integration style.
func TestTraceStreamMatchesDirectWriter(t *testing.T) {
	t.Parallel()

	srv := xtest.StartMySQL(t)

	traceSrv := traced.New()
	ch := traceSrv.Broker()
	sub, unsubscribe := ch.Subscribe()
	defer unsubscribe()

	opts := srv.Options()
	var direct bytes.Buffer
	opts.TraceSink = traceSrv.Broker().Publish

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := mysqlx.Connect(ctx, opts)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = sess.Close(ctx) }()

	// Connect itself traces the handshake onto sub; drain it so the
	// comparison below only covers frames from the statement below, which
	// is the only thing the direct writer (attached post-connect) sees.
	draining := true
	for draining {
		select {
		case <-sub:
		default:
			draining = false
		}
	}

	sess.Trace(&direct)

	if err := sess.Execute(ctx, "SELECT 1"); err != nil {
		t.Fatalf("execute: %v", err)
	}

	directLines := strings.Split(strings.TrimRight(direct.String(), "\n"), "\n")

	var streamed []string
	timeout := time.After(2 * time.Second)
collect:
	for len(streamed) < len(directLines) {
		select {
		case ev := <-sub:
			streamed = append(streamed, ev.Summary)
		case <-timeout:
			break collect
		}
	}

	if len(streamed) != len(directLines) {
		t.Fatalf("streamed %d frames, direct writer saw %d", len(streamed), len(directLines))
	}
	for i, line := range directLines {
		if streamed[i] != line {
			t.Errorf("frame %d: streamed %q, direct %q", i, streamed[i], line)
		}
	}
}
