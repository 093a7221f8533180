// Command mysqlxsh is an interactive X Protocol shell: it connects,
// launches the Bubble Tea REPL (internal/tui), and optionally exposes
// trace-mode frames over gRPC so an external monitor can attach, grounded
// on the teacher's flag.NewFlagSet("sql-tap", ...)/"sql-tapd", ...) split
// (main.go, cmd/sql-tapd/main.go) collapsed into one binary since this
// repo has one proxy-free client, not a proxy daemon plus a thin CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mysqlx-shell/core/internal/tui"
	"github.com/mysqlx-shell/core/mysqlx"
	"github.com/mysqlx-shell/core/session"
	"github.com/mysqlx-shell/core/traced"
)

var version = "dev"

func main() {
	fs := flag.NewFlagSet("mysqlxsh", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "mysqlxsh — interactive MySQL X Protocol shell\n\nUsage:\n  mysqlxsh [flags] <dsn>\n\nFlags:\n")
		fs.PrintDefaults()
	}

	traceGRPC := fs.String("trace-grpc", "", "gRPC address to stream trace-mode frames on (e.g. :9091)")
	showVersion := fs.Bool("version", false, "show version and exit")

	_ = fs.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("mysqlxsh %s\n", version)
		return
	}

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	if err := run(fs.Arg(0), *traceGRPC); err != nil {
		log.Fatal(err)
	}
}

func run(dsn, traceGRPCAddr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := session.ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	var traceSrv *traced.Server
	if traceGRPCAddr != "" {
		traceSrv = traced.New()
		opts.TraceSink = traceSrv.Broker().Publish

		var lc net.ListenConfig
		lis, err := lc.Listen(ctx, "tcp", traceGRPCAddr)
		if err != nil {
			return fmt.Errorf("listen grpc %s: %w", traceGRPCAddr, err)
		}
		go func() {
			log.Printf("trace gRPC server listening on %s", traceGRPCAddr)
			if err := traceSrv.Serve(lis); err != nil {
				log.Printf("trace grpc serve: %v", err)
			}
		}()
		defer traceSrv.GracefulStop()
	}

	sess, err := mysqlx.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() { _ = sess.Close(ctx) }()

	return tui.Run(sess)
}
