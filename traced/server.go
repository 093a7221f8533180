package traced

import (
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/mysqlx-shell/core/tracepb"
)

// Server exposes a gRPC TraceService backed by a Broker, mirroring the
// teacher's server.Server/tapService shape (server/server.go) with
// TraceEvent in place of QueryEvent.
type Server struct {
	grpcServer *grpc.Server
	broker     *Broker
}

// New creates a Server. Call Publish on the returned Broker (via Broker())
// to feed events to watching clients.
func New() *Server {
	gs := grpc.NewServer()
	b := NewBroker()
	tracepb.RegisterTraceServiceServer(gs, &traceService{broker: b})
	return &Server{grpcServer: gs, broker: b}
}

// Broker returns the Server's event broker, for callers that want to
// Publish traced frames directly (e.g. session.Session in trace mode).
func (s *Server) Broker() *Broker { return s.broker }

// Serve starts the gRPC server on lis. It blocks until the server stops.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpcServer.Serve(lis); err != nil {
		return fmt.Errorf("traced: serve: %w", err)
	}
	return nil
}

// Stop immediately stops the server, closing all active connections.
func (s *Server) Stop() { s.grpcServer.Stop() }

// GracefulStop gracefully stops the server.
func (s *Server) GracefulStop() { s.grpcServer.GracefulStop() }

type traceService struct {
	broker *Broker
}

func (s *traceService) Watch(req *tracepb.WatchRequest, stream tracepb.TraceService_WatchServer) error {
	ch, unsub := s.broker.Subscribe()
	defer unsub()

	want := req.SessionID()
	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("traced: watch: %w", ctx.Err())
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if want != "" && ev.ID != want {
				continue
			}
			if err := stream.Send(tracepb.NewWatchResponseFor(ev)); err != nil {
				return fmt.Errorf("traced: watch send: %w", err)
			}
		}
	}
}
