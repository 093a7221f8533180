package traced

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mysqlx-shell/core/tracepb"
)

// Client consumes a Server's Watch stream, reassembling tracepb.Event
// values onto a plain Go channel for display layers (internal/tui).
type Client struct {
	conn *grpc.ClientConn
	rpc  tracepb.TraceServiceClient
}

// Dial connects to a traced Server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("traced: dial %s: %w", addr, err)
	}
	return &Client{conn: conn, rpc: tracepb.NewTraceServiceClient(conn)}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Watch subscribes to sessionID's events (empty subscribes to every
// session) and streams them onto the returned channel until ctx is done or
// the server ends the stream. The channel is closed on exit.
func (c *Client) Watch(ctx context.Context, sessionID string) (<-chan tracepb.Event, error) {
	req := tracepb.NewWatchRequest()
	req.SetSessionID(sessionID)

	stream, err := c.rpc.Watch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("traced: watch: %w", err)
	}

	out := make(chan tracepb.Event)
	go func() {
		defer close(out)
		for {
			resp, err := stream.Recv()
			if err != nil {
				return
			}
			ev, err := resp.Event()
			if err != nil {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
