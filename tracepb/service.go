package tracepb

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

// TraceService is a single server-streaming RPC: Watch streams TraceEvents
// as they are submitted, mirroring the teacher's TapService.Watch shape
// (server/server.go) but without a protoc-gen-go-grpc step — the
// ServiceDesc below is hand-assembled the way the generated code would be.
const (
	serviceName   = "tracepb.TraceService"
	watchFullName = "/tracepb.TraceService/Watch"
)

// TraceServiceServer is implemented by package traced's traceService, which
// traced.New registers.
type TraceServiceServer interface {
	Watch(*WatchRequest, TraceService_WatchServer) error
}

// TraceService_WatchServer is the server side of the Watch stream.
type TraceService_WatchServer interface {
	Send(*WatchResponse) error
	grpc.ServerStream
}

type traceServiceWatchServer struct {
	grpc.ServerStream
}

func (x *traceServiceWatchServer) Send(m *WatchResponse) error {
	return x.ServerStream.SendMsg(m.raw)
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	req := NewWatchRequest()
	if err := stream.RecvMsg(req.raw); err != nil {
		return err
	}
	return srv.(TraceServiceServer).Watch(req, &traceServiceWatchServer{ServerStream: stream})
}

// ServiceDesc registers TraceService with a *grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TraceServiceServer)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "tracepb/trace.proto",
}

// RegisterTraceServiceServer wires srv into s, the way a generated
// RegisterXServer function would.
func RegisterTraceServiceServer(s grpc.ServiceRegistrar, srv TraceServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// TraceServiceClient is the client-side stub.
type TraceServiceClient interface {
	Watch(ctx context.Context, req *WatchRequest, opts ...grpc.CallOption) (TraceService_WatchClient, error)
}

type traceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewTraceServiceClient wraps cc in a TraceServiceClient.
func NewTraceServiceClient(cc grpc.ClientConnInterface) TraceServiceClient {
	return &traceServiceClient{cc: cc}
}

func (c *traceServiceClient) Watch(ctx context.Context, req *WatchRequest, opts ...grpc.CallOption) (TraceService_WatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], watchFullName, opts...)
	if err != nil {
		return nil, fmt.Errorf("tracepb: watch: %w", err)
	}
	x := &traceServiceWatchClient{ClientStream: stream}
	if err := x.ClientStream.SendMsg(req.raw); err != nil {
		return nil, fmt.Errorf("tracepb: watch send request: %w", err)
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, fmt.Errorf("tracepb: watch close send: %w", err)
	}
	return x, nil
}

// TraceService_WatchClient is the client side of the Watch stream.
type TraceService_WatchClient interface {
	Recv() (*WatchResponse, error)
	grpc.ClientStream
}

type traceServiceWatchClient struct {
	grpc.ClientStream
}

func (x *traceServiceWatchClient) Recv() (*WatchResponse, error) {
	resp := NewWatchResponse()
	if err := x.ClientStream.RecvMsg(resp.raw); err != nil {
		return nil, err
	}
	return resp, nil
}
