// Package http2 serves the LAN-reachable gRPC transport: standard
// gRPC-over-TLS-HTTP/2, dispatching into the same grpc/server.Dispatcher the
// WebRTC/SCTP transport uses (spec.md §4.F "Same dispatch table as 4.E").
//
// Concurrency is intentionally bounded to cap peak memory on constrained
// devices (spec.md §4.F): max_concurrent_streams=2, initial stream and
// connection window 2048 bytes, send buffer 4096 bytes.
package http2

import (
	"crypto/tls"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"

	"go.viam.com/micro-rdk-agent/grpc/codec"
	"go.viam.com/micro-rdk-agent/grpc/server"
	"go.viam.com/micro-rdk-agent/logging"
)

const (
	maxConcurrentStreams = 2
	initialWindowSize    = 2048
	initialConnWindow    = 2048
	writeBufferSize      = 4096
)

// Server is the TLS HTTP/2 gRPC endpoint of spec.md §4.F.
type Server struct {
	grpcServer *grpc.Server
	logger     logging.Logger
}

// New builds a Server bound to cert (fetched from the cloud at boot by
// app.Client.Certificate, spec.md §4.G) and dispatching through d.
func New(d *server.Dispatcher, cert tls.Certificate, logger logging.Logger) *Server {
	creds := credentials.NewTLS(&tls.Config{Certificates: []tls.Certificate{cert}})
	h := &streamHandler{dispatcher: d, logger: logger}

	gs := grpc.NewServer(
		grpc.Creds(creds),
		grpc.ForceServerCodec(codec.RawCodec{}),
		grpc.UnknownServiceHandler(h.handle),
		grpc.MaxConcurrentStreams(maxConcurrentStreams),
		grpc.InitialWindowSize(initialWindowSize),
		grpc.InitialConnWindowSize(initialConnWindow),
		grpc.WriteBufferSize(writeBufferSize),
	)
	return &Server{grpcServer: gs, logger: logger}
}

// Serve accepts connections on lis until it errors or Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop gracefully drains in-flight RPCs and stops accepting new connections.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}

// streamHandler adapts every unknown (i.e. every, since none are statically
// registered) gRPC method to a Dispatcher.Dispatch call.
type streamHandler struct {
	dispatcher *server.Dispatcher
	logger     logging.Logger
}

func (h *streamHandler) handle(srv interface{}, stream grpc.ServerStream) error {
	fullMethod, ok := grpc.MethodFromServerStream(stream)
	if !ok {
		return status.Error(codes.Internal, "could not determine method from stream")
	}

	var payload []byte
	if err := stream.RecvMsg(&payload); err != nil {
		return err
	}

	respPayload, st := h.dispatcher.Dispatch(stream.Context(), fullMethod, payload)
	if st.Code != 0 {
		return status.Error(codes.Code(st.Code), st.Message)
	}
	return stream.SendMsg(&respPayload)
}
