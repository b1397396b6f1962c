package signer

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"google.golang.org/grpc"
)

// unaryHandler adapts a (*Handler, context.Context, *Req) -> (*Resp, error)
// method into the unnamed function type grpc.MethodDesc.Handler expects.
// Hand-writing this per RPC is what protoc-gen-go-grpc normally generates
// from a .proto file; doing it directly here is how internal/signer stays
// on google.golang.org/grpc without needing a protoc invocation.
func unaryHandler[Req, Resp any](call func(*Handler, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		h := srv.(*Handler)
		if interceptor == nil {
			return call(h, ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ServiceName}
		wrapped := func(ctx context.Context, req any) (any, error) {
			return call(h, ctx, req.(*Req))
		}
		return interceptor(ctx, req, info, wrapped)
	}
}

// serviceDesc is the hand-written equivalent of a generated
// grpc.ServiceDesc: one MethodDesc per Service RPC, registered against the
// concrete *Handler type.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitTransaction", Handler: unaryHandler((*Handler).InitTransaction)},
		{MethodName: "PrecomputeSubaddr", Handler: unaryHandler((*Handler).PrecomputeSubaddr)},
		{MethodName: "SetInputCount", Handler: unaryHandler((*Handler).SetInputCount)},
		{MethodName: "SetInput", Handler: unaryHandler((*Handler).SetInput)},
		{MethodName: "InputsDone", Handler: unaryHandler((*Handler).InputsDone)},
		{MethodName: "InputsPermutation", Handler: unaryHandler((*Handler).InputsPermutation)},
		{MethodName: "InputVini", Handler: unaryHandler((*Handler).InputVini)},
		{MethodName: "InputViniDone", Handler: unaryHandler((*Handler).InputViniDone)},
		{MethodName: "SetOutput", Handler: unaryHandler((*Handler).SetOutput)},
		{MethodName: "AllOut1Set", Handler: unaryHandler((*Handler).AllOut1Set)},
		{MethodName: "MlsagPseudoOut", Handler: unaryHandler((*Handler).MlsagPseudoOut)},
		{MethodName: "MlsagRangeproof", Handler: unaryHandler((*Handler).MlsagRangeproof)},
		{MethodName: "SignInput", Handler: unaryHandler((*Handler).SignInput)},
		{MethodName: "EndSession", Handler: unaryHandler((*Handler).EndSession)},
		{MethodName: "GetSessionState", Handler: unaryHandler((*Handler).GetSessionState)},
		{MethodName: "GetAssembly", Handler: unaryHandler((*Handler).GetAssembly)},
	},
	Metadata: "xmrsigner/signer.proto",
}

// RegisterSignerServer registers handler against gs under serviceDesc.
func RegisterSignerServer(gs *grpc.Server, handler *Handler) {
	gs.RegisterService(&serviceDesc, handler)
}

// Server wraps the gRPC server and its Unix Domain Socket listener, the
// same shape the teacher used for its own UDS-bound signer.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	socketPath string
}

// New creates a Signer gRPC server bound to socketPath and registers
// handler. It prepares the listener but does not start serving.
func New(socketPath string, handler *Handler) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return nil, fmt.Errorf("signer: create socket directory: %w", err)
	}
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("signer: remove stale socket: %w", err)
	}

	lis, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("signer: listen on unix socket %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0o600); err != nil {
		lis.Close()
		return nil, fmt.Errorf("signer: chmod socket: %w", err)
	}

	gs := grpc.NewServer()
	RegisterSignerServer(gs, handler)

	return &Server{grpcServer: gs, listener: lis, socketPath: socketPath}, nil
}

// Serve blocks accepting gRPC connections until stopped or an error occurs.
func (s *Server) Serve() error {
	return s.grpcServer.Serve(s.listener)
}

// GracefulStop drains in-flight RPCs and removes the socket file.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
	os.Remove(s.socketPath)
}
