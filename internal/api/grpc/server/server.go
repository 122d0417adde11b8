package server

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/dtroode/farmgate-identity/internal/model"
)

var _ model.Server = (*GRPCServer)(nil)

// GRPCServer wraps a gRPC server with address and lifecycle methods.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	addr   string
}

// NewGRPCServer creates a GRPCServer. health may be nil.
func NewGRPCServer(server *grpc.Server, health *health.Server, addr string) *GRPCServer {
	return &GRPCServer{server: server, health: health, addr: addr}
}

// Start starts serving on the configured address using the provided security layer.
func (s *GRPCServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.server.Serve(listener)
}

// Stop reports NOT_SERVING, then drains in-flight calls. Calls still running
// when ctx expires are cancelled.
func (s *GRPCServer) Stop(ctx context.Context) error {
	if s.health != nil {
		s.health.Shutdown()
	}

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		<-stopped
		return ctx.Err()
	}
}

// Address returns the configured listen address.
func (s *GRPCServer) Address() string {
	return s.addr
}

// Name identifies the server in logs.
func (s *GRPCServer) Name() string {
	return "grpc"
}
