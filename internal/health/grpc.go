package health

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name for the engine.
const ServiceName = "faultline.Engine"

// GRPCServer serves the standard gRPC health protocol. The engine service
// reports NOT_SERVING while emergency mode is active.
type GRPCServer struct {
	port   int
	server *grpc.Server
	health *grpchealth.Server
}

// NewGRPCServer creates a gRPC health server.
func NewGRPCServer(port int) *GRPCServer {
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &GRPCServer{port: port, server: srv, health: hs}
}

// SetEmergency flips the engine service status.
func (g *GRPCServer) SetEmergency(active bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if active {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus(ServiceName, status)
}

// Health returns the underlying health service.
func (g *GRPCServer) Health() healthpb.HealthServer {
	return g.health
}

// Serve listens on the configured port and blocks.
func (g *GRPCServer) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", g.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return g.ServeListener(lis)
}

// ServeListener serves on an existing listener and blocks.
func (g *GRPCServer) ServeListener(lis net.Listener) error {
	return g.server.Serve(lis)
}

// Stop marks every service NOT_SERVING and stops the server gracefully.
func (g *GRPCServer) Stop() {
	g.health.Shutdown()
	g.server.GracefulStop()
}

// Probe dials target and runs one health check for service.
func Probe(ctx context.Context, target, service string) (*healthpb.HealthCheckResponse, error) {
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	return resp, nil
}
