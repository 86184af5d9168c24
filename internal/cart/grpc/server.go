package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Pinger reports whether the cart snapshot backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) bool
}

// HealthServer answers grpc.health.v1 checks from the snapshot store.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	pinger Pinger
}

func NewHealthServer(p Pinger) *HealthServer {
	return &HealthServer{pinger: p}
}

// Check accepts the empty service name and "storefront.cart".
func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", ServiceName:
	default:
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}

	if s.pinger.Ping(ctx) {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
}

const ServiceName = "storefront.cart"
