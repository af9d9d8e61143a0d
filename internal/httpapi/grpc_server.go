package httpapi

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"supplychainx.org/internal/obs"
)

// GRPCServiceName is the service name reported by the gRPC health server in
// addition to the overall ("") status.
const GRPCServiceName = "supplychainx.api"

type readinessChecker interface {
	Check(ctx context.Context) error
}

// GRPCHealth serves grpc.health.v1 and mirrors store readiness into it.
type GRPCHealth struct {
	server    *health.Server
	readiness readinessChecker
}

// NewGRPCHealth creates the health service. Everything starts NOT_SERVING
// until the first Update.
func NewGRPCHealth(r readinessChecker) *GRPCHealth {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(GRPCServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &GRPCHealth{server: hs, readiness: r}
}

// Register attaches the health service to s.
func (g *GRPCHealth) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, g.server)
}

// Update probes readiness once and publishes the result.
func (g *GRPCHealth) Update(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := g.readiness.Check(ctx); err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
		obs.Logger().Warn("readiness check failed", zap.Error(err))
	}
	obs.SetReady(st == healthpb.HealthCheckResponse_SERVING)
	g.server.SetServingStatus("", st)
	g.server.SetServingStatus(GRPCServiceName, st)
	return st
}

// Run refreshes the status every interval until ctx is done, then marks the
// server as shutting down.
func (g *GRPCHealth) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	g.Update(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			g.server.Shutdown()
			return
		case <-t.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval)
			g.Update(probeCtx)
			cancel()
		}
	}
}
