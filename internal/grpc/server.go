// Package grpc runs the operations endpoint: standard gRPC health checking
// backed by dependency probes, plus reflection for grpcurl.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const probeInterval = 15 * time.Second

// Check probes one dependency. A nil error means it is serving.
type Check func(ctx context.Context) error

type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	checks   map[string]Check
	log      *slog.Logger
	interval time.Duration

	stopOnce sync.Once
}

func NewServer(checks map[string]Check, log *slog.Logger) *Server {
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()

	healthpb.RegisterHealthServer(grpcServer, healthServer)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(grpcServer)

	return &Server{
		grpc:     grpcServer,
		health:   healthServer,
		checks:   checks,
		log:      log,
		interval: probeInterval,
	}
}

// Serve blocks until the listener fails or Stop is called. Dependency probes
// run until ctx is done.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.probe(ctx)
	go s.probeLoop(ctx)

	if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop reports NOT_SERVING for every service and drains open calls. Watch
// streams never end on their own, so once ctx is done the remaining
// connections are closed.
func (s *Server) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.health.Shutdown()

		done := make(chan struct{})
		go func() {
			s.grpc.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			s.log.Warn("grpc graceful stop timed out, closing connections")
			s.grpc.Stop()
			<-done
		}
	})
}

func (s *Server) probeLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

// probe runs every check and sets per-dependency status. The overall ("")
// status is SERVING only when all checks pass.
func (s *Server) probe(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING

	for name, check := range s.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := check(checkCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
			s.log.Warn("dependency check failed", "dependency", name, "error", err)
		}
		s.health.SetServingStatus(name, status)
	}

	s.health.SetServingStatus("", overall)
}
