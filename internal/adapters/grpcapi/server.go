package grpcapi

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// AccountServiceName is the health service name reported for the account API.
const AccountServiceName = "account.v1.AccountService"

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer publishes grpc.health.v1 status derived from database
// reachability, both for the account service and for the server overall.
type HealthServer struct {
	health   *health.Server
	db       Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

func NewHealthServer(db Pinger, interval time.Duration, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}

	h := &HealthServer{
		health:   health.NewServer(),
		db:       db,
		interval: interval,
		timeout:  2 * time.Second,
		logger:   logger,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)

	return h
}

func (h *HealthServer) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Check pings the database once and publishes the result.
func (h *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("grpc health check failed: database unreachable", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.set(status)

	return status
}

// Run checks immediately and then on every interval until ctx is done.
func (h *HealthServer) Run(ctx context.Context) error {
	h.Check(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
}

func (h *HealthServer) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(AccountServiceName, status)
}
