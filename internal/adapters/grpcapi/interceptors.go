package grpcapi

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/kvetinski/fintech-account/internal/telemetry"
)

const healthMethodPrefix = "/grpc.health.v1.Health/"

func UnaryMetricsInterceptor(metrics *telemetry.Metrics, logger *slog.Logger) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		start := time.Now()

		resp, err = handler(ctx, req)
		observe(metrics, logger, info.FullMethod, err, start)

		return resp, err
	}
}

// StreamMetricsInterceptor records a stream once it ends, so Watch calls
// are observed with their total lifetime.
func StreamMetricsInterceptor(metrics *telemetry.Metrics, logger *slog.Logger) grpc.StreamServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()

		err := handler(srv, ss)
		observe(metrics, logger, info.FullMethod, err, start)

		return err
	}
}

func observe(metrics *telemetry.Metrics, logger *slog.Logger, fullMethod string, err error, start time.Time) {
	method := path.Base(fullMethod)
	code := status.Code(err).String()
	metrics.ObserveGRPC(method, code, time.Since(start))

	level := slog.LevelInfo
	if strings.HasPrefix(fullMethod, healthMethodPrefix) {
		level = slog.LevelDebug
	}
	logger.Log(context.Background(), level, "grpc request",
		"method", method,
		"code", code,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
