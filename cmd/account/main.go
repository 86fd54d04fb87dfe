package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/kvetinski/fintech-account/config"
	"github.com/kvetinski/fintech-account/internal/adapters/grpcapi"
	"github.com/kvetinski/fintech-account/internal/adapters/httpapi"
	"github.com/kvetinski/fintech-account/internal/adapters/repository"
	"github.com/kvetinski/fintech-account/internal/adapters/repository/migrations"
	"github.com/kvetinski/fintech-account/internal/auth"
	"github.com/kvetinski/fintech-account/internal/logging"
	accountsvc "github.com/kvetinski/fintech-account/internal/service/account"
	"github.com/kvetinski/fintech-account/internal/telemetry"
)

const serviceName = "account-service"

func main() {
	if err := run(); err != nil {
		slog.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stdout, serviceName, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("starting account service",
		"http_addr", cfg.HTTPAddr,
		"grpc_addr", cfg.GRPCAddr,
		"metrics_addr", cfg.MetricsAddr,
		"auth_mode", cfg.AuthMode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		Enabled:        cfg.TracingEnabled,
		ServiceName:    cfg.TracingServiceName,
		ServiceVersion: cfg.TracingServiceVersion,
		Environment:    cfg.TracingEnvironment,
		OTLPEndpoint:   cfg.TracingOTLPEndpoint,
		Insecure:       cfg.TracingOTLPInsecure,
		SampleRatio:    cfg.TracingSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("shutdown tracing failed", "error", err)
		}
	}()

	db, err := connectDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err = migrations.Up(db); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	if err = telemetry.RegisterDBPoolMetrics(db, prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register db pool metrics: %w", err)
	}

	repo := repository.NewWithMetrics(db, metrics)
	svc := accountsvc.New(repo, accountsvc.WithLogger(logger))

	authn, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.RouterConfig{
			Accounts:      svc,
			DB:            repo,
			Authenticator: authn,
			Metrics:       metrics,
			Logger:        logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	healthSrv := grpcapi.NewHealthServer(repo, cfg.HealthCheckInterval, logger)
	grpcSrv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(grpcapi.UnaryMetricsInterceptor(metrics, logger)),
		grpc.ChainStreamInterceptor(grpcapi.StreamMetricsInterceptor(metrics, logger)),
	)
	healthSrv.Register(grpcSrv)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics server listening", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("grpc server listening", "addr", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return healthSrv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		return shutdown(shutdownCtx, logger, healthSrv, grpcSrv, httpSrv, metricsSrv)
	})

	if err = g.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

func connectDB(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	const attempts = 30
	for i := range attempts {
		if err = db.PingContext(ctx); err == nil {
			logger.Info("database connected")
			return db, nil
		}
		logger.Info("waiting for database", "attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("ping db: %w", ctx.Err())
		case <-time.After(time.Second):
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping db: gave up after %d attempts: %w", attempts, err)
}

func newAuthenticator(cfg config.Config) (auth.Authenticator, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		return auth.NewJWT(cfg.AuthJWTSecret), nil
	case config.AuthModeStatic:
		return auth.NewStatic(cfg.AuthStaticSubject, auth.ParsePermissions(cfg.AuthStaticPermissions)), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}

func shutdown(
	ctx context.Context,
	logger *slog.Logger,
	health *grpcapi.HealthServer,
	grpcSrv *grpc.Server,
	servers ...*http.Server,
) error {
	health.Shutdown()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
		}
	}

	grpcDone := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(grpcDone)
	}()

	select {
	case <-grpcDone:
		logger.Info("grpc server stopped gracefully")
	case <-ctx.Done():
		logger.Warn("grpc graceful shutdown timed out, forcing stop")
		grpcSrv.Stop()
	}

	return errors.Join(errs...)
}
