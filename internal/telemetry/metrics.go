package telemetry

import (
	"database/sql"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "account"

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing, so adapters can be built without a registry in tests.
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	grpcRequestsTotal   *prometheus.CounterVec
	grpcRequestDuration *prometheus.HistogramVec

	dbQueriesTotal  *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		grpcRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "grpc_requests_total",
				Help:      "Total gRPC requests by method and code.",
			},
			[]string{"method", "code"},
		),
		grpcRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "grpc_request_duration_seconds",
				Help:      "gRPC request latency in seconds by method and code.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
		dbQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_queries_total",
				Help:      "Total DB method calls by method and status.",
			},
			[]string{"method", "status"},
		),
		dbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "DB method duration in seconds by method and status.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}

	registerer.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestsInFlight,
		m.grpcRequestsTotal,
		m.grpcRequestDuration,
		m.dbQueriesTotal,
		m.dbQueryDuration,
	)

	return m
}

func (m *Metrics) ObserveHTTP(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}

	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) IncHTTPInFlight() {
	if m == nil {
		return
	}

	m.httpRequestsInFlight.Inc()
}

func (m *Metrics) DecHTTPInFlight() {
	if m == nil {
		return
	}

	m.httpRequestsInFlight.Dec()
}

func (m *Metrics) ObserveGRPC(method, code string, duration time.Duration) {
	if m == nil {
		return
	}

	m.grpcRequestsTotal.WithLabelValues(method, code).Inc()
	m.grpcRequestDuration.WithLabelValues(method, code).Observe(duration.Seconds())
}

func (m *Metrics) ObserveDB(method, status string, duration time.Duration) {
	if m == nil {
		return
	}

	m.dbQueriesTotal.WithLabelValues(method, status).Inc()
	m.dbQueryDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// RegisterDBPoolMetrics exposes database/sql pool statistics. Collectors
// that are already registered are skipped.
func RegisterDBPoolMetrics(db *sql.DB, registerer prometheus.Registerer) error {
	if db == nil {
		return errors.New("db is nil")
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	gauge := func(name, help string, fn func(sql.DBStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help},
			func() float64 { return fn(db.Stats()) },
		)
	}
	counter := func(name, help string, fn func(sql.DBStats) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(
			prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help},
			func() float64 { return fn(db.Stats()) },
		)
	}

	collectors := []prometheus.Collector{
		gauge("db_pool_open_connections", "Open database connections.",
			func(s sql.DBStats) float64 { return float64(s.OpenConnections) }),
		gauge("db_pool_in_use_connections", "In-use database connections.",
			func(s sql.DBStats) float64 { return float64(s.InUse) }),
		gauge("db_pool_idle_connections", "Idle database connections.",
			func(s sql.DBStats) float64 { return float64(s.Idle) }),
		gauge("db_pool_max_open_connections", "Configured maximum of open connections.",
			func(s sql.DBStats) float64 { return float64(s.MaxOpenConnections) }),
		counter("db_pool_wait_count_total", "Total number of waits for a free connection.",
			func(s sql.DBStats) float64 { return float64(s.WaitCount) }),
		counter("db_pool_wait_duration_seconds_total", "Total time blocked waiting for a free connection in seconds.",
			func(s sql.DBStats) float64 { return s.WaitDuration.Seconds() }),
		counter("db_pool_max_idle_closed_total", "Total connections closed due to MaxIdleConns.",
			func(s sql.DBStats) float64 { return float64(s.MaxIdleClosed) }),
		counter("db_pool_max_lifetime_closed_total", "Total connections closed due to ConnMaxLifetime.",
			func(s sql.DBStats) float64 { return float64(s.MaxLifetimeClosed) }),
	}

	for _, c := range collectors {
		if err := registerer.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}

	return nil
}
