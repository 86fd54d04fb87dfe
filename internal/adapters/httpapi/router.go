package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kvetinski/fintech-account/internal/auth"
	"github.com/kvetinski/fintech-account/internal/telemetry"
)

type RouterConfig struct {
	Accounts      AccountService
	DB            Pinger
	Authenticator auth.Authenticator
	Metrics       *telemetry.Metrics
	Logger        *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	accounts := NewAccountHandler(cfg.Accounts)
	health := NewHealthHandler(cfg.DB)

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(logger))
	r.Use(Metrics(cfg.Metrics))
	r.Use(Recovery)

	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/accounts", func(r chi.Router) {
		r.Use(Authenticate(cfg.Authenticator))

		r.With(RequireCapability(auth.Principal.CanWrite)).Post("/", accounts.Create)
		r.With(RequireCapability(auth.Principal.CanRead)).Get("/{id}", accounts.Get)
		r.With(RequireCapability(auth.Principal.CanWrite)).Patch("/{id}", accounts.Update)
		r.With(RequireCapability(auth.Principal.CanWrite)).Delete("/{id}", accounts.Delete)
	})

	return otelhttp.NewHandler(r, "account-http")
}
