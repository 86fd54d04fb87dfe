package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvetinski/fintech-account/config"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":8081", cfg.GRPCAddr)
	assert.Equal(t, ":9091", cfg.MetricsAddr)
	assert.Equal(t, config.AuthModeStatic, cfg.AuthMode)
	assert.Equal(t, "fakeUser", cfg.AuthStaticSubject)
	assert.Equal(t, []string{"USER_READ", "USER_WRITE"}, cfg.AuthStaticPermissions)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, 10*time.Second, cfg.HealthCheckInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.InDelta(t, 1.0, cfg.TracingSampleRatio, 0)
}

func TestOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("AUTH_MODE", "JWT")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_STATIC_PERMISSIONS", "USER_READ")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, config.AuthModeJWT, cfg.AuthMode)
	assert.Equal(t, []string{"USER_READ"}, cfg.AuthStaticPermissions)
	assert.Equal(t, 90*time.Second, cfg.DBConnMaxLifetime)
	assert.InDelta(t, 0.25, cfg.TracingSampleRatio, 1e-9)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "jwt without secret", env: map[string]string{"AUTH_MODE": "jwt"}},
		{name: "unknown auth mode", env: map[string]string{"AUTH_MODE": "basic"}},
		{name: "sample ratio above one", env: map[string]string{"OTEL_TRACES_SAMPLER_ARG": "1.5"}},
		{name: "zero shutdown timeout", env: map[string]string{"SHUTDOWN_TIMEOUT": "0s"}},
		{name: "unparsable duration", env: map[string]string{"HEALTH_CHECK_INTERVAL": "soon"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := config.New()
			require.Error(t, err)
		})
	}
}
