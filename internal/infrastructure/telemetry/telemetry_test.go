package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSetup_Disabled(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	p, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, zap.New(core))
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LogCore("locaflow", zapcore.InfoLevel))
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, 1, recorded.FilterMessage("Telemetry disabled").Len())
}

func TestProviders_NilShutdown(t *testing.T) {
	var p *Providers
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.False(t, p.Enabled())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), Sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), Sampler(0).Description())
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelCore(t *testing.T) {
	inner, recorded := observer.New(zapcore.DebugLevel)
	core := &levelCore{Core: inner, min: zapcore.WarnLevel}
	l := zap.New(core).With(zap.String("tenant_id", "t1"))

	l.Info("dropped")
	l.Warn("kept")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "kept", recorded.All()[0].Message)
	assert.Equal(t, "t1", recorded.All()[0].ContextMap()["tenant_id"])
}

func TestInstrumentGorm_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, InstrumentGorm(db, config.TelemetryConfig{Enabled: true, DBTraceEnabled: false}))
	_, registered := db.Config.Plugins["otelgorm"]
	assert.False(t, registered)

	require.NoError(t, InstrumentGorm(db, config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}))
	_, registered = db.Config.Plugins["otelgorm"]
	assert.True(t, registered)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	done := m.RequestStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpInFlight))
	done(http.MethodGet, "/api/v1/equipment", http.StatusOK)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/equipment", "200")))

	m.RequestStarted()(http.MethodGet, "", http.StatusNotFound)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))

	m.ObserveJob("overdue", 20*time.Millisecond, nil)
	m.ObserveJob("overdue", time.Second, errors.New("db down"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobRuns.WithLabelValues("overdue", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.jobRuns.WithLabelValues("overdue", "false")))

	m.EventPublished("booking.confirmed")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.domainEvents.WithLabelValues("booking.confirmed")))

	t.Run("handler exposes the registry", func(t *testing.T) {
		srv := httptest.NewServer(m.Handler())
		defer srv.Close()

		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		assert.Contains(t, string(body), "locaflow_http_requests_total")
		assert.Contains(t, string(body), "locaflow_scheduler_job_runs_total")
		assert.Contains(t, string(body), "go_goroutines")
	})
}
