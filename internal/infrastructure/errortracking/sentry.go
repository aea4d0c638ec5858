// Package errortracking reports unexpected errors and panics to Sentry.
// Without a DSN every method is a no-op, so callers never need to check.
package errortracking

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/locaflow/backend/internal/infrastructure/config"
	"github.com/locaflow/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Option adjusts the Sentry client options before the client is built
type Option func(*sentry.ClientOptions)

// WithRelease tags events with the running build
func WithRelease(release string) Option {
	return func(o *sentry.ClientOptions) { o.Release = release }
}

// WithBeforeSend installs an event hook, mostly useful in tests
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) { o.BeforeSend = fn }
}

// Tracker wraps a dedicated Sentry hub
type Tracker struct {
	hub    *sentry.Hub
	logger *zap.Logger
}

// New builds a tracker. An empty DSN returns a disabled tracker
func New(cfg config.SentryConfig, log *zap.Logger, opts ...Option) (*Tracker, error) {
	t := &Tracker{logger: log.Named("errortracking")}
	if cfg.DSN == "" {
		t.logger.Info("Error tracking disabled")
		return t, nil
	}

	options := sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, fmt.Errorf("init sentry client: %w", err)
	}
	t.hub = sentry.NewHub(client, sentry.NewScope())
	t.logger.Info("Error tracking enabled", zap.String("environment", cfg.Environment))
	return t, nil
}

// Enabled reports whether events are forwarded
func (t *Tracker) Enabled() bool {
	return t != nil && t.hub != nil
}

// CaptureError reports err with the request, tenant and user ids found in ctx
func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if !t.Enabled() || err == nil {
		return
	}
	hub := t.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		applyContext(ctx, scope, tags)
		hub.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value
func (t *Tracker) CapturePanic(ctx context.Context, recovered any, tags map[string]string) {
	if !t.Enabled() || recovered == nil {
		return
	}
	hub := t.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		applyContext(ctx, scope, tags)
		scope.SetLevel(sentry.LevelFatal)
		hub.RecoverWithContext(ctx, recovered)
	})
}

// Flush waits for queued events to be delivered
func (t *Tracker) Flush(timeout time.Duration) bool {
	if !t.Enabled() {
		return true
	}
	ok := t.hub.Flush(timeout)
	if !ok {
		t.logger.Warn("Timed out flushing error events", zap.Duration("timeout", timeout))
	}
	return ok
}

func applyContext(ctx context.Context, scope *sentry.Scope, tags map[string]string) {
	if id := logger.GetRequestID(ctx); id != "" {
		scope.SetTag("request_id", id)
	}
	if id := logger.GetTenantID(ctx); id != "" {
		scope.SetTag("tenant_id", id)
	}
	if id := logger.GetUserID(ctx); id != "" {
		scope.SetUser(sentry.User{ID: id})
	}
	for k, v := range tags {
		scope.SetTag(k, v)
	}
}
