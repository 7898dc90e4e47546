package app

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/specialistvlad/linkcheck/internal/ctxlog"
	"github.com/specialistvlad/linkcheck/internal/executor"
	"github.com/specialistvlad/linkcheck/internal/progress"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	logger     *slog.Logger
	config     *Config
	runID      string
	stats      *executor.Stats
	tlsConfig  *tls.Config
	publisher  progress.Publisher
	httpServer *http.Server
	summary    *executor.Summary
}

// Option customizes an App. Options exist mainly for tests.
type Option func(*App)

// WithTLSConfig makes probes use the given TLS configuration, e.g. to trust
// a private CA.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(app *App) { app.tlsConfig = cfg }
}

// WithPublisher replaces the progress publisher that would otherwise be
// derived from the configuration.
func WithPublisher(p progress.Publisher) Option {
	return func(app *App) { app.publisher = p }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own logger writing to outW. Every run gets a
// fresh run id attached to all of its log lines.
func NewApp(ctx context.Context, outW io.Writer, config *Config, opts ...Option) *App {
	runID := uuid.NewString()
	logger := newLogger(config.LogLevel, config.LogFormat, outW).With("run_id", runID)
	logger.Debug("Logger configured successfully.")

	app := &App{
		ctx:    ctxlog.WithLogger(ctx, logger),
		logger: logger,
		config: config,
		runID:  runID,
		stats:  &executor.Stats{},
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// RunID returns the identifier attached to this run's logs and events.
func (app *App) RunID() string { return app.runID }

// Summary returns the summary of the last Run, or nil if Run has not
// finished.
func (app *App) Summary() *executor.Summary { return app.summary }

// Stats returns the live counters of the run.
func (app *App) Stats() *executor.Stats { return app.stats }
