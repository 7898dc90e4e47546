package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/linkcheck/internal/ctxlog"
	"github.com/specialistvlad/linkcheck/internal/executor"
	"github.com/specialistvlad/linkcheck/internal/linkcheck"
	"github.com/specialistvlad/linkcheck/internal/progress"
	"github.com/specialistvlad/linkcheck/internal/prober"
	"github.com/specialistvlad/linkcheck/internal/table"
)

// Run executes a link check from the configured input to the configured
// output. Rows completed before a failure or interruption are kept in the
// output file.
func (app *App) Run() (err error) {
	ctx := app.ctx
	logger := ctxlog.FromContext(ctx)
	cfg := app.config
	logger.Debug("App.Run method started.")

	app.healthCheckServer()
	defer app.closeHealthCheckServer()

	src, err := table.Open(cfg.InputPath, cfg.InputFormat, cfg.InputSheet)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer src.Close()

	sink, err := table.Create(cfg.OutputPath, cfg.OutputFormat, cfg.OutputSheet)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to finalize output: %w", closeErr)
		}
	}()

	if err := sink.Write(linkcheck.Header(cfg.Columns)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	client := prober.NewClient(prober.ClientOptions{
		MaxConnsPerHost: cfg.WorkerCount,
		TLSConfig:       app.tlsConfig,
	})
	defer prober.CloseClient(client)
	p := prober.New(client, prober.Options{
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
	})

	publisher := app.connectPublisher(ctx)
	defer publisher.Close()

	exec := executor.New(linkcheck.NewProcessor(p, cfg.Columns, cfg.SingleRequest), executor.Options{
		Workers: cfg.WorkerCount,
		Stats:   app.stats,
		OnRow: func(ctx context.Context, index int, results []linkcheck.Result) {
			publisher.Row(ctx, app.runID, index, results)
		},
	})

	logger.Info("🚀 Starting link check...",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"columns", cfg.Columns,
		"workers", cfg.WorkerCount,
		"timeout", cfg.Timeout.String(),
	)
	publisher.RunStarted(ctx, progress.Started{
		RunID:   app.runID,
		Input:   cfg.InputPath,
		Output:  cfg.OutputPath,
		Columns: cfg.Columns,
		Workers: cfg.WorkerCount,
	})

	summary, runErr := exec.Run(ctx, src, sink)
	app.summary = summary

	publisher.RunFinished(ctx, progress.Finished{
		RunID:   app.runID,
		Rows:    summary.Rows,
		Elapsed: summary.Elapsed,
		Err:     runErr,
	})
	logger.Info("🏁 "+summary.String(),
		"rows", summary.Rows,
		"probed", summary.Probed,
		"status_errors", summary.StatusErrors,
		"redirect_errors", summary.RedirectErrors,
		"elapsed", summary.Elapsed.String(),
	)

	if runErr != nil {
		return fmt.Errorf("link check failed: %w", runErr)
	}
	logger.Debug("App.Run method finished.")
	return nil
}

// connectPublisher returns the injected publisher, a socket.io publisher if a
// progress URL is configured, or a no-op publisher. A progress server that
// cannot be reached does not fail the run.
func (app *App) connectPublisher(ctx context.Context) progress.Publisher {
	if app.publisher != nil {
		return app.publisher
	}
	if app.config.ProgressURL == "" {
		return progress.Nop{}
	}
	p, err := progress.Dial(ctx, progress.SocketIOOptions{
		URL:                app.config.ProgressURL,
		Namespace:          app.config.ProgressNamespace,
		InsecureSkipVerify: app.config.ProgressInsecureSkipVerify,
	})
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Progress publisher unavailable, continuing without it.", "error", err)
		return progress.Nop{}
	}
	return p
}
