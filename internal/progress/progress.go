// Package progress publishes live events about a run to interested
// listeners. Publishing is best effort: a publisher never fails or slows
// down the run it reports on.
package progress

import (
	"context"
	"time"

	"github.com/specialistvlad/linkcheck/internal/linkcheck"
)

// Event names emitted by publishers.
const (
	EventRunStarted  = "run_started"
	EventRow         = "row"
	EventRunFinished = "run_finished"
)

// Started describes a run that is about to begin.
type Started struct {
	RunID   string
	Input   string
	Output  string
	Columns int
	Workers int
}

// Finished describes a completed or aborted run.
type Finished struct {
	RunID   string
	Rows    int
	Elapsed time.Duration
	Err     error
}

// Publisher receives run events. Implementations must tolerate being called
// after Close.
type Publisher interface {
	RunStarted(ctx context.Context, ev Started)
	Row(ctx context.Context, runID string, index int, results []linkcheck.Result)
	RunFinished(ctx context.Context, ev Finished)
	Close() error
}

// Nop discards all events.
type Nop struct{}

func (Nop) RunStarted(context.Context, Started) {}

func (Nop) Row(context.Context, string, int, []linkcheck.Result) {}

func (Nop) RunFinished(context.Context, Finished) {}

func (Nop) Close() error { return nil }

func startedPayload(ev Started) map[string]any {
	return map[string]any{
		"run_id":  ev.RunID,
		"input":   ev.Input,
		"output":  ev.Output,
		"columns": ev.Columns,
		"workers": ev.Workers,
	}
}

func rowPayload(runID string, index int, results []linkcheck.Result) map[string]any {
	links := make([]map[string]any, len(results))
	for i, r := range results {
		links[i] = map[string]any{
			"url":      r.URL,
			"status":   r.Status.String(),
			"redirect": r.Redirect.String(),
		}
	}
	return map[string]any{
		"run_id": runID,
		"row":    index,
		"links":  links,
	}
}

func finishedPayload(ev Finished) map[string]any {
	payload := map[string]any{
		"run_id":     ev.RunID,
		"rows":       ev.Rows,
		"elapsed_ms": ev.Elapsed.Milliseconds(),
	}
	if ev.Err != nil {
		payload["error"] = ev.Err.Error()
	}
	return payload
}
