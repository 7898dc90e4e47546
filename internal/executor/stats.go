package executor

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/linkcheck/internal/linkcheck"
)

// Summary describes a finished (or aborted) run.
type Summary struct {
	Rows           int
	Cells          int
	Probed         int
	StatusErrors   int
	RedirectErrors int
	Elapsed        time.Duration
}

func (s *Summary) add(results []linkcheck.Result) {
	s.Rows++
	for _, r := range results {
		s.Cells++
		if !r.Probed() {
			continue
		}
		s.Probed++
		if r.Status.IsError() {
			s.StatusErrors++
		}
		if r.Redirect.IsError() {
			s.RedirectErrors++
		}
	}
}

// String renders the final line reported to the operator.
func (s *Summary) String() string {
	return fmt.Sprintf("Processed %d rows in %s", s.Rows, s.Elapsed)
}

// Stats are live counters for a running executor, safe to read from other
// goroutines such as the status endpoint.
type Stats struct {
	startedAt     atomic.Int64
	rowsWritten   atomic.Int64
	cellsProbed   atomic.Int64
	probeFailures atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	StartedAt     time.Time `json:"started_at"`
	RowsWritten   int64     `json:"rows_written"`
	CellsProbed   int64     `json:"cells_probed"`
	ProbeFailures int64     `json:"probe_failures"`
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		RowsWritten:   s.rowsWritten.Load(),
		CellsProbed:   s.cellsProbed.Load(),
		ProbeFailures: s.probeFailures.Load(),
	}
	if started := s.startedAt.Load(); started != 0 {
		snap.StartedAt = time.Unix(0, started).UTC()
	}
	return snap
}

func (s *Stats) start(t time.Time) { s.startedAt.Store(t.UnixNano()) }

func (s *Stats) cellProbed() { s.cellsProbed.Add(1) }

func (s *Stats) rowWritten(results []linkcheck.Result) {
	s.rowsWritten.Add(1)
	for _, r := range results {
		if r.Probed() && (r.Status.IsError() || r.Redirect.IsError()) {
			s.probeFailures.Add(1)
		}
	}
}
