package executor

import (
	"sync/atomic"

	"github.com/specialistvlad/linkcheck/internal/linkcheck"
)

// slot holds the results of one row while its cells are being probed. done is
// closed once every dispatched cell has completed.
type slot struct {
	index     int
	results   []linkcheck.Result
	remaining atomic.Int64
	done      chan struct{}
}

func newSlot(index int, results []linkcheck.Result) *slot {
	return &slot{
		index:   index,
		results: results,
		done:    make(chan struct{}),
	}
}

// expect sets the number of cells to wait for. It must be called before the
// slot is shared with workers.
func (s *slot) expect(n int) {
	if n == 0 {
		close(s.done)
		return
	}
	s.remaining.Store(int64(n))
}

// complete marks one cell as resolved.
func (s *slot) complete() {
	if s.remaining.Add(-1) == 0 {
		close(s.done)
	}
}
