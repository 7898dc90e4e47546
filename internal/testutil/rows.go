package testutil

import (
	"errors"
	"io"
	"sync"
)

// SliceSource yields fixed rows and then io.EOF. Err, if set, is returned
// after the rows instead of io.EOF.
type SliceSource struct {
	Rows [][]string
	Err  error

	next int
}

// Next implements the row source contract.
func (s *SliceSource) Next() ([]string, error) {
	if s.next >= len(s.Rows) {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, io.EOF
	}
	row := s.Rows[s.next]
	s.next++
	return row, nil
}

// Read returns how many rows were consumed.
func (s *SliceSource) Read() int { return s.next }

// ErrSinkFull is returned by MemorySink once its limit is reached.
var ErrSinkFull = errors.New("sink full")

// MemorySink collects written rows. A positive Limit makes writes fail once
// that many rows are stored.
type MemorySink struct {
	Limit int

	mu   sync.Mutex
	rows [][]string
}

// Write implements the row sink contract.
func (s *MemorySink) Write(row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Limit > 0 && len(s.rows) >= s.Limit {
		return ErrSinkFull
	}
	s.rows = append(s.rows, append([]string(nil), row...))
	return nil
}

// Rows returns a copy of the collected rows.
func (s *MemorySink) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.rows...)
}
