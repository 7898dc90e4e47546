package linkcheck

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can branch without inspecting
// error messages.
type ErrorKind int

const (
	// KindTimeout is a probe that did not complete before its deadline.
	KindTimeout ErrorKind = iota + 1
	// KindTransport is any other failure to obtain a response: DNS,
	// connection refused, TLS, malformed response.
	KindTransport
	// KindParse is a response that arrived but could not be interpreted,
	// such as an unparseable Location header.
	KindParse
	// KindStructural is malformed input that aborts the run.
	KindStructural
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindStructural:
		return "structural"
	case 0:
		return "unknown"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ProbeError is a per-cell failure. It never aborts a row or a run.
type ProbeError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s error probing %s: %v", e.Kind, e.URL, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// StructuralError reports an input row that cannot be processed. Row is the
// 1-based data row index, not counting the header.
type StructuralError struct {
	Row  int
	Want int
	Got  int
	Err  error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d: malformed input: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d has %d cells, expected at least %d", e.Row, e.Got, e.Want)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// KindOf returns the kind of the first ProbeError or StructuralError in err's
// chain. The boolean is false if err carries neither.
func KindOf(err error) (ErrorKind, bool) {
	var probeErr *ProbeError
	if errors.As(err, &probeErr) {
		return probeErr.Kind, true
	}
	var structErr *StructuralError
	if errors.As(err, &structErr) {
		return KindStructural, true
	}
	return 0, false
}
