package linkcheck

import (
	"errors"
	"strconv"
)

// ErrorMarker is written into the status or redirect cell of a failed check.
const ErrorMarker = "ERROR"

// ErrIneligible is recorded for cells that are not probed because they do not
// start with the https:// scheme. It is a policy outcome, not a failure.
var ErrIneligible = errors.New("link is not an https:// URL")

// StatusOutcome is either a numeric HTTP status code or an error.
type StatusOutcome struct {
	Code int
	Err  error
}

// IsError reports whether the outcome renders as ErrorMarker.
func (s StatusOutcome) IsError() bool { return s.Err != nil }

// String renders the outcome as an output cell.
func (s StatusOutcome) String() string {
	if s.Err != nil {
		return ErrorMarker
	}
	return strconv.Itoa(s.Code)
}

// RedirectOutcome is an absolute redirect target, an empty string when the
// response advertised no redirect, or an error.
type RedirectOutcome struct {
	Target string
	Err    error
}

// IsError reports whether the outcome renders as ErrorMarker.
func (r RedirectOutcome) IsError() bool { return r.Err != nil }

// String renders the outcome as an output cell.
func (r RedirectOutcome) String() string {
	if r.Err != nil {
		return ErrorMarker
	}
	return r.Target
}

// Result is the outcome of checking a single cell.
type Result struct {
	URL      string
	Status   StatusOutcome
	Redirect RedirectOutcome
}

// Ineligible returns the result for a cell that is not probed. The original
// text is kept verbatim.
func Ineligible(text string) Result {
	return Result{
		URL:      text,
		Status:   StatusOutcome{Err: ErrIneligible},
		Redirect: RedirectOutcome{Err: ErrIneligible},
	}
}

// Probed reports whether the cell was sent to a prober.
func (r Result) Probed() bool {
	return !errors.Is(r.Status.Err, ErrIneligible)
}

// Cells renders the url, status, redirect triplet.
func (r Result) Cells() []string {
	return []string{r.URL, r.Status.String(), r.Redirect.String()}
}

// Flatten renders results into a single output row of 3×len(results) cells.
func Flatten(results []Result) []string {
	row := make([]string, 0, len(results)*3)
	for _, r := range results {
		row = append(row, r.Cells()...)
	}
	return row
}
