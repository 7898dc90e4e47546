package linkcheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/linkcheck/internal/ctxlog"
)

// Scheme is the literal prefix a cell must carry to be probed.
const Scheme = "https://"

// Prober performs the two network checks for a single URL. Implementations
// must be safe for concurrent use.
type Prober interface {
	CheckStatus(ctx context.Context, rawURL string) (int, error)
	CheckRedirect(ctx context.Context, rawURL string) (string, error)
}

// Inspector is implemented by probers that can read both facets from a single
// response. The two outcomes carry independently captured errors.
type Inspector interface {
	Inspect(ctx context.Context, rawURL string) (StatusOutcome, RedirectOutcome)
}

// Eligible reports whether a cell should be probed.
func Eligible(cell string) bool {
	return strings.HasPrefix(cell, Scheme)
}

// Header returns the output header row for n link columns.
func Header(n int) []string {
	header := make([]string, 0, n*3)
	for i := 1; i <= n; i++ {
		header = append(header,
			fmt.Sprintf("Link %d", i),
			fmt.Sprintf("Link %d Status Code", i),
			fmt.Sprintf("Link %d Redirect", i),
		)
	}
	return header
}

// CheckColumns returns a StructuralError if row holds fewer than n cells.
func CheckColumns(index int, row []string, n int) error {
	if len(row) < n {
		return &StructuralError{Row: index, Want: n, Got: len(row)}
	}
	return nil
}

// Processor turns input rows into output rows.
type Processor struct {
	prober        Prober
	columns       int
	singleRequest bool
}

// NewProcessor creates a Processor for rows with the given number of link
// columns. With singleRequest set and a prober implementing Inspector, each
// cell costs one HEAD request instead of two.
func NewProcessor(p Prober, columns int, singleRequest bool) *Processor {
	return &Processor{prober: p, columns: columns, singleRequest: singleRequest}
}

// Columns returns the configured number of link columns.
func (p *Processor) Columns() int { return p.columns }

// Prepare validates row and resolves its ineligible cells. The returned
// results hold the final triplet of every ineligible cell and the URL of
// every eligible one; eligible lists the columns still to be checked.
func (p *Processor) Prepare(index int, row []string) (results []Result, eligible []int, err error) {
	if err := CheckColumns(index, row, p.columns); err != nil {
		return nil, nil, err
	}
	results = make([]Result, p.columns)
	for col := range results {
		if !Eligible(row[col]) {
			results[col] = Ineligible(row[col])
			continue
		}
		results[col].URL = row[col]
		eligible = append(eligible, col)
	}
	return results, eligible, nil
}

// ProcessRow checks every configured column of row one after another and
// returns the flattened output row. Only a structural error is returned;
// probe failures are encoded in the row. The executor runs the same steps
// with the eligible cells spread over its workers.
func (p *Processor) ProcessRow(ctx context.Context, index int, row []string) ([]string, error) {
	results, eligible, err := p.Prepare(index, row)
	if err != nil {
		return nil, err
	}
	for _, col := range eligible {
		cellCtx := ctxlog.With(ctx, "row", index, "column", col+1)
		results[col] = p.CheckCell(cellCtx, results[col].URL)
	}
	return Flatten(results), nil
}

// CheckCell resolves a single cell. Ineligible cells are returned without
// touching the network.
func (p *Processor) CheckCell(ctx context.Context, text string) Result {
	if !Eligible(text) {
		return Ineligible(text)
	}
	logger := ctxlog.FromContext(ctx)

	if p.singleRequest {
		if in, ok := p.prober.(Inspector); ok {
			status, redirect := in.Inspect(ctx, text)
			logFailure(ctx, "Status check failed.", text, status.Err)
			logFailure(ctx, "Redirect check failed.", text, redirect.Err)
			return Result{URL: text, Status: status, Redirect: redirect}
		}
		logger.Debug("Prober cannot inspect a single response, using two requests.")
	}

	res := Result{URL: text}

	code, err := p.prober.CheckStatus(ctx, text)
	if err != nil {
		logFailure(ctx, "Status check failed.", text, err)
		res.Status = StatusOutcome{Err: err}
	} else {
		res.Status = StatusOutcome{Code: code}
	}

	target, err := p.prober.CheckRedirect(ctx, text)
	if err != nil {
		logFailure(ctx, "Redirect check failed.", text, err)
		res.Redirect = RedirectOutcome{Err: err}
	} else {
		res.Redirect = RedirectOutcome{Target: target}
	}

	logger.Debug("Link checked.", "url", text, "status", res.Status.String(), "redirect", res.Redirect.String())
	return res
}

func logFailure(ctx context.Context, msg, url string, err error) {
	if err == nil {
		return
	}
	kind, _ := KindOf(err)
	ctxlog.FromContext(ctx).Warn(msg, "url", url, "kind", kind.String(), "error", err)
}
