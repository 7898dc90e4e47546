package prober

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/specialistvlad/linkcheck/internal/ctxlog"
	"github.com/specialistvlad/linkcheck/internal/linkcheck"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every probe, measured from request dispatch.
const DefaultTimeout = 5 * time.Second

// Options configures an HTTPProber.
type Options struct {
	// Timeout for a single HEAD request. Zero means DefaultTimeout.
	Timeout time.Duration
	// RateLimit caps requests per second across all workers. Zero disables
	// pacing.
	RateLimit float64
	// UserAgent, if set, is sent with every probe.
	UserAgent string
}

// HTTPProber implements linkcheck.Prober and linkcheck.Inspector with HEAD
// requests. It holds no per-request state and is safe for concurrent use.
type HTTPProber struct {
	transport http.RoundTripper
	timeout   time.Duration
	limiter   *rate.Limiter
	userAgent string
}

var (
	_ linkcheck.Prober    = (*HTTPProber)(nil)
	_ linkcheck.Inspector = (*HTTPProber)(nil)
)

// New creates an HTTPProber on top of a client returned by NewClient. Requests
// go straight to the client's transport: http.Client rejects a 3xx response
// whose Location does not parse, which would hide its status code.
func New(client *http.Client, opts Options) *HTTPProber {
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return &HTTPProber{
		transport: transport,
		timeout:   timeout,
		limiter:   limiter,
		userAgent: opts.UserAgent,
	}
}

// CheckStatus returns the status code of a HEAD response verbatim.
func (p *HTTPProber) CheckStatus(ctx context.Context, rawURL string) (int, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Checking status.", "url", rawURL)

	resp, err := p.head(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	logger.Debug("Status received.", "url", rawURL, "status", resp.StatusCode)
	return resp.StatusCode, nil
}

// CheckRedirect issues a fresh HEAD request and returns the absolute form of
// its Location header, or "" if the header is absent.
func (p *HTTPProber) CheckRedirect(ctx context.Context, rawURL string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Checking redirect.", "url", rawURL)

	resp, err := p.head(ctx, rawURL)
	if err != nil {
		return "", err
	}
	target, err := location(rawURL, resp)
	if err != nil {
		return "", err
	}
	logger.Debug("Redirect received.", "url", rawURL, "status", resp.StatusCode, "location", target)
	return target, nil
}

// Inspect reads status and redirect from one response. A bad Location header
// fails only the redirect outcome.
func (p *HTTPProber) Inspect(ctx context.Context, rawURL string) (linkcheck.StatusOutcome, linkcheck.RedirectOutcome) {
	resp, err := p.head(ctx, rawURL)
	if err != nil {
		return linkcheck.StatusOutcome{Err: err}, linkcheck.RedirectOutcome{Err: err}
	}
	status := linkcheck.StatusOutcome{Code: resp.StatusCode}
	target, err := location(rawURL, resp)
	if err != nil {
		return status, linkcheck.RedirectOutcome{Err: err}
	}
	return status, linkcheck.RedirectOutcome{Target: target}
}

// head performs one HEAD request under the probe timeout. The body is closed
// before returning; only status and headers are used.
func (p *HTTPProber) head(ctx context.Context, rawURL string) (*http.Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, classify(rawURL, fmt.Errorf("rate limiter: %w", err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, &linkcheck.ProbeError{Kind: linkcheck.KindTransport, URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.transport.RoundTrip(req)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	resp.Body.Close()
	return resp, nil
}

// location resolves the Location header against the request URL. A header
// that is present but empty is invalid.
func location(rawURL string, resp *http.Response) (string, error) {
	if values := resp.Header.Values("Location"); len(values) > 0 && values[0] == "" {
		return "", &linkcheck.ProbeError{Kind: linkcheck.KindParse, URL: rawURL, Err: errors.New("empty Location header")}
	}
	loc, err := resp.Location()
	if errors.Is(err, http.ErrNoLocation) {
		return "", nil
	}
	if err != nil {
		return "", &linkcheck.ProbeError{Kind: linkcheck.KindParse, URL: rawURL, Err: fmt.Errorf("invalid Location header %q: %w", resp.Header.Get("Location"), err)}
	}
	return loc.String(), nil
}
