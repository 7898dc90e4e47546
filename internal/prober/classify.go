package prober

import (
	"context"
	"errors"
	"net"

	"github.com/specialistvlad/linkcheck/internal/linkcheck"
)

// classify wraps a request failure into a linkcheck.ProbeError.
func classify(rawURL string, err error) error {
	kind := linkcheck.KindTransport
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = linkcheck.KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = linkcheck.KindTimeout
	}
	return &linkcheck.ProbeError{Kind: kind, URL: rawURL, Err: err}
}
