package prober

import (
	"crypto/tls"
	"net/http"
	"time"
)

// ClientOptions configures the shared HTTP client.
type ClientOptions struct {
	// MaxConnsPerHost bounds idle connections kept per host. It should match
	// the worker count so that pooled connections are reused.
	MaxConnsPerHost int
	// TLSConfig overrides the default TLS configuration, e.g. to trust a
	// private CA.
	TLSConfig *tls.Config
}

// NewClient returns an *http.Client shared by all probes of a run. Redirects
// are never followed: the Location header of the first response is what a
// redirect check reports. The client carries no overall timeout; each probe
// sets its own deadline. HTTPProber uses only its transport.
func NewClient(opts ClientOptions) *http.Client {
	perHost := opts.MaxConnsPerHost
	if perHost < 1 {
		perHost = 1
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = 100
	transport.MaxIdleConnsPerHost = perHost
	transport.IdleConnTimeout = 90 * time.Second
	if opts.TLSConfig != nil {
		transport.TLSClientConfig = opts.TLSConfig.Clone()
	}

	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Transport: transport,
	}
}

// CloseClient releases idle connections held by a client created with
// NewClient.
func CloseClient(client *http.Client) {
	client.CloseIdleConnections()
}
