package testutil

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// CountingHandler wraps a handler and counts the requests it receives.
type CountingHandler struct {
	next  http.Handler
	count atomic.Int64
}

// Count returns how many requests reached the handler.
func (h *CountingHandler) Count() int64 { return h.count.Load() }

// ServeHTTP implements http.Handler.
func (h *CountingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.count.Add(1)
	h.next.ServeHTTP(w, r)
}

// NewTLSServer starts an HTTPS test server that is closed when the test ends.
// The returned handler counts requests.
func NewTLSServer(t *testing.T, handler http.Handler) (*httptest.Server, *CountingHandler) {
	t.Helper()

	counter := &CountingHandler{next: handler}
	server := httptest.NewTLSServer(counter)
	t.Cleanup(server.Close)
	return server, counter
}

// TLSConfig returns a TLS configuration trusting the test server's
// certificate.
func TLSConfig(server *httptest.Server) *tls.Config {
	return server.Client().Transport.(*http.Transport).TLSClientConfig
}

// StatusHandler responds with a fixed status and, if location is non-empty,
// a Location header.
func StatusHandler(status int, location string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if location != "" {
			w.Header().Set("Location", location)
		}
		w.WriteHeader(status)
	})
}

// StallHandler blocks until the client goes away or d elapses.
func StallHandler(d time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(d):
		}
		w.WriteHeader(http.StatusOK)
	})
}

// SequenceHandler serves the n-th request with handlers[n], repeating the last
// handler once the sequence is exhausted.
func SequenceHandler(handlers ...http.Handler) http.Handler {
	var n atomic.Int64
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(n.Add(1) - 1)
		if i >= len(handlers) {
			i = len(handlers) - 1
		}
		handlers[i].ServeHTTP(w, r)
	})
}
