package prober_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/linkcheck/internal/linkcheck"
	"github.com/specialistvlad/linkcheck/internal/prober"
	"github.com/specialistvlad/linkcheck/internal/testutil"
	"github.com/stretchr/testify/require"
)

func newProber(server *httptest.Server, opts prober.Options) *prober.HTTPProber {
	client := prober.NewClient(prober.ClientOptions{
		MaxConnsPerHost: 4,
		TLSConfig:       testutil.TLSConfig(server),
	})
	return prober.New(client, opts)
}

func requireKind(t *testing.T, err error, want linkcheck.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	kind, ok := linkcheck.KindOf(err)
	require.True(t, ok, "expected a classified error, got %v", err)
	require.Equal(t, want, kind, "unexpected kind for %v", err)
}

func TestHTTPProber_StatusAndRedirect(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		status       int
		location     string
		wantRedirect func(serverURL string) string
	}{
		{
			name:         "200 without Location",
			status:       http.StatusOK,
			wantRedirect: func(string) string { return "" },
		},
		{
			name:         "301 with absolute Location",
			status:       http.StatusMovedPermanently,
			location:     "https://example.com/new",
			wantRedirect: func(string) string { return "https://example.com/new" },
		},
		{
			name:         "302 with relative Location",
			status:       http.StatusFound,
			location:     "/new",
			wantRedirect: func(u string) string { return u + "/new" },
		},
		{
			name:         "404 is reported verbatim",
			status:       http.StatusNotFound,
			wantRedirect: func(string) string { return "" },
		},
		{
			name:         "Location on a non-redirect status",
			status:       http.StatusCreated,
			location:     "https://example.com/created",
			wantRedirect: func(string) string { return "https://example.com/created" },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			server, _ := testutil.NewTLSServer(t, testutil.StatusHandler(tc.status, tc.location))
			p := newProber(server, prober.Options{Timeout: 2 * time.Second})
			ctx, _ := testutil.LogContext(t)

			// --- Act ---
			code, statusErr := p.CheckStatus(ctx, server.URL)
			target, redirectErr := p.CheckRedirect(ctx, server.URL)

			// --- Assert ---
			require.NoError(t, statusErr)
			require.NoError(t, redirectErr)
			require.Equal(t, tc.status, code)
			require.Equal(t, tc.wantRedirect(server.URL), target)
		})
	}
}

func TestHTTPProber_SendsTwoIndependentHeadRequests(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var methods []string
	server, counter := testutil.NewTLSServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	p := newProber(server, prober.Options{})
	ctx, _ := testutil.LogContext(t)

	_, err := p.CheckStatus(ctx, server.URL)
	require.NoError(t, err)
	_, err = p.CheckRedirect(ctx, server.URL)
	require.NoError(t, err)

	require.EqualValues(t, 2, counter.Count())
	require.Equal(t, []string{http.MethodHead, http.MethodHead}, methods)
}

func TestHTTPProber_DoesNotFollowRedirects(t *testing.T) {
	t.Parallel()

	server, counter := testutil.NewTLSServer(t, testutil.StatusHandler(http.StatusFound, "/loop"))
	p := newProber(server, prober.Options{})
	ctx, _ := testutil.LogContext(t)

	code, err := p.CheckStatus(ctx, server.URL+"/start")

	require.NoError(t, err)
	require.Equal(t, http.StatusFound, code)
	require.EqualValues(t, 1, counter.Count())
}

func TestHTTPProber_InvalidLocationFailsOnlyRedirect(t *testing.T) {
	t.Parallel()

	server, _ := testutil.NewTLSServer(t, testutil.StatusHandler(http.StatusMovedPermanently, "/%zz"))
	p := newProber(server, prober.Options{})
	ctx, _ := testutil.LogContext(t)

	code, err := p.CheckStatus(ctx, server.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusMovedPermanently, code)

	_, err = p.CheckRedirect(ctx, server.URL)
	requireKind(t, err, linkcheck.KindParse)

	status, redirect := p.Inspect(ctx, server.URL)
	require.False(t, status.IsError())
	require.Equal(t, http.StatusMovedPermanently, status.Code)
	require.True(t, redirect.IsError())
	requireKind(t, redirect.Err, linkcheck.KindParse)
}

func TestHTTPProber_EmptyLocationFailsOnlyRedirect(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	server, _ := testutil.NewTLSServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Location"] = []string{""}
		w.WriteHeader(http.StatusFound)
	}))
	p := newProber(server, prober.Options{})
	ctx, _ := testutil.LogContext(t)

	// --- Act ---
	code, statusErr := p.CheckStatus(ctx, server.URL)
	target, redirectErr := p.CheckRedirect(ctx, server.URL)

	// --- Assert ---
	require.NoError(t, statusErr)
	require.Equal(t, http.StatusFound, code)
	require.Empty(t, target)
	requireKind(t, redirectErr, linkcheck.KindParse)
}

func TestHTTPProber_Timeout(t *testing.T) {
	t.Parallel()

	server, _ := testutil.NewTLSServer(t, testutil.StallHandler(5*time.Second))
	p := newProber(server, prober.Options{Timeout: 50 * time.Millisecond})
	ctx, _ := testutil.LogContext(t)

	start := time.Now()
	_, err := p.CheckStatus(ctx, server.URL)

	requireKind(t, err, linkcheck.KindTimeout)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPProber_RedirectTimeoutIsIndependent(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The first request (status) answers, the second (redirect) stalls.
	server, counter := testutil.NewTLSServer(t, testutil.SequenceHandler(
		testutil.StatusHandler(http.StatusOK, ""),
		testutil.StallHandler(5*time.Second),
	))
	p := newProber(server, prober.Options{Timeout: 100 * time.Millisecond})
	processor := linkcheck.NewProcessor(p, 1, false)
	ctx, _ := testutil.LogContext(t)

	// --- Act ---
	row, err := processor.ProcessRow(ctx, 1, []string{server.URL})

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, []string{server.URL, "200", "ERROR"}, row)
	require.EqualValues(t, 2, counter.Count())
}

func TestHTTPProber_ConnectionRefused(t *testing.T) {
	t.Parallel()

	server := httptest.NewTLSServer(testutil.StatusHandler(http.StatusOK, ""))
	url := server.URL
	p := newProber(server, prober.Options{Timeout: time.Second})
	server.Close()
	ctx, _ := testutil.LogContext(t)

	_, err := p.CheckStatus(ctx, url)
	requireKind(t, err, linkcheck.KindTransport)

	_, err = p.CheckRedirect(ctx, url)
	requireKind(t, err, linkcheck.KindTransport)
}

func TestHTTPProber_UntrustedCertificate(t *testing.T) {
	t.Parallel()

	server, _ := testutil.NewTLSServer(t, testutil.StatusHandler(http.StatusOK, ""))
	p := prober.New(prober.NewClient(prober.ClientOptions{}), prober.Options{Timeout: time.Second})
	ctx, _ := testutil.LogContext(t)

	_, err := p.CheckStatus(ctx, server.URL)

	requireKind(t, err, linkcheck.KindTransport)
}

func TestHTTPProber_MalformedURL(t *testing.T) {
	t.Parallel()

	p := prober.New(prober.NewClient(prober.ClientOptions{}), prober.Options{})
	ctx, _ := testutil.LogContext(t)

	_, err := p.CheckStatus(ctx, "https://exa mple.com")

	requireKind(t, err, linkcheck.KindTransport)
}

func TestHTTPProber_Inspect(t *testing.T) {
	t.Parallel()

	server, counter := testutil.NewTLSServer(t, testutil.StatusHandler(http.StatusPermanentRedirect, "/moved"))
	p := newProber(server, prober.Options{})
	ctx, _ := testutil.LogContext(t)

	status, redirect := p.Inspect(ctx, server.URL+"/old")

	require.NoError(t, status.Err)
	require.NoError(t, redirect.Err)
	require.Equal(t, http.StatusPermanentRedirect, status.Code)
	require.Equal(t, server.URL+"/moved", redirect.Target)
	require.EqualValues(t, 1, counter.Count())
}

func TestHTTPProber_UserAgent(t *testing.T) {
	t.Parallel()

	agents := make(chan string, 1)
	server, _ := testutil.NewTLSServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.UserAgent()
		w.WriteHeader(http.StatusNoContent)
	}))
	p := newProber(server, prober.Options{UserAgent: "linkcheck-test/1.0"})
	ctx, _ := testutil.LogContext(t)

	_, err := p.CheckStatus(ctx, server.URL)

	require.NoError(t, err)
	require.Equal(t, "linkcheck-test/1.0", <-agents)
}

func TestHTTPProber_RateLimit(t *testing.T) {
	t.Parallel()

	server, _ := testutil.NewTLSServer(t, testutil.StatusHandler(http.StatusOK, ""))
	p := newProber(server, prober.Options{RateLimit: 20})
	ctx, _ := testutil.LogContext(t)

	start := time.Now()
	for i := 0; i < 4; i++ {
		_, err := p.CheckStatus(ctx, server.URL)
		require.NoError(t, err)
	}

	// One token is available immediately, the remaining three arrive 50ms apart.
	require.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
}

func TestHTTPProber_CancelledContext(t *testing.T) {
	t.Parallel()

	server, _ := testutil.NewTLSServer(t, testutil.StatusHandler(http.StatusOK, ""))
	p := newProber(server, prober.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.CheckStatus(ctx, server.URL)

	require.True(t, errors.Is(err, context.Canceled))
	requireKind(t, err, linkcheck.KindTransport)
}
