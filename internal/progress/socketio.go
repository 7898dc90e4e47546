package progress

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/linkcheck/internal/ctxlog"
	"github.com/specialistvlad/linkcheck/internal/linkcheck"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultConnectTimeout bounds how long Dial waits for the initial connection.
const DefaultConnectTimeout = 15 * time.Second

// SocketIOOptions configures a SocketIO publisher.
type SocketIOOptions struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SocketIO emits run events to a socket.io server.
type SocketIO struct {
	io *socket.Socket
}

var _ Publisher = (*SocketIO)(nil)

// Dial connects to the socket.io server and waits for the connection to be
// acknowledged.
func Dial(ctx context.Context, opts SocketIOOptions) (*SocketIO, error) {
	logger := ctxlog.FromContext(ctx).With("publisher", "socketio", "url", opts.URL)
	logger.Debug("Connecting progress publisher...")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse progress URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("progress URL %q must be absolute", opts.URL)
	}

	sockOpts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		sockOpts.SetPath(parsedURL.Path)
	}
	if opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}

	connectChan := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(namespace, sockOpts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Progress publisher connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketIO{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

func (p *SocketIO) emit(ctx context.Context, event string, payload map[string]any) {
	if !p.io.Connected() {
		ctxlog.FromContext(ctx).Debug("Progress publisher disconnected, dropping event.", "event", event)
		return
	}
	p.io.Emit(event, payload)
}

// RunStarted implements Publisher.
func (p *SocketIO) RunStarted(ctx context.Context, ev Started) {
	p.emit(ctx, EventRunStarted, startedPayload(ev))
}

// Row implements Publisher.
func (p *SocketIO) Row(ctx context.Context, runID string, index int, results []linkcheck.Result) {
	p.emit(ctx, EventRow, rowPayload(runID, index, results))
}

// RunFinished implements Publisher.
func (p *SocketIO) RunFinished(ctx context.Context, ev Finished) {
	p.emit(ctx, EventRunFinished, finishedPayload(ev))
}

// Close disconnects from the server.
func (p *SocketIO) Close() error {
	p.io.Disconnect()
	return nil
}
