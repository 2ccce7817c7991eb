// Package transfer multiplexes many concurrent HTTP transfers over one
// shared connection pool and reports each completion as a single event.
//
// Each transfer runs in its own goroutine doing blocking I/O against the
// shared http.Client; connection caps and connect timeouts are enforced by
// the underlying transport. Completions are delivered on one channel so a
// consumer can drain them from a single dispatch loop.
package transfer

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Result is the transport-level outcome of one transfer. Exactly one Result
// is produced per started transfer, unless the transfer's context is
// cancelled before the consumer drains it, in which case the sender gives up
// and the result is discarded.
type Result struct {
	// ID identifies the operation the result belongs to.
	ID string

	// StatusCode is the final HTTP status, or the child exit code when the
	// Result describes a process-based operation. Zero when the transfer
	// failed before a status was received.
	StatusCode int

	// Body holds the accumulated response body.
	Body []byte

	// Err is the transport-level failure, nil on a completed transfer.
	// A completed transfer with a failure-class status code is not an Err;
	// classifying status codes is the consumer's policy.
	Err error

	// Duration is the wall-clock time from start to completion.
	Duration time.Duration
}

// Multiplexer owns the shared HTTP transport and the completion channel.
// Configure it before starting the first transfer; the setters mutate the
// transport and are not safe to call with transfers in flight.
type Multiplexer struct {
	client      *http.Client
	transport   *http.Transport
	dialer      *net.Dialer
	completions chan Result
	logger      *slog.Logger
}

// completionBuffer keeps finished transfer goroutines from parking on the
// channel send in the common case. Senders that outlive their operation
// bail out via context cancellation, so the exact size is not load-bearing.
const completionBuffer = 16

// NewMultiplexer creates a multiplexer with an unbounded connection pool
// and no connect timeout.
func NewMultiplexer(logger *slog.Logger) *Multiplexer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dialer := &net.Dialer{}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConnsPerHost: 8,
	}

	return &Multiplexer{
		client:      &http.Client{Transport: transport},
		transport:   transport,
		dialer:      dialer,
		completions: make(chan Result, completionBuffer),
		logger:      logger,
	}
}

// SetMaxConnections caps the number of simultaneous connections per host.
// Zero or negative means unlimited. Transfers beyond the cap queue inside
// the transport until a connection frees up.
func (m *Multiplexer) SetMaxConnections(n int) {
	m.transport.MaxConnsPerHost = max(n, 0)
}

// SetConnectTimeout bounds connection establishment for future transfers.
// Zero or negative means no timeout.
func (m *Multiplexer) SetConnectTimeout(d time.Duration) {
	m.dialer.Timeout = max(d, 0)
}

// Completions returns the channel on which finished transfers are reported.
func (m *Multiplexer) Completions() <-chan Result {
	return m.completions
}

// Start begins an asynchronous transfer identified by id. Completion is
// reported on the Completions channel. Cancelling ctx aborts the transfer;
// an aborted transfer whose result nobody drains is dropped silently.
func (m *Multiplexer) Start(ctx context.Context, id string, req *http.Request) {
	go m.run(ctx, id, req.WithContext(ctx))
}

func (m *Multiplexer) run(ctx context.Context, id string, req *http.Request) {
	start := time.Now()
	res := Result{ID: id}

	resp, err := m.client.Do(req)
	if err != nil {
		res.Err = err
	} else {
		res.StatusCode = resp.StatusCode
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			res.Err = err
		} else {
			res.Body = body
		}
	}
	res.Duration = time.Since(start)

	m.logger.Debug("transfer finished",
		"id", id,
		"url", req.URL.String(),
		"status", res.StatusCode,
		"bytes", len(res.Body),
		"duration_ms", res.Duration.Milliseconds(),
		"error", res.Err,
	)

	select {
	case m.completions <- res:
	case <-ctx.Done():
	}
}

// Close releases idle connections. In-flight transfers must have been
// cancelled by their contexts before calling Close.
func (m *Multiplexer) Close() {
	m.transport.CloseIdleConnections()
}
