// Package aur implements an asynchronous client engine for the Arch User
// Repository. Callers queue RPC, download, and git-clone operations with a
// completion callback, then drive everything with a single blocking Wait.
//
// The engine is deliberately single-threaded at the dispatch level: Queue*
// and Wait must be called from one goroutine, callbacks run strictly one at
// a time inside Wait, and no engine state needs locking. The actual network
// and process work happens on internal goroutines that report back through
// completion channels.
package aur

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/auric-sh/auric/internal/model"
	"github.com/auric-sh/auric/internal/transfer"
)

// Callback signatures. Exactly one of (response, error) is set; each
// callback fires exactly once, never synchronously from a Queue call. A
// non-zero return requests cancellation of every other active operation.
type (
	RpcCallback   func(resp *RpcResponse, err error) int
	RawCallback   func(resp *RawResponse, err error) int
	CloneCallback func(resp *CloneResponse, err error) int
)

// Client multiplexes concurrent AUR operations and dispatches their typed
// results to caller-supplied callbacks.
//
// Ownership contract: a Client belongs to one goroutine. Queue* may be
// called between Waits and from inside callbacks; work queued from a
// callback is honored by the Wait call that is currently running.
type Client struct {
	baseURL string
	mux     *transfer.Multiplexer

	// exits carries clone completions; it shares the transfer.Result shape
	// so the dispatch loop treats process exits and HTTP completions alike.
	exits chan transfer.Result

	// pending holds synthesized completions (e.g. spawn failures) that must
	// reach the callback through Wait rather than synchronously from Queue.
	pending []transfer.Result

	ops      *activeOps
	sweeping bool
	failed   bool

	logger     *slog.Logger
	debug      DebugLevel
	requestLog io.Writer
	gitPath    string
}

// New creates a client rooted at baseURL, e.g. https://aur.archlinux.org.
func New(baseURL string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL: strippedURL(u),
		mux:     transfer.NewMultiplexer(logger),
		exits:   make(chan transfer.Result, 16),
		ops:     newActiveOps(),
		logger:  logger,
		gitPath: "git",
	}, nil
}

func strippedURL(u *url.URL) string {
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// SetMaxConnections caps simultaneous connections to the server. Zero or
// negative means unlimited. Call before queueing; later calls affect only
// future transfers.
func (c *Client) SetMaxConnections(n int) {
	c.mux.SetMaxConnections(n)
}

// SetConnectTimeout bounds connection establishment per transfer. Zero or
// negative means no timeout. Call before queueing; later calls affect only
// future transfers.
func (c *Client) SetConnectTimeout(d time.Duration) {
	c.mux.SetConnectTimeout(d)
}

// SetGitPath overrides the git binary used for clone operations.
func (c *Client) SetGitPath(path string) {
	c.gitPath = path
}

// QueueRpcRequest issues an RPC request asynchronously; the callback receives
// the parsed reply.
func (c *Client) QueueRpcRequest(req *RpcRequest, cb RpcCallback) error {
	return c.queueTransfer(kindRpc, req, func(res transfer.Result) (int, error) {
		if err := transportResult(res); err != nil {
			return cb(nil, err), err
		}
		resp, err := parseRpcResponse(res.Body)
		if err != nil {
			return cb(nil, err), err
		}
		return cb(resp, nil), nil
	})
}

// QueueRawRpcRequest issues an RPC request asynchronously but hands the
// callback the raw reply bytes without parsing them.
func (c *Client) QueueRawRpcRequest(req *RpcRequest, cb RawCallback) error {
	return c.queueTransfer(kindRawRpc, req, c.rawDispatch(cb))
}

// QueueTarballRequest downloads a package's snapshot tarball asynchronously.
func (c *Client) QueueTarballRequest(req *RawRequest, cb RawCallback) error {
	return c.queueTransfer(kindTarball, req, c.rawDispatch(cb))
}

// QueuePkgbuildRequest downloads a package's PKGBUILD asynchronously.
func (c *Client) QueuePkgbuildRequest(req *RawRequest, cb RawCallback) error {
	return c.queueTransfer(kindPkgbuild, req, c.rawDispatch(cb))
}

func (c *Client) rawDispatch(cb RawCallback) func(transfer.Result) (int, error) {
	return func(res transfer.Result) (int, error) {
		if err := transportResult(res); err != nil {
			return cb(nil, err), err
		}
		return cb(&RawResponse{Bytes: res.Body, StatusCode: res.StatusCode}, nil), nil
	}
}

// urlRequest is the common surface of RPC and raw requests: validation plus
// resolution against the base URL.
type urlRequest interface {
	validate() error
	URL(base string) string
}

func (c *Client) queueTransfer(kind operationKind, req urlRequest, dispatch func(transfer.Result) (int, error)) error {
	if err := req.validate(); err != nil {
		return err
	}

	target := req.URL(c.baseURL)
	httpReq, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	op := &operation{
		id:       model.NewID(),
		kind:     kind,
		queuedAt: time.Now(),
		cancel:   cancel,
		dispatch: dispatch,
	}
	c.ops.add(op)
	inflightOperations.Inc()
	c.traceRequest(op, http.MethodGet, target)

	c.mux.Start(ctx, op.id, httpReq)
	return nil
}

// Wait runs the dispatch loop until no operation remains active. It returns
// 0 when every callback received a success and none requested cancellation,
// non-zero otherwise: any failure is fatal to the batch's exit status,
// whether transport, parse, or sweep-induced. Wait is re-entrant for
// sequential batches and returns immediately when nothing is queued.
func (c *Client) Wait() int {
	for !c.ops.isEmpty() {
		var res transfer.Result
		if len(c.pending) > 0 {
			res, c.pending = c.pending[0], c.pending[1:]
		} else {
			select {
			case res = <-c.mux.Completions():
			case res = <-c.exits:
			}
		}
		c.finishOperation(res)
	}

	code := 0
	if c.failed {
		code = 1
	}
	c.failed = false
	c.sweeping = false
	return code
}

// finishOperation is the single completion path for every operation,
// whatever its origin: deregister, dispatch the typed result to the
// callback, then honor a cancellation request. Events for unknown IDs are
// late completions of already-finished operations and are dropped.
func (c *Client) finishOperation(res transfer.Result) {
	op := c.ops.remove(res.ID)
	if op == nil {
		c.logger.Debug("dropping event for inactive operation", "id", res.ID)
		return
	}
	op.cancel()

	code, err := op.dispatch(res)

	inflightOperations.Dec()
	operationsTotal.WithLabelValues(string(op.kind), statusLabel(err)).Inc()
	operationDuration.WithLabelValues(string(op.kind)).Observe(time.Since(op.queuedAt).Seconds())
	if n := len(res.Body); n > 0 {
		transferBytesTotal.Add(float64(n))
	}

	if c.debug >= DebugVerbose {
		c.logger.Debug("operation finished",
			"id", op.id,
			"kind", string(op.kind),
			"status", statusLabel(err),
			"callback_code", code,
			"duration_ms", time.Since(op.queuedAt).Milliseconds(),
		)
	}

	if err != nil || code != 0 {
		c.failed = true
	}
	if code != 0 && !c.sweeping {
		c.cancelRemaining()
	}
}

// cancelRemaining force-completes every still-active operation with
// ErrCancelled. The sweeping flag keeps the sweep one-shot: callbacks
// invoked from inside it cannot trigger a nested sweep.
func (c *Client) cancelRemaining() {
	c.sweeping = true
	for _, id := range c.ops.snapshotIDs() {
		c.finishOperation(transfer.Result{ID: id, Err: ErrCancelled})
	}
}

// Close aborts all remaining operations without invoking their callbacks and
// releases the transport. The client must not be used afterwards.
func (c *Client) Close() error {
	for _, id := range c.ops.snapshotIDs() {
		if op := c.ops.remove(id); op != nil {
			op.cancel()
			inflightOperations.Dec()
		}
	}
	c.pending = nil
	c.mux.Close()
	return nil
}

func statusLabel(err error) string {
	var (
		parseErr *ParseError
		rpcErr   *RPCError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrCancelled):
		return "cancelled"
	case errors.As(err, &parseErr):
		return "parse_error"
	case errors.As(err, &rpcErr):
		return "rpc_error"
	default:
		return "transport_error"
	}
}
