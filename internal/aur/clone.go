package aur

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/auric-sh/auric/internal/model"
	"github.com/auric-sh/auric/internal/transfer"
)

// QueueCloneRequest clones the package repository asynchronously as a git
// child process. If the destination is already a checkout, the existing
// repository is updated with a fetch instead. The exit event is dispatched
// through the same completion path as HTTP transfers: exit zero succeeds,
// anything else becomes a transport error carrying the exit code.
func (c *Client) QueueCloneRequest(req *CloneRequest, cb CloneCallback) error {
	if err := req.validate(); err != nil {
		return err
	}

	dest := req.dest()
	var gitOp string
	var args []string
	if isCheckout(dest) {
		gitOp = "fetch"
		args = []string{"-C", dest, "fetch"}
	} else {
		gitOp = "clone"
		args = []string{"clone", "--depth=1", req.URL(c.baseURL), dest}
	}

	ctx, cancel := context.WithCancel(context.Background())
	op := &operation{
		id:       model.NewID(),
		kind:     kindClone,
		queuedAt: time.Now(),
		cancel:   cancel,
		dispatch: func(res transfer.Result) (int, error) {
			if err := cloneResult(res); err != nil {
				return cb(nil, err), err
			}
			return cb(&CloneResponse{Operation: gitOp, Path: dest}, nil), nil
		},
	}
	c.ops.add(op)
	inflightOperations.Inc()
	c.traceRequest(op, "GIT", c.gitPath+" "+strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.gitPath, args...)
	if c.debug >= DebugVerbose {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		// Spawn failure: no exit watcher exists, so synthesize the completion.
		// It still reaches the callback through Wait, never synchronously.
		c.pending = append(c.pending, transfer.Result{
			ID:  op.id,
			Err: fmt.Errorf("spawn %s: %w", c.gitPath, err),
		})
		return nil
	}

	go func() {
		err := cmd.Wait()
		res := transfer.Result{ID: op.id}
		if err != nil {
			res.Err = err
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				res.StatusCode = exitErr.ExitCode()
			}
		}
		select {
		case c.exits <- res:
		case <-ctx.Done():
		}
	}()
	return nil
}

// cloneResult maps a child exit event onto the engine's error taxonomy.
func cloneResult(res transfer.Result) error {
	if res.Err == nil {
		return nil
	}
	if errors.Is(res.Err, ErrCancelled) {
		return ErrCancelled
	}
	return &TransportError{Code: res.StatusCode, Err: res.Err}
}

// isCheckout reports whether dir already holds a git checkout.
func isCheckout(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}
