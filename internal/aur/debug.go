package aur

import (
	"fmt"
	"io"
)

// DebugLevel selects how much diagnostic output the engine produces.
type DebugLevel int

const (
	// DebugNone disables all engine diagnostics.
	DebugNone DebugLevel = iota

	// DebugVerbose traces operation lifecycles through the structured logger.
	DebugVerbose

	// DebugRequests additionally writes one line per outbound request to the
	// writer passed to SetDebug.
	DebugRequests
)

// SetDebug configures the engine's diagnostic output. requestLog is only
// consulted at DebugRequests and receives one line per outbound request.
// Configure before queueing; the setting is otherwise invisible to protocol
// logic.
func (c *Client) SetDebug(level DebugLevel, requestLog io.Writer) {
	c.debug = level
	c.requestLog = requestLog
}

func (c *Client) traceRequest(op *operation, method, target string) {
	if c.debug >= DebugVerbose {
		c.logger.Debug("operation queued",
			"id", op.id,
			"kind", string(op.kind),
			"target", target,
		)
	}
	if c.debug >= DebugRequests && c.requestLog != nil {
		fmt.Fprintf(c.requestLog, "%s %s\n", method, target)
	}
}
