package aur

import (
	"errors"
	"fmt"
)

// ErrCancelled is delivered to every operation force-completed during a
// cancellation sweep. It is distinct from transport errors so callers can
// tell "never ran to completion" from "ran and failed".
var ErrCancelled = errors.New("operation cancelled")

// TransportError reports a failure at the transfer level: a network error,
// a failure-class HTTP status, or a child process that exited non-zero.
type TransportError struct {
	// Code is the HTTP status for transfers or the exit code for clones.
	// Zero when the operation failed before producing one.
	Code int
	Err  error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Code != 0:
		return fmt.Sprintf("transport error (code %d): %v", e.Code, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transport error: %v", e.Err)
	default:
		return fmt.Sprintf("transport error: status %d", e.Code)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a successful transfer whose body could not be
// interpreted as the expected payload.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse error: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// RPCError reports a well-formed RPC reply whose type is "error": the server
// understood the request and rejected it.
type RPCError struct {
	Message string
}

func (e *RPCError) Error() string { return fmt.Sprintf("rpc error: %s", e.Message) }
