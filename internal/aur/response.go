package aur

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/auric-sh/auric/internal/model"
	"github.com/auric-sh/auric/internal/transfer"
)

// RpcResponse is a parsed reply from the /rpc endpoint.
type RpcResponse struct {
	Type        string          `json:"type"`
	Version     int             `json:"version"`
	ResultCount int             `json:"resultcount"`
	Results     []model.Package `json:"results"`
	Error       string          `json:"error,omitempty"`
}

// RawResponse holds the verbatim body of a completed download plus its
// final transport status.
type RawResponse struct {
	Bytes      []byte
	StatusCode int
}

// CloneResponse describes where a completed clone operation left the
// repository and whether it was a fresh clone or an update fetch.
type CloneResponse struct {
	// Operation is "clone" for a fresh checkout, "fetch" for an update.
	Operation string

	// Path is the checkout directory.
	Path string
}

// transportResult classifies the transport-level outcome of a finished
// operation. It returns ErrCancelled untouched so sweep-completed operations
// stay distinguishable, wraps every other failure in a TransportError, and
// treats failure-class HTTP statuses as transport errors carrying the code.
func transportResult(res transfer.Result) error {
	if res.Err != nil {
		if errors.Is(res.Err, ErrCancelled) {
			return ErrCancelled
		}
		return &TransportError{Code: res.StatusCode, Err: res.Err}
	}
	if res.StatusCode >= 400 {
		return &TransportError{Code: res.StatusCode}
	}
	return nil
}

// parseRpcResponse interprets the body of a completed RPC transfer. A body
// that is not valid RPC JSON is a ParseError; a valid reply of type "error"
// is an RPCError.
func parseRpcResponse(body []byte) (*RpcResponse, error) {
	if len(body) == 0 {
		return nil, &ParseError{Err: errors.New("empty response body")}
	}

	var resp RpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decode rpc reply: %w", err)}
	}

	if resp.Type == "error" {
		msg := resp.Error
		if msg == "" {
			msg = "unspecified server error"
		}
		return nil, &RPCError{Message: msg}
	}

	return &resp, nil
}
