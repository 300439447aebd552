package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// MCP frames every message as JSON-RPC 2.0.
const jsonrpcVersion = "2.0"

// Request is an outgoing JSON-RPC call. IDs are assigned by the client
// and used to correlate the response.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response carries either a result or an error, never both.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Notification is a call without an ID; the server does not answer it.
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// RPCError is the JSON-RPC error object. It satisfies the error
// interface so protocol errors flow through normal error handling.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewRequest builds a request with the protocol version filled in.
func NewRequest(id int64, method string, params any) *Request {
	return &Request{JSONRPC: jsonrpcVersion, ID: id, Method: method, Params: params}
}

// NewNotification builds a notification with the protocol version
// filled in.
func NewNotification(method string, params any) *Notification {
	return &Notification{JSONRPC: jsonrpcVersion, Method: method, Params: params}
}

// Transport moves JSON-RPC messages to and from one MCP server. The
// two implementations are StdioTransport (subprocess) and
// HTTPTransport (streamable HTTP).
type Transport interface {
	// Send delivers a request and blocks until its response arrives
	// or ctx ends.
	Send(ctx context.Context, req *Request) (*Response, error)

	// Notify delivers a notification. Nothing comes back.
	Notify(ctx context.Context, notif *Notification) error

	// Close releases the transport. For stdio this stops the
	// subprocess.
	Close() error
}
