package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dkoh12/agenticai/internal/httpkit"
)

// maxResponseBytes caps how much of an HTTP response body Send will
// read.
const maxResponseBytes = 10 << 20

// HTTPConfig describes a remote MCP server reached over streamable
// HTTP.
type HTTPConfig struct {
	// URL is the server endpoint; every message is POSTed to it.
	URL string

	// Headers are set on every request (typically Authorization).
	Headers map[string]string

	Logger *slog.Logger
}

// HTTPTransport POSTs each JSON-RPC message to the endpoint and reads
// the reply from the response body. If the server assigns a session
// via the Mcp-Session header, the value is echoed on later requests
// so the server can pin state to this client.
type HTTPTransport struct {
	url     string
	headers map[string]string
	client  *http.Client
	logger  *slog.Logger

	mu      sync.Mutex
	session string
}

// NewHTTPTransport builds the transport. The HTTP client comes from
// httpkit so it shares the process-wide timeout and retry defaults.
func NewHTTPTransport(cfg HTTPConfig) *HTTPTransport {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPTransport{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  httpkit.NewClient(httpkit.WithLogger(logger)),
		logger:  logger,
	}
}

// Send POSTs the request and decodes the JSON-RPC response from the
// body.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	httpResp, err := t.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer httpkit.DrainAndClose(httpResp.Body, maxResponseBytes)

	if httpResp.StatusCode != http.StatusOK {
		body := httpkit.ReadErrorBody(httpResp.Body, 1<<20)
		return nil, fmt.Errorf("mcp server returned %d: %s", httpResp.StatusCode, body)
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// Notify POSTs the notification. Servers answer notifications with
// 200 or 202 and an empty body.
func (t *HTTPTransport) Notify(ctx context.Context, notif *Notification) error {
	httpResp, err := t.post(ctx, notif)
	if err != nil {
		return err
	}
	defer httpkit.DrainAndClose(httpResp.Body, maxResponseBytes)

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusAccepted {
		body := httpkit.ReadErrorBody(httpResp.Body, 1<<20)
		return fmt.Errorf("mcp server returned %d for notification: %s", httpResp.StatusCode, body)
	}
	return nil
}

// post marshals v and delivers it, applying configured headers and
// the session echo, and captures any session the server assigns.
func (t *HTTPTransport) post(ctx context.Context, v any) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	t.mu.Lock()
	if t.session != "" {
		req.Header.Set("Mcp-Session", t.session)
	}
	t.mu.Unlock()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to %s: %w", t.url, err)
	}

	if sid := resp.Header.Get("Mcp-Session"); sid != "" {
		t.mu.Lock()
		t.session = sid
		t.mu.Unlock()
	}
	return resp, nil
}

// Close is a no-op; the pooled HTTP client is shared process state.
func (t *HTTPTransport) Close() error {
	return nil
}
