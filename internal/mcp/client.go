package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dkoh12/agenticai/internal/buildinfo"
)

// protocolVersion is advertised in the initialize handshake.
const protocolVersion = "2024-11-05"

// ToolDefinition is one entry from a tools/list response.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ContentBlock is one item of a tools/call result. Only text blocks
// carry usable payload for this client.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Client drives the MCP operations this host needs — initialize,
// tools/list, tools/call, ping — against one server over a Transport.
type Client struct {
	name      string
	transport Transport
	logger    *slog.Logger
	lastID    atomic.Int64

	mu         sync.RWMutex
	serverName string
	serverVer  string
	tools      []ToolDefinition
}

// NewClient wraps a transport. Callers must Initialize before using
// the other operations.
func NewClient(name string, transport Transport, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		name:      name,
		transport: transport,
		logger:    logger.With("mcp_server", name),
	}
}

// Name returns the configured server name.
func (c *Client) Name() string { return c.name }

// Initialize runs the handshake: the initialize request followed by
// the notifications/initialized notification.
func (c *Client) Initialize(ctx context.Context) error {
	resp, err := c.call(ctx, "initialize", map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "agenticai",
			"version": buildinfo.Version,
		},
	})
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	var hello struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	if err := json.Unmarshal(resp.Result, &hello); err != nil {
		return fmt.Errorf("decode initialize result: %w", err)
	}

	c.mu.Lock()
	c.serverName = hello.ServerInfo.Name
	c.serverVer = hello.ServerInfo.Version
	c.mu.Unlock()

	c.logger.Info("mcp session established",
		"server", hello.ServerInfo.Name,
		"version", hello.ServerInfo.Version,
		"protocol", hello.ProtocolVersion,
	)

	if err := c.transport.Notify(ctx, NewNotification("notifications/initialized", nil)); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}
	return nil
}

// ListTools returns the server's tool catalog. The catalog is fetched
// once and cached; MCP servers that change their tool set at runtime
// are out of scope here.
func (c *Client) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	c.mu.RLock()
	cached := c.tools
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	resp, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, fmt.Errorf("tools/list: %w", err)
	}

	var list struct {
		Tools []ToolDefinition `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &list); err != nil {
		return nil, fmt.Errorf("decode tools/list result: %w", err)
	}

	c.mu.Lock()
	c.tools = list.Tools
	c.mu.Unlock()

	c.logger.Info("mcp tools discovered", "count", len(list.Tools))
	return list.Tools, nil
}

// CallTool invokes one tool and returns its content flattened to a
// string. A result marked isError becomes a Go error carrying that
// text.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	resp, err := c.call(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return "", fmt.Errorf("tools/call %s: %w", name, err)
	}

	var result struct {
		Content []ContentBlock `json:"content"`
		IsError bool           `json:"isError,omitempty"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return "", fmt.Errorf("decode tools/call result: %w", err)
	}

	text := flattenContent(result.Content)
	if result.IsError {
		return "", fmt.Errorf("tool %s failed: %s", name, text)
	}
	return text, nil
}

// Ping checks that the server still answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, "ping", nil)
	return err
}

// Close shuts the transport down.
func (c *Client) Close() error {
	return c.transport.Close()
}

// call sends one request and promotes a protocol-level error object
// to a Go error.
func (c *Client) call(ctx context.Context, method string, params any) (*Response, error) {
	resp, err := c.transport.Send(ctx, NewRequest(c.lastID.Add(1), method, params))
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp, nil
}

// flattenContent joins text blocks with newlines. Anything that is
// not text is reduced to a bracketed type marker so the model at
// least learns the block existed.
func flattenContent(blocks []ContentBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == "text" {
			parts = append(parts, b.Text)
			continue
		}
		parts = append(parts, "["+b.Type+"]")
	}
	return strings.Join(parts, "\n")
}
