package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dkoh12/agenticai/internal/tools"
)

// BridgeTools pulls the tool catalog from a connected client and
// registers each tool on the registry under a namespaced name, so
// remote tools and built-ins share one lookup table. A non-empty
// include list is an allowlist of MCP tool names; otherwise exclude
// acts as a denylist. Returns how many tools were registered.
func BridgeTools(ctx context.Context, client *Client, serverName string, registry *tools.Registry, include, exclude []string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	catalog, err := client.ListTools(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tools from %s: %w", serverName, err)
	}

	registered := 0
	for _, td := range catalog {
		if !wanted(td.Name, include, exclude) {
			continue
		}
		name := ToolName(serverName, td.Name)
		registry.Register(proxyTool(client, name, td))
		registered++

		logger.Debug("bridged MCP tool",
			"mcp_name", td.Name,
			"registry_name", name,
			"server", serverName,
		)
	}
	return registered, nil
}

// ToolName builds the registry name "mcp_{server}_{tool}" with both
// parts sanitized, keeping remote tools out of the built-in namespace.
func ToolName(serverName, mcpToolName string) string {
	return "mcp_" + sanitize(serverName) + "_" + sanitize(mcpToolName)
}

func wanted(name string, include, exclude []string) bool {
	if len(include) > 0 {
		return slices.Contains(include, name)
	}
	return !slices.Contains(exclude, name)
}

// proxyTool wraps one remote tool as a registry tool whose handler
// forwards the call over the MCP session.
func proxyTool(client *Client, name string, td ToolDefinition) *tools.Tool {
	mcpName := td.Name
	return &tools.Tool{
		Name:        name,
		Description: td.Description,
		Parameters:  td.InputSchema,
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return client.CallTool(ctx, mcpName, args)
		},
	}
}

// sanitize lowercases a name and maps every run of characters outside
// [a-z0-9] to a single underscore, trimming underscores at the ends.
func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
