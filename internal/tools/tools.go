// Package tools holds the registry of callable tools the model may
// invoke, both built-ins and bridged MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Tool pairs a JSON-schema description for the model with the Go
// handler that runs it.
type Tool struct {
	Name        string                                                         `json:"name"`
	Description string                                                         `json:"description"`
	Parameters  map[string]any                                                 `json:"parameters"`
	Handler     func(ctx context.Context, args map[string]any) (string, error) `json:"-"`
}

// Registry is a name-keyed tool table.
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool, replacing any previous tool of the same name.
func (r *Registry) Register(t *Tool) {
	r.tools[t.Name] = t
}

// Get looks a tool up by name, nil when absent.
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// Names lists registered tool names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.tools))
}

// List renders every tool in the function-calling wire format.
func (r *Registry) List() []map[string]any {
	var out []map[string]any
	for _, name := range r.Names() {
		t := r.tools[name]
		out = append(out, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}
	return out
}

// Execute runs a tool by name.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool := r.tools[name]
	if tool == nil {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return tool.Handler(ctx, args)
}

// ExecuteJSON runs a tool with arguments still in JSON form.
func (r *Registry) ExecuteJSON(ctx context.Context, name string, argsJSON string) (string, error) {
	var args map[string]any
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}
	return r.Execute(ctx, name, args)
}
