package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dkoh12/agenticai/internal/tools"
)

func TestToolName(t *testing.T) {
	tests := []struct {
		server string
		tool   string
		want   string
	}{
		{"finance", "add_transaction", "mcp_finance_add_transaction"},
		{"company-data", "query_database", "mcp_company_data_query_database"},
		{"My Server", "Do Thing", "mcp_my_server_do_thing"},
		{"test", "UPPERCASE", "mcp_test_uppercase"},
		{"a--b", "c--d", "mcp_a_b_c_d"},
		{"special!@#", "chars$%^", "mcp_special_chars"},
	}
	for _, tt := range tests {
		if got := ToolName(tt.server, tt.tool); got != tt.want {
			t.Errorf("ToolName(%q, %q) = %q, want %q", tt.server, tt.tool, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	tests := map[string]string{
		"hello":         "hello",
		"Hello-World":   "hello_world",
		"a--b":          "a_b",
		"_leading_":     "leading",
		"special!chars": "special_chars",
		"":              "",
	}
	for input, want := range tests {
		if got := sanitize(input); got != want {
			t.Errorf("sanitize(%q) = %q, want %q", input, got, want)
		}
	}
}

func financeCatalog() toolsListResult {
	return toolsListResult{
		Tools: []ToolDefinition{
			{Name: "get_transactions", Description: "List transactions", InputSchema: map[string]any{"type": "object"}},
			{Name: "add_transaction", Description: "Record a transaction", InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"amount":   map[string]any{"type": "number"},
					"category": map[string]any{"type": "string"},
				},
			}},
			{Name: "get_budget_status", Description: "Budget status", InputSchema: map[string]any{"type": "object"}},
		},
	}
}

func TestBridgeToolsFiltering(t *testing.T) {
	tests := []struct {
		name      string
		include   []string
		exclude   []string
		wantCount int
		present   []string
		absent    []string
	}{
		{
			name:      "all tools",
			wantCount: 3,
			present:   []string{"mcp_finance_get_transactions", "mcp_finance_add_transaction", "mcp_finance_get_budget_status"},
		},
		{
			name:      "include allowlist",
			include:   []string{"get_transactions", "get_budget_status"},
			wantCount: 2,
			present:   []string{"mcp_finance_get_transactions", "mcp_finance_get_budget_status"},
			absent:    []string{"mcp_finance_add_transaction"},
		},
		{
			name:      "exclude denylist",
			exclude:   []string{"add_transaction"},
			wantCount: 2,
			absent:    []string{"mcp_finance_add_transaction"},
		},
		{
			name:      "include wins over exclude",
			include:   []string{"add_transaction"},
			exclude:   []string{"add_transaction"},
			wantCount: 1,
			present:   []string{"mcp_finance_add_transaction"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := newMockTransport()
			mt.addResponse("tools/list", financeCatalog())
			client := NewClient("finance", mt, nil)
			registry := tools.NewRegistry()

			count, err := BridgeTools(context.Background(), client, "finance", registry, tt.include, tt.exclude, nil)
			if err != nil {
				t.Fatalf("BridgeTools: %v", err)
			}
			if count != tt.wantCount {
				t.Errorf("count = %d, want %d", count, tt.wantCount)
			}
			for _, name := range tt.present {
				if registry.Get(name) == nil {
					t.Errorf("missing %s", name)
				}
			}
			for _, name := range tt.absent {
				if registry.Get(name) != nil {
					t.Errorf("%s should have been filtered out", name)
				}
			}
		})
	}
}

func TestBridgeToolsSchemaPassthrough(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("tools/list", financeCatalog())
	client := NewClient("finance", mt, nil)
	registry := tools.NewRegistry()

	if _, err := BridgeTools(context.Background(), client, "finance", registry, nil, nil, nil); err != nil {
		t.Fatalf("BridgeTools: %v", err)
	}

	tool := registry.Get("mcp_finance_add_transaction")
	if tool == nil {
		t.Fatal("tool not registered")
	}
	props, ok := tool.Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatalf("Parameters = %v, want properties map", tool.Parameters)
	}
	if _, ok := props["amount"]; !ok {
		t.Error("amount missing from bridged schema")
	}
	if tool.Description != "Record a transaction" {
		t.Errorf("Description = %q", tool.Description)
	}
}

func TestBridgeToolsHandlerForwardsCall(t *testing.T) {
	mt := newMockTransport()
	mt.addResponse("tools/list", financeCatalog())
	mt.addResponse("tools/call", callToolResult{
		Content: []ContentBlock{{Type: "text", Text: "Food & Dining is at 90% of budget"}},
	})
	client := NewClient("finance", mt, nil)
	registry := tools.NewRegistry()

	if _, err := BridgeTools(context.Background(), client, "finance", registry, nil, nil, nil); err != nil {
		t.Fatalf("BridgeTools: %v", err)
	}

	tool := registry.Get("mcp_finance_get_budget_status")
	result, err := tool.Handler(context.Background(), map[string]any{"month": "2026-08"})
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	if result != "Food & Dining is at 90% of budget" {
		t.Errorf("result = %q", result)
	}

	// The wire call must use the server's own tool name.
	mt.mu.Lock()
	defer mt.mu.Unlock()
	var called string
	for _, req := range mt.sent {
		if req.Method != "tools/call" {
			continue
		}
		raw, _ := json.Marshal(req.Params)
		var params map[string]any
		json.Unmarshal(raw, &params)
		called, _ = params["name"].(string)
	}
	if called != "get_budget_status" {
		t.Errorf("tools/call name = %q, want get_budget_status", called)
	}
}
