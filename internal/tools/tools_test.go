package tools

import (
	"context"
	"strings"
	"testing"
)

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry()
	r.Register(&Tool{
		Name:        "echo",
		Description: "echoes input",
		Parameters:  map[string]any{"type": "object"},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			s, _ := args["text"].(string)
			return s, nil
		},
	})

	out, err := r.Execute(context.Background(), "echo", map[string]any{"text": "hi"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "hi" {
		t.Errorf("got %q", out)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Execute(context.Background(), "missing", nil); err == nil {
		t.Error("expected error for unknown tool")
	}
}

func TestExecuteJSON_InvalidArgs(t *testing.T) {
	r := NewRegistry()
	r.Register(&Tool{
		Name:    "noop",
		Handler: func(ctx context.Context, args map[string]any) (string, error) { return "", nil },
	})
	if _, err := r.ExecuteJSON(context.Background(), "noop", "{not json"); err == nil {
		t.Error("expected error for invalid JSON arguments")
	}
}

func TestListWireFormat(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("got %d tools, want 2", len(list))
	}
	// Names() sorts, so List is deterministic.
	first := list[0]["function"].(map[string]any)
	if first["name"] != "calculator" {
		t.Errorf("first tool: got %v", first["name"])
	}
	if first["description"] == "" {
		t.Error("description missing")
	}
	if list[0]["type"] != "function" {
		t.Errorf("type: got %v", list[0]["type"])
	}
}

func TestCalculator(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	tests := []struct {
		expr string
		want string
	}{
		{"2 + 3", "5"},
		{"2 + 3 * 4", "14"},
		{"(2 + 3) * 4", "20"},
		{"10 / 4", "2.5"},
		{"10 % 3", "1"},
		{"2 ^ 10", "1024"},
		{"2 ^ 3 ^ 2", "512"}, // right-associative
		{"-5 + 3", "-2"},
		{"-(2 + 3)", "-5"},
		{"3.5 * 2", "7"},
	}

	for _, tt := range tests {
		got, err := r.Execute(context.Background(), "calculator", map[string]any{"expression": tt.expr})
		if err != nil {
			t.Errorf("calculator(%q) failed: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("calculator(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestCalculatorErrors(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	for _, expr := range []string{"", "1 / 0", "2 +", "(1 + 2", "abc", "1 2"} {
		if _, err := r.Execute(context.Background(), "calculator", map[string]any{"expression": expr}); err == nil {
			t.Errorf("calculator(%q): expected error", expr)
		}
	}
}

func TestCurrentTime(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	out, err := r.Execute(context.Background(), "current_time", map[string]any{"timezone": "UTC"})
	if err != nil {
		t.Fatalf("current_time failed: %v", err)
	}
	if !strings.Contains(out, "UTC") {
		t.Errorf("expected UTC in output, got %q", out)
	}

	if _, err := r.Execute(context.Background(), "current_time", map[string]any{"timezone": "Not/AZone"}); err == nil {
		t.Error("expected error for bad timezone")
	}
}
