package mcp

import (
	"encoding/json"
	"testing"
)

func TestRequestMarshal(t *testing.T) {
	req := NewRequest(7, "tools/list", nil)
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["jsonrpc"] != "2.0" {
		t.Errorf("jsonrpc = %v", m["jsonrpc"])
	}
	if m["method"] != "tools/list" {
		t.Errorf("method = %v", m["method"])
	}
	if m["id"] != float64(7) {
		t.Errorf("id = %v", m["id"])
	}
	if _, ok := m["params"]; ok {
		t.Error("nil params should be omitted")
	}
}

func TestNotificationMarshal(t *testing.T) {
	notif := NewNotification("notifications/initialized", nil)
	data, err := json.Marshal(notif)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["id"]; ok {
		t.Error("notifications carry no id")
	}
	if _, ok := m["params"]; ok {
		t.Error("nil params should be omitted")
	}
	if m["method"] != "notifications/initialized" {
		t.Errorf("method = %v", m["method"])
	}
}

func TestResponseDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantID   int64
		wantErr  bool
		wantCode int
	}{
		{
			name:   "result",
			raw:    `{"jsonrpc":"2.0","id":1,"result":{"tools":[]}}`,
			wantID: 1,
		},
		{
			name:     "error object",
			raw:      `{"jsonrpc":"2.0","id":2,"error":{"code":-32601,"message":"Method not found"}}`,
			wantID:   2,
			wantErr:  true,
			wantCode: -32601,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp Response
			if err := json.Unmarshal([]byte(tt.raw), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.ID != tt.wantID {
				t.Errorf("ID = %d, want %d", resp.ID, tt.wantID)
			}
			if tt.wantErr {
				if resp.Error == nil {
					t.Fatal("Error is nil")
				}
				if resp.Error.Code != tt.wantCode {
					t.Errorf("Error.Code = %d, want %d", resp.Error.Code, tt.wantCode)
				}
			} else {
				if resp.Error != nil {
					t.Errorf("Error = %v, want nil", resp.Error)
				}
				if resp.Result == nil {
					t.Error("Result is nil")
				}
			}
		})
	}
}

func TestRPCErrorMessage(t *testing.T) {
	e := &RPCError{Code: -32600, Message: "Invalid Request"}
	if got, want := e.Error(), "rpc error -32600: Invalid Request"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
