package agent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/llm"
	"github.com/dkoh12/agenticai/internal/memory"
	"github.com/dkoh12/agenticai/internal/tools"
)

// fakeClient returns scripted responses in order and records the
// message slices it was called with.
type fakeClient struct {
	responses []*llm.ChatResponse
	calls     [][]llm.Message
	err       error
}

func (f *fakeClient) Chat(ctx context.Context, model string, messages []llm.Message, toolSpecs []map[string]any) (*llm.ChatResponse, error) {
	f.calls = append(f.calls, append([]llm.Message(nil), messages...))
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return &llm.ChatResponse{Message: llm.Message{Role: "assistant"}, Done: true}, nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeClient) ChatStream(ctx context.Context, model string, messages []llm.Message, toolSpecs []map[string]any, cb llm.StreamCallback) (*llm.ChatResponse, error) {
	return f.Chat(ctx, model, messages, toolSpecs)
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func textResponse(content string) *llm.ChatResponse {
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: content}, Done: true}
}

func toolCallResponse(name string, args map[string]any) *llm.ChatResponse {
	return &llm.ChatResponse{
		Message: llm.Message{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{
				{Function: llm.FunctionCall{Name: name, Arguments: args}},
			},
		},
		Done: true,
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunPlainResponse(t *testing.T) {
	client := &fakeClient{responses: []*llm.ChatResponse{textResponse("hello there")}}
	loop := NewLoop(discard(), memory.NewStore(50), client, nil, "test-model")

	resp, err := loop.Run(context.Background(), &Request{
		Messages: []memory.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Content != "hello there" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Model != "test-model" {
		t.Errorf("model = %q, want default applied", resp.Model)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}
	if resp.RequestID == "" {
		t.Error("request ID not assigned")
	}

	// First message sent must be the system prompt.
	if len(client.calls) != 1 {
		t.Fatalf("LLM called %d times, want 1", len(client.calls))
	}
	if client.calls[0][0].Role != "system" {
		t.Errorf("first message role = %q, want system", client.calls[0][0].Role)
	}
}

func TestRunExecutesToolsAndLoops(t *testing.T) {
	registry := tools.NewRegistry()
	tools.RegisterBuiltins(registry)

	client := &fakeClient{responses: []*llm.ChatResponse{
		toolCallResponse("calculator", map[string]any{"expression": "6 * 7"}),
		textResponse("the answer is 42"),
	}}
	loop := NewLoop(discard(), memory.NewStore(50), client, registry, "test-model")

	resp, err := loop.Run(context.Background(), &Request{
		Messages: []memory.Message{{Role: "user", Content: "what is 6 times 7?"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Content != "the answer is 42" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.ToolCalls != 1 {
		t.Errorf("tool calls = %d, want 1", resp.ToolCalls)
	}

	// Second LLM call must include the tool result as a tool-role message.
	if len(client.calls) != 2 {
		t.Fatalf("LLM called %d times, want 2", len(client.calls))
	}
	second := client.calls[1]
	last := second[len(second)-1]
	if last.Role != "tool" || last.Content != "42" {
		t.Errorf("tool message = %+v, want role=tool content=42", last)
	}
}

func TestRunToolErrorFedBackToModel(t *testing.T) {
	registry := tools.NewRegistry()
	tools.RegisterBuiltins(registry)

	client := &fakeClient{responses: []*llm.ChatResponse{
		toolCallResponse("calculator", map[string]any{"expression": "1 / 0"}),
		textResponse("that division is undefined"),
	}}
	loop := NewLoop(discard(), memory.NewStore(50), client, registry, "test-model")

	resp, err := loop.Run(context.Background(), &Request{
		Messages: []memory.Message{{Role: "user", Content: "divide 1 by 0"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Content != "that division is undefined" {
		t.Errorf("content = %q", resp.Content)
	}
	second := client.calls[1]
	last := second[len(second)-1]
	if !strings.HasPrefix(last.Content, "Error:") {
		t.Errorf("tool failure message = %q, want Error: prefix", last.Content)
	}
}

func TestRunStopsAtIterationLimit(t *testing.T) {
	registry := tools.NewRegistry()
	tools.RegisterBuiltins(registry)

	// Every response asks for another tool call; the loop must bail out.
	var responses []*llm.ChatResponse
	for i := 0; i < maxToolIterations+2; i++ {
		responses = append(responses, toolCallResponse("current_time", map[string]any{}))
	}
	client := &fakeClient{responses: responses}
	loop := NewLoop(discard(), memory.NewStore(50), client, registry, "test-model")

	resp, err := loop.Run(context.Background(), &Request{
		Messages: []memory.Message{{Role: "user", Content: "loop forever"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.FinishReason != "tool_iterations_exhausted" {
		t.Errorf("finish reason = %q", resp.FinishReason)
	}
	if len(client.calls) != maxToolIterations {
		t.Errorf("LLM called %d times, want %d", len(client.calls), maxToolIterations)
	}
}

func TestRunRemembersConversation(t *testing.T) {
	client := &fakeClient{responses: []*llm.ChatResponse{
		textResponse("nice to meet you, Dana"),
		textResponse("your name is Dana"),
	}}
	mem := memory.NewStore(50)
	loop := NewLoop(discard(), mem, client, nil, "test-model")

	ctx := context.Background()
	if _, err := loop.Run(ctx, &Request{
		ConversationID: "c1",
		Messages:       []memory.Message{{Role: "user", Content: "my name is Dana"}},
	}); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := loop.Run(ctx, &Request{
		ConversationID: "c1",
		Messages:       []memory.Message{{Role: "user", Content: "what is my name?"}},
	}); err != nil {
		t.Fatalf("second Run: %v", err)
	}

	// The second call must carry the first exchange as history.
	second := client.calls[1]
	var sawIntro bool
	for _, m := range second {
		if m.Content == "my name is Dana" {
			sawIntro = true
		}
	}
	if !sawIntro {
		t.Errorf("second call missing history: %+v", second)
	}
}

func TestRunPublishesLifecycleEvents(t *testing.T) {
	bus := events.New()
	ch := bus.Subscribe(64)
	defer bus.Unsubscribe(ch)

	registry := tools.NewRegistry()
	tools.RegisterBuiltins(registry)
	client := &fakeClient{responses: []*llm.ChatResponse{
		toolCallResponse("current_time", map[string]any{}),
		textResponse("done"),
	}}
	loop := NewLoop(discard(), memory.NewStore(50), client, registry, "test-model", WithEventBus(bus))

	if _, err := loop.Run(context.Background(), &Request{
		Messages: []memory.Message{{Role: "user", Content: "what time is it?"}},
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	kinds := make(map[string]int)
drain:
	for {
		select {
		case e := <-ch:
			kinds[e.Kind]++
		default:
			break drain
		}
	}
	for _, want := range []string{
		events.KindRequestStart,
		events.KindLLMCall,
		events.KindLLMResponse,
		events.KindToolCall,
		events.KindToolDone,
		events.KindRequestComplete,
	} {
		if kinds[want] == 0 {
			t.Errorf("no %s event published (got %v)", want, kinds)
		}
	}
}

func TestRunLLMError(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("connection refused")}
	loop := NewLoop(discard(), memory.NewStore(50), client, nil, "test-model")

	if _, err := loop.Run(context.Background(), &Request{
		Messages: []memory.Message{{Role: "user", Content: "hi"}},
	}); err == nil {
		t.Fatal("expected error from failing client")
	}
}
