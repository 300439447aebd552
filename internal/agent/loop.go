// Package agent implements the core agent loop: assemble context from
// memory, call the model, execute any requested tools, and loop until
// the model produces a final answer.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/llm"
	"github.com/dkoh12/agenticai/internal/memory"
	"github.com/dkoh12/agenticai/internal/tools"
)

// maxToolIterations bounds how many model/tool round trips a single
// request may take before we give up and return what we have.
const maxToolIterations = 5

// Request represents an incoming agent request.
type Request struct {
	Messages       []memory.Message `json:"messages"`
	Model          string           `json:"model,omitempty"`
	ConversationID string           `json:"conversation_id,omitempty"`
}

// Response represents the agent's response.
type Response struct {
	RequestID    string `json:"request_id"`
	Content      string `json:"content"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	ToolCalls    int    `json:"tool_calls"`
}

// Loop is the core agent execution loop.
type Loop struct {
	logger       *slog.Logger
	memory       memory.MemoryStore
	llm          llm.Client
	registry     *tools.Registry
	bus          *events.Bus
	model        string
	systemPrompt string
}

// Option configures a Loop.
type Option func(*Loop)

// WithSystemPrompt overrides the default system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(l *Loop) { l.systemPrompt = prompt }
}

// WithEventBus attaches an event bus for request lifecycle events.
func WithEventBus(bus *events.Bus) Option {
	return func(l *Loop) { l.bus = bus }
}

// DefaultSystemPrompt is used when no prompt override is configured.
const DefaultSystemPrompt = "You are a helpful AI assistant. " +
	"Use the available tools when they help you answer accurately. " +
	"Be concise."

// NewLoop creates a new agent loop.
func NewLoop(logger *slog.Logger, mem memory.MemoryStore, client llm.Client, registry *tools.Registry, defaultModel string, opts ...Option) *Loop {
	l := &Loop{
		logger:       logger,
		memory:       mem,
		llm:          client,
		registry:     registry,
		model:        defaultModel,
		systemPrompt: DefaultSystemPrompt,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes one iteration of the agent loop:
//  1. Assemble context (system prompt + stored history + request)
//  2. Call the model with the tool catalog
//  3. Execute requested tools and feed results back
//  4. Repeat until the model answers in plain text
//  5. Store the exchange in memory
func (l *Loop) Run(ctx context.Context, req *Request) (*Response, error) {
	convID := req.ConversationID
	if convID == "" {
		convID = "default"
	}
	requestID := uuid.NewString()

	logger := l.logger.With("request_id", requestID, "conversation", convID)
	logger.Info("agent loop started", "messages", len(req.Messages), "model", req.Model)
	l.publish(events.KindRequestStart, map[string]any{
		"request_id":   requestID,
		"conversation": convID,
	})

	history := l.memory.GetMessages(convID)
	logger.Debug("loaded history", "count", len(history))

	messages := make([]llm.Message, 0, len(history)+len(req.Messages)+1)
	messages = append(messages, llm.Message{Role: "system", Content: l.systemPrompt})
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	for _, m := range req.Messages {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
		if err := l.memory.AddMessage(convID, m.Role, m.Content); err != nil {
			return nil, fmt.Errorf("store message: %w", err)
		}
	}

	model := req.Model
	if model == "" {
		model = l.model
	}

	var toolSpecs []map[string]any
	if l.registry != nil {
		toolSpecs = l.registry.List()
	}

	toolCalls := 0
	var final *llm.ChatResponse
	for iter := 0; iter < maxToolIterations; iter++ {
		logger.Info("calling LLM", "model", model, "messages", len(messages), "iteration", iter)
		l.publish(events.KindLLMCall, map[string]any{
			"request_id": requestID,
			"model":      model,
			"iteration":  iter,
		})

		resp, err := l.llm.Chat(ctx, model, messages, toolSpecs)
		if err != nil {
			logger.Error("LLM call failed", "error", err)
			return nil, err
		}
		l.publish(events.KindLLMResponse, map[string]any{
			"request_id": requestID,
			"tool_calls": len(resp.Message.ToolCalls),
		})

		if len(resp.Message.ToolCalls) == 0 {
			final = resp
			break
		}

		messages = append(messages, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			toolCalls++
			result := l.executeTool(ctx, logger, requestID, call)
			messages = append(messages, llm.Message{Role: "tool", Content: result})
		}
	}

	finishReason := "stop"
	content := ""
	if final != nil {
		content = final.Message.Content
	} else {
		finishReason = "tool_iterations_exhausted"
		logger.Warn("tool iteration limit reached", "limit", maxToolIterations)
	}

	if err := l.memory.AddMessage(convID, "assistant", content); err != nil {
		return nil, fmt.Errorf("store response: %w", err)
	}

	logger.Info("agent loop completed", "tool_calls", toolCalls, "finish_reason", finishReason)
	l.publish(events.KindRequestComplete, map[string]any{
		"request_id": requestID,
		"tool_calls": toolCalls,
	})

	return &Response{
		RequestID:    requestID,
		Content:      content,
		Model:        model,
		FinishReason: finishReason,
		ToolCalls:    toolCalls,
	}, nil
}

// executeTool runs a single tool call and returns the text the model
// should see, substituting an error message on failure so the loop can
// keep going.
func (l *Loop) executeTool(ctx context.Context, logger *slog.Logger, requestID string, call llm.ToolCall) string {
	name := call.Function.Name
	logger.Info("executing tool", "tool", name, "args", call.Function.Arguments)
	l.publish(events.KindToolCall, map[string]any{
		"request_id": requestID,
		"tool":       name,
	})

	result, err := l.registry.Execute(ctx, name, call.Function.Arguments)
	if err != nil {
		logger.Warn("tool failed", "tool", name, "error", err)
		result = fmt.Sprintf("Error: %v", err)
	}

	l.publish(events.KindToolDone, map[string]any{
		"request_id": requestID,
		"tool":       name,
		"error":      err != nil,
	})
	return result
}

func (l *Loop) publish(kind string, data map[string]any) {
	l.bus.Publish(events.Event{Source: events.SourceAgent, Kind: kind, Data: data})
}

// MemoryStats returns current memory statistics.
func (l *Loop) MemoryStats() map[string]any {
	return l.memory.Stats()
}
