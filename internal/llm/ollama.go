package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dkoh12/agenticai/internal/httpkit"
)

// OllamaClient speaks the native Ollama HTTP API on a local server.
type OllamaClient struct {
	baseURL     string
	temperature float64
	httpClient  *http.Client
	logger      *slog.Logger
}

// OllamaOption configures an OllamaClient.
type OllamaOption func(*OllamaClient)

// WithTemperature sets the sampling temperature sent with every
// request. Zero means the server default.
func WithTemperature(t float64) OllamaOption {
	return func(c *OllamaClient) { c.temperature = t }
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) OllamaOption {
	return func(c *OllamaClient) { c.httpClient = h }
}

// WithOllamaLogger sets a logger for wire-level trace output.
func WithOllamaLogger(l *slog.Logger) OllamaOption {
	return func(c *OllamaClient) { c.logger = l }
}

// NewOllamaClient builds a client for the server at baseURL, default
// http://localhost:11434.
func NewOllamaClient(baseURL string, opts ...OllamaOption) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	c := &OllamaClient{baseURL: strings.TrimRight(baseURL, "/")}
	for _, o := range opts {
		o(c)
	}
	if c.httpClient == nil {
		// Large models with tools need time; retry covers the window
		// where the server is restarting or still loading weights.
		c.httpClient = httpkit.NewClient(
			httpkit.WithTimeout(5*time.Minute),
			httpkit.WithRetry(2, time.Second),
		)
	}
	return c
}

// ChatRequest is the /api/chat payload.
type ChatRequest struct {
	Model    string           `json:"model"`
	Messages []Message        `json:"messages"`
	Stream   bool             `json:"stream"`
	Tools    []map[string]any `json:"tools,omitempty"`
	Options  *Options         `json:"options,omitempty"`
}

// Options are per-request model parameters.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ChatResponse is an /api/chat reply, or one chunk of a streamed one.
// The duration and eval fields are populated when Done is true.
type ChatResponse struct {
	Model     string  `json:"model"`
	CreatedAt string  `json:"created_at"`
	Message   Message `json:"message"`
	Done      bool    `json:"done"`

	TotalDuration      int64 `json:"total_duration,omitempty"`
	LoadDuration       int64 `json:"load_duration,omitempty"`
	PromptEvalCount    int   `json:"prompt_eval_count,omitempty"`
	PromptEvalDuration int64 `json:"prompt_eval_duration,omitempty"`
	EvalCount          int   `json:"eval_count,omitempty"`
	EvalDuration       int64 `json:"eval_duration,omitempty"`
}

// Chat runs one non-streaming completion.
func (c *OllamaClient) Chat(ctx context.Context, model string, messages []Message, tools []map[string]any) (*ChatResponse, error) {
	return c.ChatStream(ctx, model, messages, tools, nil)
}

// ChatStream runs a completion, streaming tokens to callback when one
// is given.
func (c *OllamaClient) ChatStream(ctx context.Context, model string, messages []Message, tools []map[string]any, callback StreamCallback) (*ChatResponse, error) {
	req := ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   callback != nil,
		Tools:    tools,
	}
	if c.temperature != 0 {
		req.Options = &Options{Temperature: c.temperature}
	}

	body, err := c.postChat(ctx, req)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp *ChatResponse
	if callback == nil {
		resp = &ChatResponse{}
		if err := json.NewDecoder(body).Decode(resp); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	} else {
		if resp, err = collectStream(body, callback); err != nil {
			return nil, err
		}
	}

	recoverTextToolCalls(resp)
	return resp, nil
}

// postChat sends the request and returns the response body after
// checking the status. Caller closes the body.
func (c *OllamaClient) postChat(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	if c.logger != nil {
		c.logger.Log(ctx, LevelTrace, "ollama request", "payload", string(payload))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 4096))
	}
	return resp.Body, nil
}

// collectStream reads the newline-delimited chunks of a streamed
// completion, forwarding tokens and assembling the final response.
// Tool calls arrive on the last content-bearing chunk, which may come
// before the Done chunk.
func collectStream(body io.Reader, callback StreamCallback) (*ChatResponse, error) {
	var (
		content   strings.Builder
		toolCalls []ToolCall
		dec       = json.NewDecoder(body)
	)

	for {
		var chunk ChatResponse
		if err := dec.Decode(&chunk); err != nil {
			if err == io.EOF {
				// Stream ended without a Done chunk; keep what arrived.
				return &ChatResponse{Message: Message{Content: content.String(), ToolCalls: toolCalls}}, nil
			}
			return nil, fmt.Errorf("decode stream chunk: %w", err)
		}

		if chunk.Message.Content != "" {
			content.WriteString(chunk.Message.Content)
			callback(chunk.Message.Content)
		}
		if len(chunk.Message.ToolCalls) > 0 {
			toolCalls = chunk.Message.ToolCalls
		}

		if chunk.Done {
			chunk.Message.Content = content.String()
			if len(chunk.Message.ToolCalls) == 0 {
				chunk.Message.ToolCalls = toolCalls
			}
			return &chunk, nil
		}
	}
}

// recoverTextToolCalls promotes tool calls a model emitted as content
// text into the native tool_calls field.
func recoverTextToolCalls(resp *ChatResponse) {
	if len(resp.Message.ToolCalls) > 0 || resp.Message.Content == "" {
		return
	}
	if parsed := parseTextToolCalls(resp.Message.Content); len(parsed) > 0 {
		resp.Message.ToolCalls = parsed
		resp.Message.Content = "" // the content was the tool call itself
	}
}

// parseTextToolCalls pulls tool calls out of content text. Smaller
// models often print the call as JSON instead of using the native
// field. Handled shapes:
//   - {"name": "...", "arguments": {...}}
//   - [{"name": "...", "arguments": {...}}, ...]
//   - <tool_call>...</tool_call> wrapping either of the above
func parseTextToolCalls(content string) []ToolCall {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	if i := strings.Index(content, "<tool_call>"); i != -1 {
		content = content[i+len("<tool_call>"):]
		if j := strings.Index(content, "</tool_call>"); j != -1 {
			content = content[:j]
		}
		content = strings.TrimSpace(content)
	}

	var many []FunctionCall
	if err := json.Unmarshal([]byte(content), &many); err == nil && len(many) > 0 && many[0].Name != "" {
		out := make([]ToolCall, len(many))
		for i, fc := range many {
			out[i].Function = fc
		}
		return out
	}

	var one FunctionCall
	if err := json.Unmarshal([]byte(content), &one); err == nil && one.Name != "" {
		return []ToolCall{{Function: one}}
	}
	return nil
}

// Ping checks that the server answers at all.
func (c *OllamaClient) Ping(ctx context.Context) error {
	resp, err := c.getTags(ctx)
	if err != nil {
		return err
	}
	defer httpkit.DrainAndClose(resp.Body, 4096)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error %d", resp.StatusCode)
	}
	return nil
}

// ListModels returns the model names installed on the server.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.getTags(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, httpkit.ReadErrorBody(resp.Body, 4096))
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	names := make([]string, len(tags.Models))
	for i, m := range tags.Models {
		names[i] = m.Name
	}
	return names, nil
}

func (c *OllamaClient) getTags(ctx context.Context) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}
