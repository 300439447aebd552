// Package chain composes a prompt template with a model into a simple
// prompt -> LLM -> text chain.
package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/prompts"
)

// Topics are the default demo topics for the chain subcommand.
var Topics = []string{"machine learning", "blockchain", "quantum computing"}

const explainTemplate = "You are a helpful assistant that explains concepts clearly.\n\n" +
	"Explain {{.topic}} in simple terms with an example."

// Explainer renders the explanation prompt for a topic and runs it
// through the model.
type Explainer struct {
	model  llms.Model
	prompt prompts.PromptTemplate
}

// New connects to an Ollama server and builds an Explainer for the
// given model.
func New(serverURL, model string) (*Explainer, error) {
	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("chain: connect ollama: %w", err)
	}
	return NewWithModel(llm), nil
}

// NewWithModel builds an Explainer on an existing model.
func NewWithModel(model llms.Model) *Explainer {
	return &Explainer{
		model:  model,
		prompt: prompts.NewPromptTemplate(explainTemplate, []string{"topic"}),
	}
}

// Explain runs the chain for one topic and returns the explanation.
func (e *Explainer) Explain(ctx context.Context, topic string) (string, error) {
	prompt, err := e.prompt.Format(map[string]any{"topic": topic})
	if err != nil {
		return "", fmt.Errorf("chain: format prompt: %w", err)
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, e.model, prompt, llms.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("chain: generate: %w", err)
	}
	return strings.TrimSpace(out), nil
}
