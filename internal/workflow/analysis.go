package workflow

import (
	"context"
	"strings"

	"github.com/dkoh12/agenticai/internal/llm"
)

// NewAnalysisWorkflow builds the two-step problem analysis workflow:
// analyze the problem, then turn the analysis into recommendations.
// State keys: input (caller), analysis, recommendation, current_step.
func NewAnalysisWorkflow(client llm.Client, model string) (*Runnable, error) {
	g := NewStateGraph()

	g.AddNode("analyze", func(ctx context.Context, state State) (State, error) {
		input, _ := state["input"].(string)
		analysis, err := ask(ctx, client, model,
			"You are an expert analyst. Analyze the given problem and provide a structured analysis.",
			input,
		)
		if err != nil {
			return state, err
		}
		state["analysis"] = analysis
		state["current_step"] = "analysis_complete"
		return state, nil
	})

	g.AddNode("recommend", func(ctx context.Context, state State) (State, error) {
		analysis, _ := state["analysis"].(string)
		recommendation, err := ask(ctx, client, model,
			"Based on the analysis provided, generate practical recommendations and next steps.",
			"Analysis: "+analysis+"\n\nProvide 3-5 concrete recommendations.",
		)
		if err != nil {
			return state, err
		}
		state["recommendation"] = recommendation
		state["current_step"] = "recommendation_complete"
		return state, nil
	})

	g.SetEntryPoint("analyze")
	g.AddEdge("analyze", "recommend")
	g.AddEdge("recommend", END)

	return g.Compile()
}

// ask is the single-turn system+user call the workflow nodes share.
func ask(ctx context.Context, client llm.Client, model, system, user string) (string, error) {
	resp, err := client.Chat(ctx, model, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}
