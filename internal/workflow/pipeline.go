package workflow

import (
	"context"
	"strings"

	"github.com/dkoh12/agenticai/internal/llm"
)

// maxRevisions bounds the review/revise loop in the pipeline workflow.
const maxRevisions = 2

// agentPrompts maps a task type to the specialist system prompt that
// handles it.
var agentPrompts = map[string]string{
	"creative":   "You are a creative writing assistant. Create engaging, imaginative content.",
	"technical":  "You are a technical expert. Provide accurate, detailed technical information and solutions.",
	"analytical": "You are a data analyst. Provide structured analysis with clear insights and conclusions.",
	"general":    "You are a helpful assistant. Provide clear, helpful responses to user questions.",
}

// NewPipelineWorkflow builds the routed multi-agent pipeline: classify
// the request, hand it to a specialist agent, review the result, and
// loop through revision until the reviewer approves or the revision
// budget runs out. State keys: input (caller), task_type, content,
// review_feedback, iterations, final_output.
func NewPipelineWorkflow(client llm.Client, model string) (*Runnable, error) {
	g := NewStateGraph()

	g.AddNode("classify", func(ctx context.Context, state State) (State, error) {
		input, _ := state["input"].(string)
		answer, err := ask(ctx, client, model,
			"Classify the user's request into one of these categories:\n"+
				"- 'creative': Creative writing, storytelling, poetry\n"+
				"- 'technical': Code, documentation, technical explanations\n"+
				"- 'analytical': Analysis, research, data interpretation\n"+
				"- 'general': General questions or other tasks\n\n"+
				"Respond with just the category name.",
			input,
		)
		if err != nil {
			return state, err
		}
		state["task_type"] = strings.ToLower(strings.TrimSpace(answer))
		state["iterations"] = 0
		return state, nil
	})

	for taskType, prompt := range agentPrompts {
		g.AddNode(taskType, func(ctx context.Context, state State) (State, error) {
			input, _ := state["input"].(string)
			content, err := ask(ctx, client, model, prompt, input)
			if err != nil {
				return state, err
			}
			state["content"] = content
			return state, nil
		})
		g.AddEdge(taskType, "review")
	}

	g.AddNode("review", func(ctx context.Context, state State) (State, error) {
		content, _ := state["content"].(string)
		feedback, err := ask(ctx, client, model,
			"You are a quality reviewer. Evaluate the content and provide feedback. "+
				"Rate the content on a scale of 1-10 and suggest improvements if needed. "+
				"If the score is 8 or above, respond with 'APPROVED'. "+
				"If below 8, provide specific feedback for improvement.",
			"Content to review: "+content,
		)
		if err != nil {
			return state, err
		}
		state["review_feedback"] = feedback
		state["iterations"] = stateInt(state, "iterations") + 1
		return state, nil
	})

	g.AddNode("revise", func(ctx context.Context, state State) (State, error) {
		content, _ := state["content"].(string)
		feedback, _ := state["review_feedback"].(string)
		revised, err := ask(ctx, client, model,
			"Revise the content based on the feedback provided. Improve quality and address the concerns.",
			"Original content: "+content+"\n\nFeedback: "+feedback+"\n\nProvide improved version:",
		)
		if err != nil {
			return state, err
		}
		state["content"] = revised
		return state, nil
	})

	g.AddNode("finalize", func(ctx context.Context, state State) (State, error) {
		state["final_output"] = state["content"]
		return state, nil
	})

	g.SetEntryPoint("classify")
	g.AddConditionalEdge("classify", func(ctx context.Context, state State) string {
		taskType, _ := state["task_type"].(string)
		if _, ok := agentPrompts[taskType]; ok {
			return taskType
		}
		return "general"
	})
	g.AddConditionalEdge("review", func(ctx context.Context, state State) string {
		feedback, _ := state["review_feedback"].(string)
		if strings.Contains(strings.ToLower(feedback), "approved") || stateInt(state, "iterations") >= maxRevisions {
			return "finalize"
		}
		return "revise"
	})
	g.AddEdge("revise", "review")
	g.AddEdge("finalize", END)

	return g.Compile()
}

func stateInt(state State, key string) int {
	switch v := state[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
