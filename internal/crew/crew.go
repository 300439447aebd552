// Package crew implements role/task orchestration: agents with a role,
// goal, and backstory execute a sequence of tasks, and each task sees
// the outputs of the tasks before it.
package crew

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/llm"
)

// Agent is a persona that executes tasks.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
}

// Task is one unit of work assigned to an agent.
type Task struct {
	Description    string
	ExpectedOutput string
	Agent          Agent
}

// TaskResult is the output of one executed task.
type TaskResult struct {
	Agent  string `json:"agent"`
	Task   string `json:"task"`
	Output string `json:"output"`
}

// Result is the outcome of a full crew run. Final is the last task's
// output.
type Result struct {
	TaskResults []TaskResult `json:"task_results"`
	Final       string       `json:"final"`
}

// Crew executes its tasks sequentially, feeding each task the outputs
// of the tasks that came before it.
type Crew struct {
	Client   llm.Client
	Model    string
	Tasks    []Task
	Observer func(TaskResult)
	Bus      *events.Bus
}

// Kickoff runs every task in order and returns the collected outputs.
func (c *Crew) Kickoff(ctx context.Context) (*Result, error) {
	if len(c.Tasks) == 0 {
		return nil, fmt.Errorf("crew has no tasks")
	}

	result := &Result{}
	for i, task := range c.Tasks {
		c.Bus.Publish(events.Event{
			Source: events.SourceCrew,
			Kind:   events.KindTaskStart,
			Data:   map[string]any{"agent": task.Agent.Role, "task": taskLabel(task, i)},
		})
		started := time.Now()

		output, err := c.executeTask(ctx, task, result.TaskResults)
		c.Bus.Publish(events.Event{
			Source: events.SourceCrew,
			Kind:   events.KindTaskComplete,
			Data: map[string]any{
				"agent":       task.Agent.Role,
				"task":        taskLabel(task, i),
				"ok":          err == nil,
				"duration_ms": time.Since(started).Milliseconds(),
			},
		})
		if err != nil {
			return result, fmt.Errorf("task %d (%s): %w", i+1, task.Agent.Role, err)
		}

		tr := TaskResult{Agent: task.Agent.Role, Task: taskLabel(task, i), Output: output}
		result.TaskResults = append(result.TaskResults, tr)
		if c.Observer != nil {
			c.Observer(tr)
		}
	}

	result.Final = result.TaskResults[len(result.TaskResults)-1].Output
	return result, nil
}

func (c *Crew) executeTask(ctx context.Context, task Task, prior []TaskResult) (string, error) {
	system := fmt.Sprintf(
		"You are %s. Your goal: %s.\nBackstory: %s\nComplete the assigned task thoroughly. Expected output: %s",
		task.Agent.Role, task.Agent.Goal, task.Agent.Backstory, task.ExpectedOutput,
	)

	var user strings.Builder
	if len(prior) > 0 {
		user.WriteString("Context from earlier tasks:\n\n")
		for _, p := range prior {
			fmt.Fprintf(&user, "--- %s ---\n%s\n\n", p.Agent, p.Output)
		}
		user.WriteString("Your task:\n")
	}
	user.WriteString(task.Description)

	resp, err := c.Client.Chat(ctx, c.Model, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user.String()},
	}, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

// taskLabel is a short identifier for events and results: the first
// line of the description, truncated.
func taskLabel(t Task, i int) string {
	line := t.Description
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > 60 {
		line = line[:60]
	}
	if line == "" {
		return fmt.Sprintf("task-%d", i+1)
	}
	return line
}

// NewContentCrew builds the researcher → writer → reviewer pipeline
// for producing a short article about a topic.
func NewContentCrew(client llm.Client, model, topic string) *Crew {
	researcher := Agent{
		Role:      "AI Research Specialist",
		Goal:      "Research and provide accurate information about " + topic,
		Backstory: "You are an experienced researcher who digs up key facts, recent developments, and concrete examples.",
	}
	writer := Agent{
		Role:      "Tech Content Writer",
		Goal:      "Create engaging and accessible content about technology",
		Backstory: "You turn technical research into clear, compelling prose for a general audience.",
	}
	critic := Agent{
		Role:      "Content Quality Reviewer",
		Goal:      "Ensure content meets high standards for accuracy and engagement",
		Backstory: "You are a meticulous editor who checks facts, flow, and clarity before anything ships.",
	}

	return &Crew{
		Client: client,
		Model:  model,
		Tasks: []Task{
			{
				Description:    fmt.Sprintf("Research the current state of %s. Cover key developments, real-world applications, and notable challenges.", topic),
				ExpectedOutput: "Comprehensive research summary with key findings and real-world examples",
				Agent:          researcher,
			},
			{
				Description:    fmt.Sprintf("Using the research provided, write a compelling 200-word article about %s for a general audience.", topic),
				ExpectedOutput: "Well-written 200-word article",
				Agent:          writer,
			},
			{
				Description:    "Review the article for accuracy, engagement, and clarity. Give specific feedback and a final approved version.",
				ExpectedOutput: "Detailed review with specific feedback and final approval",
				Agent:          critic,
			},
		},
	}
}

// NewDebateCrew builds a two-advocate debate with a moderator task
// that synthesizes a compromise.
func NewDebateCrew(client llm.Client, model string) *Crew {
	remote := Agent{
		Role: "Remote Work Advocate",
		Goal: "Argue for the benefits of remote work arrangements",
		Backstory: "You are Sarah, a tech worker who has thrived in remote work. " +
			"You believe remote work increases productivity, improves work-life balance, " +
			"and opens up global talent pools. You have data to support your arguments.",
	}
	office := Agent{
		Role: "Office Work Advocate",
		Goal: "Argue for the benefits of in-person office work",
		Backstory: "You are Mike, a manager who values face-to-face collaboration. " +
			"You believe office work improves communication, builds stronger teams, " +
			"and enables better mentorship. You've seen productivity issues with remote work.",
	}
	moderator := Agent{
		Role:      "Debate Moderator",
		Goal:      "Identify common ground and produce a compromise both sides accept",
		Backstory: "You are a neutral facilitator skilled at finding shared values in opposing positions.",
	}

	return &Crew{
		Client: client,
		Model:  model,
		Tasks: []Task{
			{
				Description:    "Present 3 strong, fact-based arguments for remote work.",
				ExpectedOutput: "Three professional arguments for remote work",
				Agent:          remote,
			},
			{
				Description:    "Counter the remote work arguments with 3 arguments for office work. Keep it professional and fact-based.",
				ExpectedOutput: "Three professional counter-arguments for office work",
				Agent:          office,
			},
			{
				Description:    "Review both positions, identify common ground, and propose a compromise solution both sides can accept.",
				ExpectedOutput: "A compromise solution both sides agree on",
				Agent:          moderator,
			},
		},
	}
}
