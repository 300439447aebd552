// Package a2a implements agent-to-agent conversation patterns: two
// agents alternating turns, multi-agent group chat with a speaker
// selector, and a negotiation variant with its own termination rule.
// Every agent is the same underlying model with a different system
// prompt; the conversation transcript is re-framed per speaker so each
// agent sees its own messages as "assistant" and everyone else's as
// "user".
package a2a

import (
	"context"
	"fmt"
	"strings"

	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/llm"
)

// Agent is one conversation participant.
type Agent struct {
	Name         string
	SystemPrompt string
}

// Turn is one message in a conversation transcript.
type Turn struct {
	Round   int    `json:"round"`
	Agent   string `json:"agent"`
	Content string `json:"content"`
}

// Observer receives each turn as it is produced, so callers can print
// the conversation live.
type Observer func(Turn)

// Terminator decides whether a message ends the conversation.
type Terminator func(content string) bool

// TerminateMarker reports whether the message ends with the TERMINATE
// marker (case-insensitive, trailing whitespace ignored).
func TerminateMarker(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasSuffix(strings.ToUpper(trimmed), "TERMINATE")
}

// NegotiationDone reports whether a negotiation message signals an
// outcome: an explicit "deal" or "no deal", or the TERMINATE marker.
func NegotiationDone(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "deal") || TerminateMarker(content)
}

// Duet runs a two-agent conversation. A speaks first with the opening
// message; agents then alternate until the terminator fires or
// MaxRounds replies have been produced.
type Duet struct {
	Client    llm.Client
	Model     string
	A, B      Agent
	MaxRounds int
	Terminate Terminator
	Observer  Observer
	Bus       *events.Bus
}

// Run executes the conversation and returns the full transcript,
// including the opening message.
func (d *Duet) Run(ctx context.Context, opening string) ([]Turn, error) {
	if d.MaxRounds <= 0 {
		d.MaxRounds = 10
	}
	terminate := d.Terminate
	if terminate == nil {
		terminate = TerminateMarker
	}

	turns := []Turn{{Round: 0, Agent: d.A.Name, Content: opening}}
	d.emit(turns[0])

	speakers := [2]Agent{d.B, d.A}
	terminated := false
	for round := 1; round <= d.MaxRounds; round++ {
		speaker := speakers[(round-1)%2]
		content, err := reply(ctx, d.Client, d.Model, speaker, turns)
		if err != nil {
			return turns, fmt.Errorf("%s turn %d: %w", speaker.Name, round, err)
		}

		turn := Turn{Round: round, Agent: speaker.Name, Content: content}
		turns = append(turns, turn)
		d.emit(turn)

		if terminate(content) {
			terminated = true
			break
		}
	}

	d.Bus.Publish(events.Event{
		Source: events.SourceA2A,
		Kind:   events.KindConversationDone,
		Data:   map[string]any{"rounds": len(turns) - 1, "terminated": terminated},
	})
	return turns, nil
}

func (d *Duet) emit(t Turn) {
	if d.Observer != nil {
		d.Observer(t)
	}
	d.Bus.Publish(events.Event{
		Source: events.SourceA2A,
		Kind:   events.KindTurn,
		Data:   map[string]any{"agent": t.Agent, "round": t.Round, "message_len": len(t.Content)},
	})
}

// NewNegotiation builds a Duet between a buyer and a seller that ends
// when either side declares a deal (or no deal).
func NewNegotiation(client llm.Client, model string, buyer, seller Agent) *Duet {
	return &Duet{
		Client:    client,
		Model:     model,
		A:         buyer,
		B:         seller,
		MaxRounds: 10,
		Terminate: NegotiationDone,
	}
}

// GroupChat runs a conversation between several agents. After each
// turn the manager asks the model which agent should speak next; if
// the answer cannot be matched to a participant, selection falls back
// to round-robin.
type GroupChat struct {
	Client    llm.Client
	Model     string
	Agents    []Agent
	MaxRounds int
	Terminate Terminator
	Observer  Observer
	Bus       *events.Bus
}

// Run executes the group chat starting from the given task message and
// returns the transcript.
func (g *GroupChat) Run(ctx context.Context, task string) ([]Turn, error) {
	if len(g.Agents) < 2 {
		return nil, fmt.Errorf("group chat needs at least 2 agents, got %d", len(g.Agents))
	}
	if g.MaxRounds <= 0 {
		g.MaxRounds = 12
	}
	terminate := g.Terminate
	if terminate == nil {
		terminate = TerminateMarker
	}

	turns := []Turn{{Round: 0, Agent: "user", Content: task}}
	g.emit(turns[0])

	terminated := false
	lastIdx := -1
	for round := 1; round <= g.MaxRounds; round++ {
		idx := g.selectSpeaker(ctx, turns, lastIdx)
		speaker := g.Agents[idx]
		lastIdx = idx

		content, err := reply(ctx, g.Client, g.Model, speaker, turns)
		if err != nil {
			return turns, fmt.Errorf("%s turn %d: %w", speaker.Name, round, err)
		}

		turn := Turn{Round: round, Agent: speaker.Name, Content: content}
		turns = append(turns, turn)
		g.emit(turn)

		if terminate(content) {
			terminated = true
			break
		}
	}

	g.Bus.Publish(events.Event{
		Source: events.SourceA2A,
		Kind:   events.KindConversationDone,
		Data:   map[string]any{"rounds": len(turns) - 1, "terminated": terminated},
	})
	return turns, nil
}

// selectSpeaker asks the model to name the next speaker. Any failure
// or unrecognized answer falls back to round-robin after lastIdx.
func (g *GroupChat) selectSpeaker(ctx context.Context, turns []Turn, lastIdx int) int {
	names := make([]string, len(g.Agents))
	for i, a := range g.Agents {
		names[i] = a.Name
	}

	var b strings.Builder
	b.WriteString("You are coordinating a conversation between these participants:\n")
	for _, a := range g.Agents {
		fmt.Fprintf(&b, "- %s: %s\n", a.Name, firstLine(a.SystemPrompt))
	}
	b.WriteString("\nConversation so far:\n")
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Agent, t.Content)
	}
	fmt.Fprintf(&b, "\nWho should speak next? Respond with exactly one name from: %s", strings.Join(names, ", "))

	resp, err := g.Client.Chat(ctx, g.Model, []llm.Message{
		{Role: "system", Content: "You select the next speaker in a group conversation. Respond with only a name."},
		{Role: "user", Content: b.String()},
	}, nil)
	if err == nil {
		answer := strings.ToLower(resp.Message.Content)
		for i, a := range g.Agents {
			if strings.Contains(answer, strings.ToLower(a.Name)) {
				return i
			}
		}
	}
	return (lastIdx + 1) % len(g.Agents)
}

func (g *GroupChat) emit(t Turn) {
	if g.Observer != nil {
		g.Observer(t)
	}
	g.Bus.Publish(events.Event{
		Source: events.SourceA2A,
		Kind:   events.KindTurn,
		Data:   map[string]any{"agent": t.Agent, "round": t.Round, "message_len": len(t.Content)},
	})
}

// reply asks one agent for its next message given the transcript. The
// agent's own prior turns become assistant messages; everything else
// becomes user messages attributed by name.
func reply(ctx context.Context, client llm.Client, model string, speaker Agent, turns []Turn) (string, error) {
	messages := make([]llm.Message, 0, len(turns)+1)
	messages = append(messages, llm.Message{Role: "system", Content: speaker.SystemPrompt})
	for _, t := range turns {
		if t.Agent == speaker.Name {
			messages = append(messages, llm.Message{Role: "assistant", Content: t.Content})
		} else {
			messages = append(messages, llm.Message{
				Role:    "user",
				Content: fmt.Sprintf("%s: %s", t.Agent, t.Content),
			})
		}
	}

	resp, err := client.Chat(ctx, model, messages, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
