package a2a

import (
	"context"
	"fmt"
	"testing"

	"github.com/dkoh12/agenticai/internal/events"
	"github.com/dkoh12/agenticai/internal/llm"
)

// scriptedClient returns canned responses in order.
type scriptedClient struct {
	responses []string
	calls     [][]llm.Message
	err       error
}

func (s *scriptedClient) Chat(ctx context.Context, model string, messages []llm.Message, toolSpecs []map[string]any) (*llm.ChatResponse, error) {
	s.calls = append(s.calls, append([]llm.Message(nil), messages...))
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: "..."}, Done: true}, nil
	}
	content := s.responses[0]
	s.responses = s.responses[1:]
	return &llm.ChatResponse{Message: llm.Message{Role: "assistant", Content: content}, Done: true}, nil
}

func (s *scriptedClient) ChatStream(ctx context.Context, model string, messages []llm.Message, toolSpecs []map[string]any, cb llm.StreamCallback) (*llm.ChatResponse, error) {
	return s.Chat(ctx, model, messages, toolSpecs)
}

func (s *scriptedClient) Ping(ctx context.Context) error { return nil }

func TestTerminateMarker(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"All done. TERMINATE", true},
		{"All done. terminate", true},
		{"All done. TERMINATE  \n", true},
		{"TERMINATE early, then more text", false},
		{"not finished yet", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := TerminateMarker(tc.content); got != tc.want {
			t.Errorf("TerminateMarker(%q) = %v, want %v", tc.content, got, tc.want)
		}
	}
}

func TestNegotiationDone(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"OK, $450 and you have a Deal!", true},
		{"No deal, that's too low.", true},
		{"Let me think. TERMINATE", true},
		{"I can go down to $480.", false},
	}
	for _, tc := range cases {
		if got := NegotiationDone(tc.content); got != tc.want {
			t.Errorf("NegotiationDone(%q) = %v, want %v", tc.content, got, tc.want)
		}
	}
}

func TestDuetAlternatesAndTerminates(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Interesting angle, but tighten the middle section.",
		"Revised draft attached. TERMINATE",
	}}
	d := &Duet{
		Client:    client,
		Model:     "test-model",
		A:         Agent{Name: "Writer", SystemPrompt: "You write articles."},
		B:         Agent{Name: "Critic", SystemPrompt: "You critique articles."},
		MaxRounds: 6,
	}

	turns, err := d.Run(context.Background(), "Here is my first draft about renewable energy.")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("turns = %d, want 3", len(turns))
	}
	if turns[0].Agent != "Writer" || turns[1].Agent != "Critic" || turns[2].Agent != "Writer" {
		t.Errorf("speaker order = %s, %s, %s", turns[0].Agent, turns[1].Agent, turns[2].Agent)
	}

	// Critic's view of round 1: its system prompt, then the opening as
	// a user message attributed to Writer.
	first := client.calls[0]
	if first[0].Role != "system" || first[0].Content != "You critique articles." {
		t.Errorf("system message = %+v", first[0])
	}
	if first[1].Role != "user" || first[1].Content != "Writer: Here is my first draft about renewable energy." {
		t.Errorf("opening framing = %+v", first[1])
	}

	// Writer's view of round 2: its own opening is an assistant message.
	second := client.calls[1]
	if second[1].Role != "assistant" {
		t.Errorf("writer sees own message as %q, want assistant", second[1].Role)
	}
}

func TestDuetStopsAtMaxRounds(t *testing.T) {
	client := &scriptedClient{} // never terminates
	d := &Duet{
		Client:    client,
		Model:     "test-model",
		A:         Agent{Name: "A"},
		B:         Agent{Name: "B"},
		MaxRounds: 4,
	}
	turns, err := d.Run(context.Background(), "go")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(turns) != 5 { // opening + 4 replies
		t.Errorf("turns = %d, want 5", len(turns))
	}
}

func TestDuetObserverAndEvents(t *testing.T) {
	bus := events.New()
	ch := bus.Subscribe(64)
	defer bus.Unsubscribe(ch)

	var observed []string
	client := &scriptedClient{responses: []string{"done. TERMINATE"}}
	d := &Duet{
		Client:    client,
		Model:     "test-model",
		A:         Agent{Name: "A"},
		B:         Agent{Name: "B"},
		MaxRounds: 4,
		Observer:  func(t Turn) { observed = append(observed, t.Agent) },
		Bus:       bus,
	}
	if _, err := d.Run(context.Background(), "go"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(observed) != 2 || observed[0] != "A" || observed[1] != "B" {
		t.Errorf("observed = %v", observed)
	}

	var turnEvents, doneEvents int
drain:
	for {
		select {
		case e := <-ch:
			switch e.Kind {
			case events.KindTurn:
				turnEvents++
			case events.KindConversationDone:
				doneEvents++
			}
		default:
			break drain
		}
	}
	if turnEvents != 2 || doneEvents != 1 {
		t.Errorf("turn events = %d, done events = %d", turnEvents, doneEvents)
	}
}

func TestNegotiationTerminatesOnDeal(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"I can offer $450 with a free case.",
		"Deal! $450 works for me.",
	}}
	d := NewNegotiation(client, "test-model",
		Agent{Name: "Buyer", SystemPrompt: "You want a laptop under $500."},
		Agent{Name: "Seller", SystemPrompt: "You sell laptops starting at $600."},
	)
	turns, err := d.Run(context.Background(), "I'd like to buy this laptop, but $600 is too much.")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("turns = %d, want 3 (opening, counter, deal)", len(turns))
	}
	if turns[2].Content != "Deal! $450 works for me." {
		t.Errorf("final turn = %q", turns[2].Content)
	}
}

func TestGroupChatSelectsSpeakersByName(t *testing.T) {
	// Responses alternate: speaker selection, then the selected
	// agent's reply.
	client := &scriptedClient{responses: []string{
		"Researcher",
		"Solar adoption grew 24% last year.",
		"Writer",
		"Drafted the article with those figures. TERMINATE",
	}}
	g := &GroupChat{
		Client: client,
		Model:  "test-model",
		Agents: []Agent{
			{Name: "Researcher", SystemPrompt: "You find facts."},
			{Name: "Writer", SystemPrompt: "You write articles."},
			{Name: "Editor", SystemPrompt: "You edit articles."},
		},
		MaxRounds: 8,
	}
	turns, err := g.Run(context.Background(), "Create a short article about solar energy.")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("turns = %d, want 3", len(turns))
	}
	if turns[1].Agent != "Researcher" || turns[2].Agent != "Writer" {
		t.Errorf("speakers = %s, %s", turns[1].Agent, turns[2].Agent)
	}
}

func TestGroupChatRoundRobinFallback(t *testing.T) {
	// Selection responses never name an agent, so speakers rotate.
	client := &scriptedClient{responses: []string{
		"hmm, not sure", "first reply",
		"still unsure", "second reply",
		"no idea", "third reply. TERMINATE",
	}}
	g := &GroupChat{
		Client: client,
		Model:  "test-model",
		Agents: []Agent{
			{Name: "Alpha"},
			{Name: "Beta"},
		},
		MaxRounds: 8,
	}
	turns, err := g.Run(context.Background(), "go")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"user", "Alpha", "Beta", "Alpha"}
	if len(turns) != len(want) {
		t.Fatalf("turns = %d, want %d", len(turns), len(want))
	}
	for i, agent := range want {
		if turns[i].Agent != agent {
			t.Errorf("turn %d speaker = %s, want %s", i, turns[i].Agent, agent)
		}
	}
}

func TestGroupChatRequiresTwoAgents(t *testing.T) {
	g := &GroupChat{
		Client: &scriptedClient{},
		Agents: []Agent{{Name: "Solo"}},
	}
	if _, err := g.Run(context.Background(), "go"); err == nil {
		t.Fatal("expected error for single-agent group chat")
	}
}

func TestDuetPropagatesClientError(t *testing.T) {
	client := &scriptedClient{err: fmt.Errorf("model unavailable")}
	d := &Duet{
		Client: client,
		Model:  "test-model",
		A:      Agent{Name: "A"},
		B:      Agent{Name: "B"},
	}
	if _, err := d.Run(context.Background(), "go"); err == nil {
		t.Fatal("expected error")
	}
}
