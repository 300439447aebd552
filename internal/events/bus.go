// Package events carries operational events from the agent loop, crew
// runner, workflow engine, and finance store to whoever is watching,
// currently the dashboard's WebSocket feed. Publish on a nil *Bus is a
// no-op, so components take an optional bus without guard checks.
package events

import (
	"sync"
	"time"
)

// Sources name the publishing component.
const (
	SourceAgent    = "agent"
	SourceA2A      = "a2a"
	SourceCrew     = "crew"
	SourceWorkflow = "workflow"
	SourceWeb      = "web"
)

// Kinds, grouped by source. The comment after each lists its Data keys.
const (
	KindRequestStart    = "request_start"    // request_id, conversation_id
	KindLLMCall         = "llm_call"         // request_id, iter, model
	KindLLMResponse     = "llm_response"     // request_id, iter, model, tokens_in, tokens_out, tool_calls
	KindToolCall        = "tool_call"        // request_id, tool
	KindToolDone        = "tool_done"        // request_id, tool, ok, duration_ms
	KindRequestComplete = "request_complete" // request_id, model, iterations, elapsed_ms

	KindTurn             = "turn"              // agent, round, message_len
	KindConversationDone = "conversation_done" // rounds, terminated

	KindTaskStart    = "task_start"    // agent, task
	KindTaskComplete = "task_complete" // agent, task, ok, duration_ms

	KindNodeStart    = "node_start"    // node
	KindNodeComplete = "node_complete" // node, next

	KindTransactionAdded = "transaction_added" // amount, category, type
	KindBudgetAlert      = "budget_alert"      // category, spent, budget, level
)

// Event is one thing that happened somewhere in the process.
type Event struct {
	Timestamp time.Time      `json:"ts"`
	Source    string         `json:"source"`
	Kind      string         `json:"kind"`
	Data      map[string]any `json:"data,omitempty"`
}

// Bus broadcasts events to buffered subscriber channels. Delivery is
// best effort: a full channel means that subscriber misses the event,
// publishers never block.
type Bus struct {
	mu sync.RWMutex
	// Keyed by the receive view handed to the subscriber, so
	// Unsubscribe can take the same value Subscribe returned.
	subs map[<-chan Event]chan Event
}

// New returns an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[<-chan Event]chan Event)}
}

// Publish fans an event out to every subscriber, stamping the
// timestamp if the caller left it zero.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new listener with the given channel buffer.
// Pair every Subscribe with an Unsubscribe.
func (b *Bus) Subscribe(bufSize int) <-chan Event {
	ch := make(chan Event, bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = ch
	return ch
}

// Unsubscribe removes a listener and closes its channel. Unknown
// channels are ignored.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	send, ok := b.subs[ch]
	if !ok {
		return
	}
	delete(b.subs, ch)
	close(send)
}

// SubscriberCount reports the number of active listeners.
func (b *Bus) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
