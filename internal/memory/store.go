// Package memory stores conversation history for the agent loop,
// either in process memory or in SQLite.
package memory

import (
	"slices"
	"sync"
	"time"
)

// MemoryStore is what the agent loop programs against.
type MemoryStore interface {
	GetMessages(conversationID string) []Message
	AddMessage(conversationID, role, content string) error
	GetConversation(id string) *Conversation
	Clear(conversationID string) error
	Stats() map[string]any
}

// Message is one turn of a conversation. Role is system, user,
// assistant, or tool.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation groups the messages of one session.
type Conversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps conversations in process memory. Demos use it; the chat
// command uses SQLiteStore so history survives restarts.
type Store struct {
	mu    sync.RWMutex
	convs map[string]*Conversation
	limit int
}

// NewStore returns an empty store capping each conversation at
// maxMessages (100 when non-positive).
func NewStore(maxMessages int) *Store {
	if maxMessages <= 0 {
		maxMessages = 100
	}
	return &Store{
		convs: make(map[string]*Conversation),
		limit: maxMessages,
	}
}

// AddMessage appends to a conversation, creating it on first use.
func (s *Store) AddMessage(conversationID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := s.convs[conversationID]
	if conv == nil {
		conv = &Conversation{ID: conversationID, CreatedAt: now}
		s.convs[conversationID] = conv
	}
	conv.Messages = append(conv.Messages, Message{Role: role, Content: content, Timestamp: now})
	conv.UpdatedAt = now
	conv.Messages = capMessages(conv.Messages, s.limit)
	return nil
}

// GetMessages returns a copy of a conversation's messages, empty when
// the conversation does not exist.
func (s *Store) GetMessages(conversationID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv := s.convs[conversationID]
	if conv == nil {
		return []Message{}
	}
	return slices.Clone(conv.Messages)
}

// GetConversation returns a copy of the conversation, or nil.
func (s *Store) GetConversation(id string) *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv := s.convs[id]
	if conv == nil {
		return nil
	}
	out := *conv
	out.Messages = slices.Clone(conv.Messages)
	return &out
}

// Clear forgets a conversation.
func (s *Store) Clear(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, conversationID)
	return nil
}

// Stats summarizes store contents.
func (s *Store) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := 0
	for _, conv := range s.convs {
		msgs += len(conv.Messages)
	}
	return map[string]any{
		"conversations": len(s.convs),
		"messages":      msgs,
		"max_per_conv":  s.limit,
		"storage":       "memory",
	}
}

// capMessages trims history past the limit. System prompts always
// survive, and at least the 10 most recent other messages are kept.
func capMessages(msgs []Message, limit int) []Message {
	if len(msgs) <= limit {
		return msgs
	}

	var system, rest []Message
	for _, m := range msgs {
		if m.Role == "system" {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	keep := max(limit-len(system), 10)
	if len(rest) > keep {
		rest = rest[len(rest)-keep:]
	}
	return append(system, rest...)
}
