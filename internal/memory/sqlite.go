package memory

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const memorySchema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	timestamp       TIMESTAMP NOT NULL,
	token_count     INTEGER DEFAULT 0,
	FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, timestamp);
`

// SQLiteStore persists conversations, so separate chat sessions pick
// up where the last one ended.
type SQLiteStore struct {
	db    *sql.DB
	limit int
}

// NewSQLiteStore opens or creates the conversation database at dbPath
// and applies the schema.
func NewSQLiteStore(dbPath string, maxMessages int) (*SQLiteStore, error) {
	if maxMessages <= 0 {
		maxMessages = 100
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(memorySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, limit: maxMessages}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddMessage records one message, creating the conversation row on
// first use.
func (s *SQLiteStore) AddMessage(conversationID, role, content string) error {
	now := time.Now()
	msgID, _ := uuid.NewV7()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`INSERT INTO conversations (id, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		conversationID, now, now,
	); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO messages (id, conversation_id, role, content, timestamp, token_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msgID.String(), conversationID, role, content, now, estimateTokens(content),
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return tx.Commit()
}

// GetMessages returns up to the configured limit of the newest
// messages, oldest first.
func (s *SQLiteStore) GetMessages(conversationID string) []Message {
	rows, err := s.db.Query(
		`SELECT role, content, timestamp FROM (
			SELECT role, content, timestamp FROM messages
			WHERE conversation_id = ?
			ORDER BY timestamp DESC LIMIT ?
		) ORDER BY timestamp ASC`,
		conversationID, s.limit,
	)
	if err != nil {
		return []Message{}
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if rows.Scan(&m.Role, &m.Content, &m.Timestamp) == nil {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// GetConversation loads a conversation and its messages, or nil when
// the ID is unknown.
func (s *SQLiteStore) GetConversation(id string) *Conversation {
	var conv Conversation
	err := s.db.QueryRow(
		`SELECT id, created_at, updated_at FROM conversations WHERE id = ?`, id,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil
	}
	conv.Messages = s.GetMessages(id)
	return &conv
}

// Clear deletes a conversation and everything in it.
func (s *SQLiteStore) Clear(conversationID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM conversations WHERE id = ?`, conversationID); err != nil {
		return err
	}
	return tx.Commit()
}

// Stats summarizes database contents.
func (s *SQLiteStore) Stats() map[string]any {
	var convs, msgs, tokens int
	_ = s.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&convs)
	_ = s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&msgs)
	_ = s.db.QueryRow(`SELECT COALESCE(SUM(token_count), 0) FROM messages`).Scan(&tokens)

	return map[string]any{
		"conversations": convs,
		"messages":      msgs,
		"total_tokens":  tokens,
		"max_per_conv":  s.limit,
		"storage":       "sqlite",
	}
}

// estimateTokens is the usual rough cut of four characters per token.
func estimateTokens(content string) int {
	return len(content) / 4
}
