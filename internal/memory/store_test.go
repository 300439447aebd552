package memory

import (
	"fmt"
	"path/filepath"
	"testing"
)

func TestStoreAddAndGet(t *testing.T) {
	s := NewStore(100)

	if err := s.AddMessage("conv1", "user", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMessage("conv1", "assistant", "hi there"); err != nil {
		t.Fatal(err)
	}

	msgs := s.GetMessages("conv1")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("roles: got %q, %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestStoreMissingConversation(t *testing.T) {
	s := NewStore(100)
	if msgs := s.GetMessages("nope"); len(msgs) != 0 {
		t.Errorf("got %d messages for missing conversation", len(msgs))
	}
	if conv := s.GetConversation("nope"); conv != nil {
		t.Error("expected nil for missing conversation")
	}
}

func TestStoreTrimKeepsSystemMessages(t *testing.T) {
	s := NewStore(20)

	if err := s.AddMessage("conv1", "system", "you are helpful"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		if err := s.AddMessage("conv1", "user", fmt.Sprintf("msg %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	msgs := s.GetMessages("conv1")
	if len(msgs) > 21 {
		t.Errorf("trim failed: %d messages retained", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Errorf("system message lost: first role is %q", msgs[0].Role)
	}
	// Most recent message survives
	last := msgs[len(msgs)-1]
	if last.Content != "msg 49" {
		t.Errorf("last message: got %q", last.Content)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore(100)
	s.AddMessage("conv1", "user", "hello")
	if err := s.Clear("conv1"); err != nil {
		t.Fatal(err)
	}
	if len(s.GetMessages("conv1")) != 0 {
		t.Error("messages survived Clear")
	}
}

func TestStoreStats(t *testing.T) {
	s := NewStore(100)
	s.AddMessage("a", "user", "one")
	s.AddMessage("b", "user", "two")

	stats := s.Stats()
	if stats["conversations"] != 2 {
		t.Errorf("conversations: got %v", stats["conversations"])
	}
	if stats["messages"] != 2 {
		t.Errorf("messages: got %v", stats["messages"])
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memory.db")

	s, err := NewSQLiteStore(dbPath, 100)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	if err := s.AddMessage("conv1", "user", "what did I spend?"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMessage("conv1", "assistant", "you spent $42"); err != nil {
		t.Fatal(err)
	}

	msgs := s.GetMessages("conv1")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[1].Content != "you spent $42" {
		t.Errorf("content: got %q", msgs[1].Content)
	}

	conv := s.GetConversation("conv1")
	if conv == nil {
		t.Fatal("conversation not found")
	}
	if len(conv.Messages) != 2 {
		t.Errorf("conversation messages: got %d", len(conv.Messages))
	}
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memory.db")

	s1, err := NewSQLiteStore(dbPath, 100)
	if err != nil {
		t.Fatal(err)
	}
	s1.AddMessage("conv1", "user", "remember me")
	s1.Close()

	s2, err := NewSQLiteStore(dbPath, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	msgs := s2.GetMessages("conv1")
	if len(msgs) != 1 || msgs[0].Content != "remember me" {
		t.Errorf("persistence failed: %+v", msgs)
	}
}

func TestSQLiteStoreClear(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memory.db")

	s, err := NewSQLiteStore(dbPath, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.AddMessage("conv1", "user", "hello")
	if err := s.Clear("conv1"); err != nil {
		t.Fatal(err)
	}
	if len(s.GetMessages("conv1")) != 0 {
		t.Error("messages survived Clear")
	}
	if s.GetConversation("conv1") != nil {
		t.Error("conversation survived Clear")
	}
}

func TestSQLiteStoreStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "memory.db")

	s, err := NewSQLiteStore(dbPath, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.AddMessage("conv1", "user", "hello world")
	stats := s.Stats()
	if stats["conversations"] != 1 {
		t.Errorf("conversations: got %v", stats["conversations"])
	}
	if stats["storage"] != "sqlite" {
		t.Errorf("storage: got %v", stats["storage"])
	}
}
