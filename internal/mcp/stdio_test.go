package mcp

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"
)

func TestStdioAcquireRelease(t *testing.T) {
	tr := NewStdioTransport(StdioConfig{Command: "true"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := tr.acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		tr.release()
	}
}

func TestStdioAcquireGivesUpWhenSlotHeld(t *testing.T) {
	tr := NewStdioTransport(StdioConfig{Command: "true"})
	tr.sem <- struct{}{} // another caller holds the slot

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := tr.acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("acquire = %v, want deadline exceeded", err)
	}

	cancelled, cancel2 := context.WithCancel(context.Background())
	cancel2()
	if err := tr.acquire(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("acquire = %v, want canceled", err)
	}
}

func TestStdioAcquireCancelledWithFreeSlot(t *testing.T) {
	tr := NewStdioTransport(StdioConfig{Command: "true"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tr.acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("acquire = %v, want canceled", err)
	}

	// The double-check path must hand the slot back.
	select {
	case tr.sem <- struct{}{}:
		tr.release()
	default:
		t.Fatal("slot left held after cancelled acquire")
	}
}

func TestStdioSendAndNotifyRespectContext(t *testing.T) {
	tr := NewStdioTransport(StdioConfig{Command: "true"})
	tr.sem <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := tr.Send(ctx, NewRequest(1, "ping", nil)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Send = %v, want deadline exceeded", err)
	}
	if err := tr.Notify(ctx, NewNotification("notifications/initialized", nil)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Notify = %v, want deadline exceeded", err)
	}
}

func TestStdioCloseWaitsForSlot(t *testing.T) {
	tr := NewStdioTransport(StdioConfig{Command: "true"})

	if err := tr.acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- tr.Close() }()

	select {
	case <-done:
		t.Fatal("Close returned while the slot was held")
	case <-time.After(100 * time.Millisecond):
	}

	tr.release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close = %v, want nil for never-spawned transport", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Close never returned")
	}
}

// cat echoes each request line back, so the reply carries the same ID
// and Send treats it as the response.
func TestStdioSendRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires cat")
	}
	tr := NewStdioTransport(StdioConfig{Command: "cat"})
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := tr.Send(ctx, NewRequest(7, "ping", nil))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if resp.ID != 7 {
		t.Errorf("response ID = %d, want 7", resp.ID)
	}
	if resp.Error != nil {
		t.Errorf("Error = %v, want nil", resp.Error)
	}

	// The subprocess persists across calls.
	resp, err = tr.Send(ctx, NewRequest(8, "ping", nil))
	if err != nil {
		t.Fatalf("second Send: %v", err)
	}
	if resp.ID != 8 {
		t.Errorf("response ID = %d, want 8", resp.ID)
	}
}

func TestStdioNotifyStartsProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires cat")
	}
	tr := NewStdioTransport(StdioConfig{Command: "cat"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tr.Notify(ctx, NewNotification("notifications/initialized", nil)); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if tr.proc == nil {
		t.Fatal("subprocess not started")
	}
	if err := tr.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
