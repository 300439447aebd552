package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

// stopGrace is how long Close waits for the subprocess to exit after
// its stdin is closed before killing it.
const stopGrace = 5 * time.Second

// stdoutBufSize must hold the largest single response line a server
// may emit.
const stdoutBufSize = 1 << 20

// StdioConfig describes the subprocess a StdioTransport runs.
type StdioConfig struct {
	// Command and Args form the server command line.
	Command string
	Args    []string

	// Env entries ("KEY=VALUE") are appended to the inherited
	// environment.
	Env []string

	Logger *slog.Logger
}

// StdioTransport speaks newline-delimited JSON-RPC with a subprocess
// on its stdin/stdout. The process starts lazily on the first Send or
// Notify and outlives individual request contexts; only Close (or an
// I/O failure) stops it.
//
// A one-slot semaphore serializes use of the pipe pair. Unlike a
// mutex, waiting on it can be abandoned when the caller's context
// ends.
type StdioTransport struct {
	cfg    StdioConfig
	logger *slog.Logger
	sem    chan struct{}

	// Guarded by sem.
	proc *exec.Cmd
	in   io.WriteCloser
	out  *bufio.Reader
}

// NewStdioTransport builds the transport without starting the
// subprocess.
func NewStdioTransport(cfg StdioConfig) *StdioTransport {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioTransport{
		cfg:    cfg,
		logger: logger,
		sem:    make(chan struct{}, 1),
	}
}

// acquire takes the pipe slot, giving up when ctx ends. A second ctx
// check after acquiring covers the race where both become ready at
// once.
func (t *StdioTransport) acquire(ctx context.Context) error {
	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		t.release()
		return err
	}
	return nil
}

func (t *StdioTransport) release() {
	<-t.sem
}

// spawn starts the subprocess if it is not already running. Caller
// holds the slot.
func (t *StdioTransport) spawn() error {
	if t.proc != nil && t.proc.ProcessState == nil {
		return nil
	}

	cmd := exec.Command(t.cfg.Command, t.cfg.Args...)
	cmd.Env = append(os.Environ(), t.cfg.Env...)

	in, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		in.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		in.Close()
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		in.Close()
		return fmt.Errorf("start %s: %w", t.cfg.Command, err)
	}

	t.proc = cmd
	t.in = in
	t.out = bufio.NewReaderSize(out, stdoutBufSize)

	// Server log output arrives on stderr; it is not protocol data.
	go func() {
		sc := bufio.NewScanner(errPipe)
		sc.Buffer(make([]byte, 0, 64*1024), 256*1024)
		for sc.Scan() {
			t.logger.Debug("server stderr", "line", sc.Text())
		}
	}()

	t.logger.Info("mcp subprocess started",
		"command", t.cfg.Command, "pid", cmd.Process.Pid)
	return nil
}

// Send writes one request line and reads lines until the answer with
// the matching ID shows up. Server-initiated messages and garbage
// lines in between are logged and skipped. The blocking read runs in
// its own goroutine so ctx cancellation can abandon it; in that case
// the subprocess is killed, because the pipe is no longer in a known
// state.
func (t *StdioTransport) Send(ctx context.Context, req *Request) (*Response, error) {
	if err := t.acquire(ctx); err != nil {
		return nil, err
	}
	defer t.release()

	if err := t.spawn(); err != nil {
		return nil, err
	}
	if err := t.writeLine(req); err != nil {
		return nil, err
	}

	type line struct {
		data []byte
		err  error
	}
	for {
		ch := make(chan line, 1)
		go func() {
			data, err := t.out.ReadBytes('\n')
			ch <- line{data, err}
		}()

		select {
		case <-ctx.Done():
			t.teardown()
			return nil, ctx.Err()
		case l := <-ch:
			if l.err != nil {
				t.teardown()
				return nil, fmt.Errorf("read from subprocess: %w", l.err)
			}
			var resp Response
			if err := json.Unmarshal(l.data, &resp); err != nil {
				t.logger.Debug("skipping unparsable line", "line", string(l.data))
				continue
			}
			if resp.ID != req.ID {
				t.logger.Debug("skipping message with foreign id", "id", resp.ID)
				continue
			}
			return &resp, nil
		}
	}
}

// Notify writes one notification line. There is nothing to read back.
func (t *StdioTransport) Notify(ctx context.Context, notif *Notification) error {
	if err := t.acquire(ctx); err != nil {
		return err
	}
	defer t.release()

	if err := t.spawn(); err != nil {
		return err
	}
	return t.writeLine(notif)
}

// writeLine marshals v and writes it followed by the newline
// delimiter. A write failure leaves the pipe unusable, so the process
// is torn down. Caller holds the slot.
func (t *StdioTransport) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if _, err := t.in.Write(append(data, '\n')); err != nil {
		t.teardown()
		return fmt.Errorf("write to subprocess: %w", err)
	}
	return nil
}

// Close stops the subprocess: stdin is closed to let it exit on its
// own, then it is killed after stopGrace.
func (t *StdioTransport) Close() error {
	t.sem <- struct{}{}
	defer t.release()

	if t.proc == nil || t.proc.Process == nil {
		return nil
	}
	t.logger.Info("stopping mcp subprocess", "pid", t.proc.Process.Pid)

	if t.in != nil {
		t.in.Close()
	}

	done := make(chan error, 1)
	go func() { done <- t.proc.Wait() }()

	var err error
	select {
	case err = <-done:
	case <-time.After(stopGrace):
		t.logger.Warn("subprocess ignored stdin close, killing", "pid", t.proc.Process.Pid)
		_ = t.proc.Process.Kill()
		<-done
	}

	t.proc = nil
	t.in = nil
	t.out = nil
	return err
}

// teardown kills the subprocess after an I/O failure or an abandoned
// read. Caller holds the slot.
func (t *StdioTransport) teardown() {
	if t.in != nil {
		t.in.Close()
	}
	if t.proc != nil && t.proc.Process != nil {
		_ = t.proc.Process.Kill()
		_ = t.proc.Wait()
	}
	t.proc = nil
	t.in = nil
	t.out = nil
}
