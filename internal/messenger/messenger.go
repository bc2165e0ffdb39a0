// Package messenger implements the subprocess transport agents invoke
// through the agentcore.Messenger interface: a live implementation that
// shells out to the external runtime CLI, and a mock implementation for
// tests. A process-wide semaphore bounds simultaneous in-flight calls.
package messenger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/semaphore"

	"github.com/loupgaroublond/tavern/internal/agentcore"
	"github.com/loupgaroublond/tavern/internal/orcherr"
)

const (
	// MaxRetries bounds transient transport-failure retries.
	MaxRetries = 3
	// RetryInitialInterval is the first backoff delay.
	RetryInitialInterval = time.Second
	// RetryMaxInterval caps a single backoff delay.
	RetryMaxInterval = 30 * time.Second
	// RetryMaxElapsedTime caps the total time spent retrying one call.
	RetryMaxElapsedTime = 2 * time.Minute
	// SigkillTimeout is how long a cancelled subprocess gets to exit
	// after SIGTERM before it is force-killed.
	SigkillTimeout = 200 * time.Millisecond
)

// newRetryBackoff builds a jittered exponential backoff bounded by ctx,
// the same shape the teacher's session loop uses for provider retries.
func newRetryBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = RetryInitialInterval
	b.MaxInterval = RetryMaxInterval
	b.MaxElapsedTime = RetryMaxElapsedTime
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, MaxRetries), ctx)
}

// runtimeMessage is one line of the runtime subprocess's streamed JSON
// protocol. Only the fields Tavern needs are modeled; the runtime's full
// message shape is a superset of this.
type runtimeMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"session_id"`
	Text      string          `json:"text"`
	ToolName  string          `json:"tool_name"`
	OK        bool            `json:"ok"`
	Raw       json.RawMessage `json:"-"`
}

// Live is the production Messenger: it invokes the runtime CLI as a
// subprocess per query, bounded by a process-wide concurrency cap.
type Live struct {
	bin string
	cap *semaphore.Weighted
}

// New constructs a Live messenger. bin is the runtime CLI's path or
// name; concurrencyCap bounds the number of simultaneously in-flight
// runtime calls process-wide.
func New(bin string, concurrencyCap int64) *Live {
	if concurrencyCap <= 0 {
		concurrencyCap = 10
	}
	return &Live{bin: bin, cap: semaphore.NewWeighted(concurrencyCap)}
}

// Send performs one synchronous turn against the runtime CLI.
func (l *Live) Send(ctx context.Context, spec agentcore.QuerySpec, prompt string) (string, string, error) {
	if err := l.cap.Acquire(ctx, 1); err != nil {
		return "", "", fmt.Errorf("acquire concurrency cap: %w", err)
	}
	defer l.cap.Release(1)

	resuming := spec.ResumeSessionID != ""

	var responseText, sessionID string
	attempt := func() error {
		var err error
		responseText, sessionID, err = l.invoke(ctx, spec, prompt)
		return err
	}

	var err error
	if resuming {
		// A resume failure never retries: it surfaces immediately so
		// the caller can offer a fresh start (spec §4.1 step 8).
		err = attempt()
	} else {
		err = backoff.Retry(attempt, newRetryBackoff(ctx))
	}
	if err != nil {
		return "", "", &orcherr.TransportFailureError{Cause: err}
	}
	return responseText, sessionID, nil
}

// SendStreaming performs one turn against the runtime CLI, emitting a
// text-delta event per streamed message line and a terminal completed
// or error event. It does not retry on transport failure; streaming
// callers observe a single error event rather than a bounded retry
// loop, matching the causal-order contract in spec §4.1.
func (l *Live) SendStreaming(ctx context.Context, spec agentcore.QuerySpec, prompt string) (<-chan agentcore.StreamEvent, agentcore.CancelFunc, error) {
	if err := l.cap.Acquire(ctx, 1); err != nil {
		return nil, nil, fmt.Errorf("acquire concurrency cap: %w", err)
	}

	cmdCtx, cancel := context.WithCancel(ctx)
	cancelFunc := agentcore.CancelFunc(cancel)

	args := buildArgs(spec)
	cmd := exec.CommandContext(cmdCtx, l.bin, args...)
	cmd.Dir = spec.WorkDir
	if runtime.GOOS != "windows" {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		l.cap.Release(1)
		cancel()
		return nil, nil, &orcherr.TransportFailureError{Cause: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		l.cap.Release(1)
		cancel()
		return nil, nil, &orcherr.TransportFailureError{Cause: err}
	}

	if err := cmd.Start(); err != nil {
		l.cap.Release(1)
		cancel()
		return nil, nil, &orcherr.TransportFailureError{Cause: err}
	}

	out := make(chan agentcore.StreamEvent)
	stopped := make(chan struct{})
	go watchForCancel(cmdCtx, cmd, stopped)

	go func() {
		defer l.cap.Release(1)
		defer cancel()
		defer close(stopped)
		defer close(out)

		if _, err := stdin.Write([]byte(prompt + "\n")); err != nil {
			out <- agentcore.StreamEvent{Kind: agentcore.StreamError, Err: &orcherr.TransportFailureError{Cause: err}}
			return
		}
		_ = stdin.Close()

		var sessionID string
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		for scanner.Scan() {
			var msg runtimeMessage
			if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
				continue
			}
			if msg.SessionID != "" {
				sessionID = msg.SessionID
			}

			switch msg.Type {
			case "text_delta":
				out <- agentcore.StreamEvent{Kind: agentcore.StreamTextDelta, Text: msg.Text}
			case "tool_use_started":
				out <- agentcore.StreamEvent{Kind: agentcore.StreamToolUseStarted, ToolName: msg.ToolName}
			case "tool_use_finished":
				out <- agentcore.StreamEvent{Kind: agentcore.StreamToolUseFinished, ToolName: msg.ToolName, ToolOK: msg.OK}
			case "result":
				_ = cmd.Wait()
				if sessionID == "" {
					out <- agentcore.StreamEvent{Kind: agentcore.StreamError, Err: &orcherr.TransportFailureError{Cause: fmt.Errorf("runtime exited without a session id")}}
					return
				}
				out <- agentcore.StreamEvent{Kind: agentcore.StreamCompleted, SessionID: sessionID, FullText: msg.Text}
				return
			}
		}

		if err := scanner.Err(); err != nil {
			out <- agentcore.StreamEvent{Kind: agentcore.StreamError, Err: &orcherr.TransportFailureError{Cause: err}}
			return
		}
		if err := cmd.Wait(); err != nil {
			out <- agentcore.StreamEvent{Kind: agentcore.StreamError, Err: &orcherr.TransportFailureError{Cause: err}}
		}
	}()

	return out, cancelFunc, nil
}

// invoke runs a single runtime subprocess call to completion, reading
// its streamed JSONL protocol and returning the terminal result text and
// session id.
func (l *Live) invoke(ctx context.Context, spec agentcore.QuerySpec, prompt string) (string, string, error) {
	args := buildArgs(spec)

	cmdCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, l.bin, args...)
	cmd.Dir = spec.WorkDir
	if runtime.GOOS != "windows" {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", "", err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", "", err
	}

	if err := cmd.Start(); err != nil {
		return "", "", err
	}

	// Escalate to SIGKILL if the subprocess outlives cmdCtx (caller
	// cancellation or the context passed into Send expiring); stopped
	// to avoid a racing double-Wait once the process exits on its own.
	stopped := make(chan struct{})
	defer close(stopped)
	go watchForCancel(cmdCtx, cmd, stopped)

	if _, err := stdin.Write([]byte(prompt + "\n")); err != nil {
		return "", "", err
	}
	_ = stdin.Close()

	var responseText, sessionID string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		var msg runtimeMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		if msg.SessionID != "" {
			sessionID = msg.SessionID
		}
		if msg.Type == "result" {
			responseText = msg.Text
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}

	if err := cmd.Wait(); err != nil {
		return "", "", err
	}
	if sessionID == "" {
		return "", "", fmt.Errorf("runtime exited without a session id")
	}
	return responseText, sessionID, nil
}

// watchForCancel sends SIGTERM to cmd's process group when cmdCtx is
// cancelled, escalating to SIGKILL after SigkillTimeout. It exits
// without doing anything once stopped is closed, which the caller does
// as soon as it has reaped the process itself via cmd.Wait.
func watchForCancel(cmdCtx context.Context, cmd *exec.Cmd, stopped <-chan struct{}) {
	select {
	case <-stopped:
		return
	case <-cmdCtx.Done():
	}

	if cmd.Process == nil {
		return
	}
	pgid := cmd.Process.Pid
	_ = syscall.Kill(-pgid, syscall.SIGTERM)

	select {
	case <-stopped:
	case <-time.After(SigkillTimeout):
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
	}
}

// buildArgs translates a QuerySpec into the runtime CLI's argv.
func buildArgs(spec agentcore.QuerySpec) []string {
	args := []string{"--print", "--output-format", "stream-json", "--system-prompt", spec.SystemPrompt}
	if spec.ResumeSessionID != "" {
		args = append(args, "--resume", spec.ResumeSessionID)
	}
	for _, ts := range spec.ToolServers {
		args = append(args, "--mcp-server", ts.Name+"="+ts.Endpoint)
	}
	return args
}
