package commitment

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"mvdan.cc/sh/v3/syntax"

	"github.com/loupgaroublond/tavern/internal/orcherr"
)

// SigkillTimeout is how long a killed assertion command is given to exit
// after SIGTERM before the evaluator escalates to SIGKILL.
const SigkillTimeout = 200 * time.Millisecond

// ShellEvaluator runs a commitment's assertion string as a shell command.
// It parses the assertion before running it, rejecting anything that
// fails to parse as a shell command rather than risk running a malformed
// fragment; a zero exit code is "passed".
type ShellEvaluator struct {
	Shell string // defaults to "sh" if empty
}

// Evaluate parses assertion and, if it parses cleanly, runs it via the
// configured shell with a process group so the group can be killed as a
// unit on timeout or cancellation.
func (e *ShellEvaluator) Evaluate(ctx context.Context, assertion string) (bool, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(assertion), ""); err != nil {
		return false, &orcherr.VerificationError{Commitment: assertion, Cause: fmt.Errorf("parse assertion: %w", err)}
	}

	shell := e.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", assertion)
	cmd.Env = os.Environ()
	if runtime.GOOS != "windows" {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	}

	err := cmd.Run()
	if ctx.Err() != nil {
		e.killGroup(cmd)
		return false, &orcherr.VerificationError{Commitment: assertion, Cause: ctx.Err()}
	}
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return false, nil
	}
	return false, &orcherr.VerificationError{Commitment: assertion, Cause: err}
}

func (e *ShellEvaluator) killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil || runtime.GOOS == "windows" {
		return
	}

	pid := cmd.Process.Pid
	syscall.Kill(-pid, syscall.SIGTERM)
	time.Sleep(SigkillTimeout)
	syscall.Kill(-pid, syscall.SIGKILL)
}
