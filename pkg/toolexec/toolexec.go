// Package toolexec runs external command-line tools on behalf of the
// metadata sources and enrichment checks.
//
// Callers depend on the [Runner] interface rather than on os/exec directly,
// so tests can substitute a [RunnerFunc] that simulates success, failure, a
// missing binary or a hung process without installing cargo plugins.
//
// A process that starts and exits is never an error: its exit status is
// reported in [Output.ExitCode] and the caller decides whether a non-zero
// status is fatal (metadata retrieval) or merely degrades a result
// (enrichment). Errors are reserved for tools that are not installed, fail
// to start, or exceed the timeout.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	apperrors "github.com/matzehuels/treasuremap/pkg/errors"
)

// DefaultTimeout bounds every tool invocation that does not set its own.
const DefaultTimeout = 60 * time.Second

// Output captures what a finished process wrote and how it exited.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (o Output) Success() bool { return o.ExitCode == 0 }

// Runner invokes an external tool and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// RunnerFunc adapts a function to the [Runner] interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) (Output, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (Output, error) {
	return f(ctx, name, args...)
}

// ExecRunner runs tools as child processes.
type ExecRunner struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner with the given timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run looks name up on PATH, runs it with args and returns its output.
//
// Returned errors carry the codes ErrCodeToolMissing (not on PATH),
// ErrCodeTimeout (killed after Timeout) or ErrCodeToolFailed (could not
// be started). When ctx itself ends first, its error is returned as is.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Output, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return Output{}, apperrors.Wrap(apperrors.ErrCodeToolMissing, err, "%s is not installed", name)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, path, args...)
	cmd.Dir = r.Dir
	// Grandchildren may hold the output pipes open after the kill.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return out, apperrors.Wrap(apperrors.ErrCodeTimeout, runCtx.Err(), "%s did not finish within %s", commandLine(name, args), timeout)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return out, nil
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	default:
		return out, apperrors.Wrap(apperrors.ErrCodeToolFailed, err, "start %s", name)
	}
}

func commandLine(name string, args []string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

var _ Runner = (*ExecRunner)(nil)
