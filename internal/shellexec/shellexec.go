// Package shellexec is the real step executor: it runs each step as a
// shell command with the shard's environment overlaid on the process
// environment, capturing combined output and the exit status.
package shellexec

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/vk/buildmatrix/internal/ctxlog"
	"github.com/vk/buildmatrix/internal/env"
	"github.com/vk/buildmatrix/internal/report"
)

// killGrace bounds how long a cancelled step may linger after its shell
// is killed. The shell forks the command, and an orphaned child keeps
// the output pipe open; without this bound Wait would block until that
// child exits on its own.
const killGrace = 2 * time.Second

// Executor runs steps via `shell -c step`. Safe for concurrent use; each
// step gets its own process.
type Executor struct {
	// Shell is the interpreter binary. Defaults to /bin/sh.
	Shell string
	// Dir is the working directory for steps; empty means the current
	// process directory.
	Dir string
}

// New creates a shell executor with default settings.
func New() *Executor {
	return &Executor{Shell: "/bin/sh"}
}

// ExecuteStep implements executor.Executor. The step's process is killed
// when ctx is cancelled or times out; that surfaces as a non-zero exit.
// Failures to start the interpreter at all are tagged as infrastructure
// failures so they stay distinguishable from a failing command.
func (e *Executor) ExecuteStep(ctx context.Context, environment env.Descriptor, step string) report.StepResult {
	logger := ctxlog.FromContext(ctx)

	shell := e.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", step)
	cmd.Dir = e.Dir
	cmd.Env = append(os.Environ(), environment.Environ()...)
	cmd.WaitDelay = killGrace

	logger.Debug("Executing step.", "step", step)
	out, err := cmd.CombinedOutput()

	res := report.StepResult{Step: step, Output: string(out)}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode == -1 {
			// Killed by a signal, typically ctx cancellation or timeout.
			res.ExitCode = 1
			res.Detail = err.Error()
		}
		return res
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		// The process was killed but a forked child kept the pipe open
		// past the grace period. Still a step failure, not infra.
		res.ExitCode = 1
		res.Detail = err.Error()
		return res
	}

	// The command never ran: the interpreter is missing, permissions are
	// wrong, or similar. Infrastructure, not a step failure.
	logger.Error("Executor failed to start step.", "step", step, "error", err)
	res.ExitCode = 1
	res.Infra = true
	res.Detail = err.Error()
	return res
}
