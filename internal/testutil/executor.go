// Package testutil provides test doubles for the step-execution
// capability, enabling deterministic engine tests without spawning
// processes.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/buildmatrix/internal/env"
	"github.com/vk/buildmatrix/internal/report"
)

// ScriptedExecutor returns pre-scripted results keyed by step text. The
// zero value makes every step succeed instantly. It is safe for
// concurrent use and records the order in which steps were executed.
type ScriptedExecutor struct {
	// ExitCodes maps a step to its exit status; absent steps exit 0.
	ExitCodes map[string]int
	// Outputs maps a step to its captured output.
	Outputs map[string]string
	// Delays maps a step to an artificial execution duration. Delayed
	// steps honor ctx cancellation like a real executor would.
	Delays map[string]time.Duration
	// Infra marks steps whose failure is an infrastructure failure.
	Infra map[string]bool

	mu    sync.Mutex
	calls []string
}

// ExecuteStep implements executor.Executor.
func (e *ScriptedExecutor) ExecuteStep(ctx context.Context, _ env.Descriptor, step string) report.StepResult {
	e.mu.Lock()
	e.calls = append(e.calls, step)
	e.mu.Unlock()

	if d := e.Delays[step]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return report.StepResult{Step: step, ExitCode: 1, Detail: ctx.Err().Error()}
		}
	}
	if ctx.Err() != nil {
		return report.StepResult{Step: step, ExitCode: 1, Detail: ctx.Err().Error()}
	}

	return report.StepResult{
		Step:     step,
		ExitCode: e.ExitCodes[step],
		Output:   e.Outputs[step],
		Infra:    e.Infra[step],
	}
}

// Calls returns a copy of the executed step texts in execution order.
func (e *ScriptedExecutor) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.calls))
	copy(out, e.calls)
	return out
}

// CallCount returns how many steps have been executed so far.
func (e *ScriptedExecutor) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}
