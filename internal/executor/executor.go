// Package executor defines the capability interface for running a single
// step. It is the engine's sole extension point for what a step actually
// does: the runner and scheduler know nothing about shells, toolchains,
// or processes.
package executor

import (
	"context"

	"github.com/vk/buildmatrix/internal/env"
	"github.com/vk/buildmatrix/internal/report"
)

// Executor runs one step in the given environment and reports its
// outcome. Implementations must be safe for concurrent use and must
// honor ctx cancellation, at minimum by failing promptly once ctx is
// done. Failures of the executor itself (as opposed to the command) are
// reported with StepResult.Infra set.
type Executor interface {
	ExecuteStep(ctx context.Context, environment env.Descriptor, step string) report.StepResult
}

// Func adapts a function to the Executor interface.
type Func func(ctx context.Context, environment env.Descriptor, step string) report.StepResult

// ExecuteStep implements Executor.
func (f Func) ExecuteStep(ctx context.Context, environment env.Descriptor, step string) report.StepResult {
	return f(ctx, environment, step)
}
