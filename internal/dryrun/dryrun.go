// Package dryrun provides an executor that validates a matrix without
// running anything: every step is logged and reported as passed.
package dryrun

import (
	"context"

	"github.com/vk/buildmatrix/internal/ctxlog"
	"github.com/vk/buildmatrix/internal/env"
	"github.com/vk/buildmatrix/internal/report"
)

// Executor pretends to run steps. Useful for checking what a matrix
// expands to and in which order steps would execute.
type Executor struct{}

// New creates a dry-run executor.
func New() *Executor {
	return &Executor{}
}

// ExecuteStep implements executor.Executor.
func (e *Executor) ExecuteStep(ctx context.Context, environment env.Descriptor, step string) report.StepResult {
	ctxlog.FromContext(ctx).Info("Would execute step.", "step", step, "env_vars", environment.Len())
	return report.StepResult{Step: step, Output: "(dry-run)"}
}
