// Package runner executes a single shard's ordered steps through the
// injected executor capability, stopping at the first failing step.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/buildmatrix/internal/ctxlog"
	"github.com/vk/buildmatrix/internal/executor"
	"github.com/vk/buildmatrix/internal/report"
	"github.com/vk/buildmatrix/internal/shard"
)

// Runner drives one shard at a time. It is stateless and safe for
// concurrent use by multiple workers.
type Runner struct {
	Executor executor.Executor
	// StepTimeout bounds each individual step; zero means no limit. A
	// timed-out step is treated as a non-zero-exit failure.
	StepTimeout time.Duration
}

// Run executes the shard's before_script then script in order and
// returns its report. Cancellation is checked between steps: a shard
// stopped by ctx is reported Skipped, never Failed, so that a
// cancellation abort cannot mask or trigger a failure verdict.
func (r *Runner) Run(ctx context.Context, sh *shard.Shard) report.ShardReport {
	logger := ctxlog.FromContext(ctx).With("shard", sh.ID)

	steps := sh.Steps()
	results := make([]report.StepResult, 0, len(steps))

	for _, step := range steps {
		if ctx.Err() != nil {
			logger.Debug("Shard abandoned before step.", "step", step)
			return report.NewShardReport(sh, shard.Skipped, results)
		}

		res := r.executeStep(ctx, sh, step)
		results = append(results, res)

		if res.Failed() {
			if ctx.Err() != nil {
				// The run was cancelled while the step was in flight; the
				// verdict is already decided elsewhere.
				logger.Debug("Shard abandoned mid-step.", "step", step)
				return report.NewShardReport(sh, shard.Skipped, results)
			}
			logger.Debug("Step failed, stopping shard.", "step", step, "exit_code", res.ExitCode, "infra", res.Infra)
			return report.NewShardReport(sh, shard.Failed, results)
		}
	}

	return report.NewShardReport(sh, shard.Passed, results)
}

// executeStep invokes the executor with the per-step timeout applied.
func (r *Runner) executeStep(ctx context.Context, sh *shard.Shard, step string) report.StepResult {
	stepCtx := ctx
	if r.StepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, r.StepTimeout)
		defer cancel()
	}

	res := r.Executor.ExecuteStep(stepCtx, sh.Env, step)

	if stepCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		if res.ExitCode == 0 {
			res.ExitCode = 1
		}
		res.Detail = fmt.Sprintf("step timed out after %s", r.StepTimeout)
	}
	return res
}
