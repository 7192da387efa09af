package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vk/buildmatrix/internal/ctxlog"
	"github.com/vk/buildmatrix/internal/matrix"
	"github.com/vk/buildmatrix/internal/report"
	"github.com/vk/buildmatrix/internal/runner"
	"github.com/vk/buildmatrix/internal/scheduler"
)

// ErrRunFailed indicates the run verdict was Failure: at least one
// required shard failed.
var ErrRunFailed = errors.New("run failed: at least one required shard failed")

// ConfigError wraps a fatal pre-run configuration problem: a missing or
// malformed description, or an invalid matrix. Nothing has been executed
// when it is returned.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Run executes the main application logic: load the description, expand
// it into shards, run them, and write the structured report. A Failure
// verdict is returned as ErrRunFailed; pre-run problems as *ConfigError.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(a.config.HealthcheckPort)
	}

	model, err := a.loadModel(ctx)
	if err != nil {
		return &ConfigError{Err: err}
	}

	shards, err := matrix.Expand(model)
	if err != nil {
		// Expansion failures are pre-run configuration errors: nothing
		// has been executed.
		return &ConfigError{Err: err}
	}
	a.logger.Debug("Matrix expanded.", "shard_count", len(shards))

	policy := scheduler.Policy{FastFinish: model.Matrix.FastFinish}
	if a.config.NoFastFinish {
		policy.FastFinish = false
	}

	sched := &scheduler.Scheduler{
		Runner: &runner.Runner{
			Executor:    a.executor,
			StepTimeout: a.config.StepTimeout,
		},
		Workers: a.config.Workers,
	}

	a.logger.Info("Starting shard execution.",
		"shards", len(shards), "workers", a.config.Workers, "fast_finish", policy.FastFinish)
	verdict := sched.RunAll(ctx, shards, policy)
	a.logger.Info("Execution finished.", "status", verdict.Status)

	if err := a.writeVerdict(verdict); err != nil {
		return err
	}

	if verdict.Status == report.Failure {
		return ErrRunFailed
	}
	return nil
}

// writeVerdict emits the machine-consumable report on the output stream.
func (a *App) writeVerdict(verdict report.RunVerdict) error {
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(verdict); err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}
	return nil
}
