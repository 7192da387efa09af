// Package scheduler runs the expanded shard list under bounded
// parallelism and reduces the per-shard reports to a single verdict. It
// owns the early-exit policies: a blocking failure cancels the rest of
// the run, and fast_finish stops waiting on allow-failure shards once
// every required shard is terminal.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/vk/buildmatrix/internal/ctxlog"
	"github.com/vk/buildmatrix/internal/report"
	"github.com/vk/buildmatrix/internal/runner"
	"github.com/vk/buildmatrix/internal/shard"
)

// Policy holds the aggregation policy knobs for a run.
type Policy struct {
	// FastFinish reports success as soon as every non-allow-failure
	// shard has reached a terminal state; still-running allow-failure
	// shards are abandoned and reported Skipped.
	FastFinish bool
}

// Scheduler dispatches shards to workers and aggregates their reports.
type Scheduler struct {
	Runner *runner.Runner
	// Workers is the parallelism degree. 1 runs shards strictly in
	// order; values below 1 mean one worker per shard (unlimited).
	Workers int
}

// RunAll executes every shard and returns the verdict. The report list
// always contains one entry per shard, ordered by shard index regardless
// of completion order; shards stopped by cancellation appear as Skipped,
// never silently dropped. Once a blocking failure is observed the
// verdict is Failure and cannot be flipped back by later results.
func (s *Scheduler) RunAll(ctx context.Context, shards []*shard.Shard, policy Policy) report.RunVerdict {
	logger := ctxlog.FromContext(ctx)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var requiredLeft atomic.Int64
	for _, sh := range shards {
		if !sh.AllowFailure {
			requiredLeft.Add(1)
		}
	}
	var blocking atomic.Bool

	// Every job is queued up front; workers drain the channel even after
	// cancellation so that each shard ends up with a report.
	jobs := make(chan int, len(shards))
	for i := range shards {
		jobs <- i
	}
	close(jobs)

	reports := make([]report.ShardReport, len(shards))

	workers := s.Workers
	if workers < 1 || workers > len(shards) {
		workers = len(shards)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerLogger := logger.With("workerID", workerID)
			workerLogger.Debug("Worker started.")

			for idx := range jobs {
				sh := shards[idx]

				if runCtx.Err() != nil {
					sh.Skip(func() {
						workerLogger.Debug("Shard skipped before start.", "shard", sh.ID)
					})
					reports[idx] = report.NewShardReport(sh, shard.Skipped, nil)
					if !sh.AllowFailure {
						requiredLeft.Add(-1)
					}
					continue
				}

				workerLogger.Debug("Worker picked up shard.", "shard", sh.ID)
				sh.SetState(shard.Running)

				rep := s.Runner.Run(runCtx, sh)
				sh.SetState(rep.Status)
				reports[idx] = rep

				if rep.Status == shard.Failed && !sh.AllowFailure {
					workerLogger.Error("Blocking failure, cancelling remaining shards.", "shard", sh.ID)
					blocking.Store(true)
					cancel()
				}

				if !sh.AllowFailure && requiredLeft.Add(-1) == 0 &&
					policy.FastFinish && !blocking.Load() {
					workerLogger.Debug("All required shards terminal, fast-finishing.")
					cancel()
				}
			}
			workerLogger.Debug("Worker finished.")
		}(w)
	}
	wg.Wait()

	verdict := report.Verdict(reports)
	logger.Debug("Run aggregated.", "status", verdict.Status, "shards", len(reports))
	return verdict
}
