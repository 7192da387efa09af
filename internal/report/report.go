// Package report defines the structured outcome of a run: per-step
// results, per-shard reports, and the overall verdict. All types are
// JSON-encodable for machine consumption.
package report

import "github.com/vk/buildmatrix/internal/shard"

// StepResult is the outcome of executing one step.
type StepResult struct {
	// Step is the step text as written in the matrix description.
	Step string `json:"step"`
	// ExitCode is the step's exit status; zero means success. A timed-out
	// or unstartable step carries a non-zero code.
	ExitCode int `json:"exit_code"`
	// Output holds the step's captured combined output.
	Output string `json:"output,omitempty"`
	// Infra marks failures of the execution infrastructure itself, as
	// opposed to the command failing. Aggregation treats both the same;
	// the tag exists for diagnosability.
	Infra bool `json:"infra,omitempty"`
	// Detail carries an error description for infra and timeout failures.
	Detail string `json:"detail,omitempty"`
}

// Failed reports whether the step counts as failed.
func (r StepResult) Failed() bool {
	return r.ExitCode != 0
}

// ShardReport is the finished record of one shard.
type ShardReport struct {
	ShardID      string       `json:"shard_id"`
	Toolchain    string       `json:"toolchain,omitempty"`
	Tag          string       `json:"tag,omitempty"`
	Status       shard.State  `json:"status"`
	AllowFailure bool         `json:"allow_failure"`
	Steps        []StepResult `json:"steps,omitempty"`
}

// NewShardReport builds a report for sh with the given terminal status
// and executed step results.
func NewShardReport(sh *shard.Shard, status shard.State, steps []StepResult) ShardReport {
	return ShardReport{
		ShardID:      sh.ID,
		Toolchain:    sh.Toolchain,
		Tag:          sh.Tag,
		Status:       status,
		AllowFailure: sh.AllowFailure,
		Steps:        steps,
	}
}

// Blocking reports whether this shard's outcome fails the run: a Failed
// status on a shard that is not allowed to fail.
func (r ShardReport) Blocking() bool {
	return r.Status == shard.Failed && !r.AllowFailure
}

// Status is the overall outcome of a run.
type Status string

const (
	// Success means no blocking failure occurred.
	Success Status = "success"
	// Failure means at least one non-allow-failure shard failed.
	Failure Status = "failure"
)

// RunVerdict is the single output of a run: the overall status plus one
// report per shard, in deterministic shard order.
type RunVerdict struct {
	Status Status        `json:"status"`
	Shards []ShardReport `json:"shards"`
}

// Verdict reduces ordered shard reports to a RunVerdict. The status is
// Failure iff at least one blocking failure exists.
func Verdict(shards []ShardReport) RunVerdict {
	status := Success
	for _, r := range shards {
		if r.Blocking() {
			status = Failure
			break
		}
	}
	return RunVerdict{Status: status, Shards: shards}
}
