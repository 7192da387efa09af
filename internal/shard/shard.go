// Package shard defines the fully-resolved job produced by matrix
// expansion, along with its execution state machine.
package shard

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/buildmatrix/internal/env"
)

// Shard is one independently executable job derived from the matrix: a
// resolved environment plus ordered step lists. Shards are created once by
// the expander and never modified afterwards; only the execution state
// advances.
type Shard struct {
	// ID uniquely identifies the shard within a run. Derived from the
	// toolchain label and tag; duplicates are a construction error.
	ID string
	// Toolchain and Tag are the attributes the shard was derived from,
	// kept for report readability. Matching against allow_failures rules
	// happens at expansion time, never here.
	Toolchain string
	Tag       string

	// Env is the shard's resolved environment descriptor.
	Env env.Descriptor
	// BeforeScript runs before Script; a failure in either stops the shard.
	BeforeScript []string
	// Script is the shard's main step list. Never empty.
	Script []string
	// AllowFailure exempts this shard's failure from the run verdict.
	AllowFailure bool

	// state is the shard's current execution state, managed atomically.
	state atomic.Int32
	// skipOnce ensures a shard is marked skipped exactly once.
	skipOnce sync.Once
}

// State is the execution state of a shard.
type State int32

const (
	// Pending indicates the shard has not been picked up by a worker yet.
	Pending State = iota
	// Running indicates a worker is currently executing the shard.
	Running
	// Passed indicates every step finished with exit status zero.
	Passed
	// Failed indicates a step finished with a non-zero exit status.
	Failed
	// Skipped indicates the shard was stopped before completing, either
	// never started or abandoned after a cancellation signal.
	Skipped
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// MarshalJSON encodes the state as its lower-case name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state from its lower-case name.
func (s *State) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for _, candidate := range []State{Pending, Running, Passed, Failed, Skipped} {
		if candidate.String() == name {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown shard state %q", name)
}

// Terminal reports whether s is a terminal state.
func (s State) Terminal() bool {
	return s == Passed || s == Failed || s == Skipped
}

// State atomically retrieves the shard's execution state.
func (s *Shard) State() State {
	return State(s.state.Load())
}

// SetState atomically advances the shard's execution state. Transitions
// out of a terminal state are ignored.
func (s *Shard) SetState(next State) {
	for {
		cur := s.state.Load()
		if State(cur).Terminal() {
			return
		}
		if s.state.CompareAndSwap(cur, int32(next)) {
			return
		}
	}
}

// Skip marks the shard as Skipped, running f on the first call only. It
// returns true if this call performed the skip. Safe to call from
// multiple goroutines and after a terminal state (no-op then).
func (s *Shard) Skip(f func()) bool {
	var first bool
	s.skipOnce.Do(func() {
		if s.State().Terminal() {
			return
		}
		s.SetState(Skipped)
		if f != nil {
			f()
		}
		first = true
	})
	return first
}

// Steps returns the shard's full ordered step list: before_script
// followed by script.
func (s *Shard) Steps() []string {
	steps := make([]string, 0, len(s.BeforeScript)+len(s.Script))
	steps = append(steps, s.BeforeScript...)
	steps = append(steps, s.Script...)
	return steps
}
