package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// MatrixPath points at a matrix description file or a directory
	// containing one.
	MatrixPath string
	// Executor names the registered step executor to use.
	Executor string
	// Workers is the parallelism degree; 0 means one worker per shard.
	Workers int
	// StepTimeout bounds each individual step; 0 disables the limit.
	StepTimeout time.Duration
	// NoFastFinish forces waiting for allow-failure shards even when the
	// description enables fast_finish.
	NoFastFinish bool

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// Validate checks the required configuration fields.
func (c *Config) Validate() error {
	if c.MatrixPath == "" {
		return errors.New("MatrixPath is a required configuration field and cannot be empty")
	}
	if c.Executor == "" {
		return errors.New("Executor is a required configuration field and cannot be empty")
	}
	return nil
}
