package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vk/buildmatrix/internal/app"
)

// Exit codes: a failed run and a malformed matrix description must stay
// distinguishable for callers.
const (
	// ExitRunFailure is returned when the run verdict is Failure.
	ExitRunFailure = 1
	// ExitConfigError is returned for usage errors and malformed or
	// invalid matrix descriptions; nothing was executed.
	ExitConfigError = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated
// app.Config, a boolean indicating if the program should exit cleanly,
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("buildmatrix", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
buildmatrix - expand a declarative build matrix into shards and run them.

Usage:
  buildmatrix run [options] [MATRIX_PATH]

Arguments:
  MATRIX_PATH
    Path to a matrix description (.hcl, .yml or .yaml), or a directory
    containing one.

Options:
`)
		flagSet.PrintDefaults()
	}

	matrixFlag := flagSet.String("matrix", "", "Path to the matrix description.")
	mFlag := flagSet.String("m", "", "Path to the matrix description (shorthand).")
	executorFlag := flagSet.String("executor", "shell", "Step executor to use. Options: 'shell' or 'dry-run'.")
	workersFlag := flagSet.Int("workers", 10, "Parallelism degree. 1 runs shards serially; 0 means one worker per shard.")
	stepTimeoutFlag := flagSet.Duration("step-timeout", 0, "Timeout per individual step. 0 disables the limit.")
	noFastFinishFlag := flagSet.Bool("no-fast-finish", false, "Wait for allow-failure shards even when the description enables fast_finish.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	// Accept an optional leading "run" subcommand.
	if len(args) > 0 && args[0] == "run" {
		args = args[1:]
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitConfigError, Message: err.Error()}
	}

	path := ""
	if *matrixFlag != "" {
		path = *matrixFlag
	} else if *mFlag != "" {
		path = *mFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitConfigError, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitConfigError, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *workersFlag < 0 {
		return nil, false, &ExitError{Code: ExitConfigError, Message: "invalid workers: must be zero or positive"}
	}

	cfg := &app.Config{
		MatrixPath:      path,
		Executor:        *executorFlag,
		Workers:         *workersFlag,
		StepTimeout:     durationOrZero(*stepTimeoutFlag),
		NoFastFinish:    *noFastFinishFlag,
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	}
	return cfg, false, nil
}

func durationOrZero(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
