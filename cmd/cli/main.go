package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/buildmatrix/internal/app"
	"github.com/vk/buildmatrix/internal/cli"
)

// main is the entrypoint for the buildmatrix application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error from run to the process exit code contract:
// 1 for a failed run, 2 for configuration and usage errors.
func exitCode(err error) int {
	var exitErr *cli.ExitError
	var cfgErr *app.ConfigError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &cfgErr):
		return cli.ExitConfigError
	case errors.Is(err, app.ErrRunFailed):
		return cli.ExitRunFailure
	}
	return 1
}

// run encapsulates the main application logic for easier testing and
// error handling. The report goes to outW, logs to logW.
func run(outW, logW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, logW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a, err := app.NewApp(outW, logW, cfg)
	if err != nil {
		return &app.ConfigError{Err: err}
	}

	return a.Run(context.Background())
}
