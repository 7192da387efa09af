package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/buildmatrix/internal/dryrun"
	"github.com/vk/buildmatrix/internal/executor"
	"github.com/vk/buildmatrix/internal/registry"
	"github.com/vk/buildmatrix/internal/shellexec"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	executor executor.Executor
}

// registerCoreExecutors populates a registry with the built-in step
// executors.
func registerCoreExecutors(reg *registry.Registry) {
	reg.Register("shell", func() executor.Executor { return shellexec.New() })
	reg.Register("dry-run", func() executor.Executor { return dryrun.New() })
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and
// registry. The report is written to outW; logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	registerCoreExecutors(reg)
	logger.Debug("Core executors registered.", "names", reg.Names())

	factory, ok := reg.Lookup(cfg.Executor)
	if !ok {
		return nil, fmt.Errorf("unknown executor %q, available: %s",
			cfg.Executor, strings.Join(reg.Names(), ", "))
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		executor: factory(),
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
