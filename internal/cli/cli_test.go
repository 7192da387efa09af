package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	cfg, shouldExit, err := Parse([]string{"matrix.hcl"}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "matrix.hcl", cfg.MatrixPath)
	assert.Equal(t, "shell", cfg.Executor)
	assert.Equal(t, 10, cfg.Workers)
	assert.Equal(t, time.Duration(0), cfg.StepTimeout)
	assert.False(t, cfg.NoFastFinish)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_RunSubcommand(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	cfg, shouldExit, err := Parse([]string{"run", "-workers", "1", "matrix.yml"}, out)

	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, "matrix.yml", cfg.MatrixPath)
	assert.Equal(t, 1, cfg.Workers)
}

func TestParse_MatrixFlagWinsOverPositional(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	cfg, _, err := Parse([]string{"-matrix", "a.hcl", "b.hcl"}, out)

	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.MatrixPath)
}

func TestParse_NoPathPrintsUsage(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	cfg, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_InvalidLogFormat(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"-log-format", "xml", "matrix.hcl"}, out)

	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, ExitConfigError, exitErr.Code)
}

func TestParse_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"-log-level", "verbose", "matrix.hcl"}, out)

	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, ExitConfigError, exitErr.Code)
}

func TestParse_NegativeWorkers(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"-workers", "-2", "matrix.hcl"}, out)

	require.Error(t, err)
}

func TestParse_UnknownFlag(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"--no-such-flag", "matrix.hcl"}, out)

	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, ExitConfigError, exitErr.Code)
}

func TestParse_StepTimeoutAndPolicyFlags(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	cfg, _, err := Parse([]string{
		"-step-timeout", "90s",
		"-no-fast-finish",
		"-executor", "dry-run",
		"matrix.hcl",
	}, out)

	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.StepTimeout)
	assert.True(t, cfg.NoFastFinish)
	assert.Equal(t, "dry-run", cfg.Executor)
}
