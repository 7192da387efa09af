package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/buildmatrix/internal/env"
	"github.com/vk/buildmatrix/internal/report"
)

func TestFunc_Adapts(t *testing.T) {
	t.Parallel()

	var exec Executor = Func(func(_ context.Context, environment env.Descriptor, step string) report.StepResult {
		v, _ := environment.Get("TOOLCHAIN")
		return report.StepResult{Step: step, Output: v}
	})

	res := exec.ExecuteStep(context.Background(), env.New(map[string]string{"TOOLCHAIN": "nightly"}), "cargo test")

	assert.Equal(t, "cargo test", res.Step)
	assert.Equal(t, "nightly", res.Output)
	assert.Equal(t, 0, res.ExitCode)
}
