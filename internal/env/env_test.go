package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlay_PatchWins(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	base := New(map[string]string{"RUST_BACKTRACE": "1", "CI": "true"})
	patch := New(map[string]string{"RUST_BACKTRACE": "full", "SHARD": "rustfmt"})

	// --- Act ---
	merged := base.Overlay(patch)

	// --- Assert ---
	v, ok := merged.Get("RUST_BACKTRACE")
	require.True(t, ok)
	assert.Equal(t, "full", v)

	v, ok = merged.Get("CI")
	require.True(t, ok)
	assert.Equal(t, "true", v)

	v, ok = merged.Get("SHARD")
	require.True(t, ok)
	assert.Equal(t, "rustfmt", v)
	assert.Equal(t, 3, merged.Len())
}

func TestOverlay_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	base := New(map[string]string{"A": "1"})
	patch := New(map[string]string{"A": "2"})

	_ = base.Overlay(patch)

	v, _ := base.Get("A")
	assert.Equal(t, "1", v, "overlay must not modify the base descriptor")
}

func TestNew_CopiesInput(t *testing.T) {
	t.Parallel()

	src := map[string]string{"A": "1"}
	d := New(src)
	src["A"] = "changed"

	v, _ := d.Get("A")
	assert.Equal(t, "1", v, "descriptor must be detached from the source map")
}

func TestMap_ReturnsDetachedCopy(t *testing.T) {
	t.Parallel()

	d := New(map[string]string{"A": "1"})
	m := d.Map()
	m["A"] = "changed"

	v, _ := d.Get("A")
	assert.Equal(t, "1", v, "mutating the returned map must not reach the descriptor")
}

func TestEnviron_SortedPairs(t *testing.T) {
	t.Parallel()

	d := New(map[string]string{"B": "2", "A": "1", "C": "3"})

	assert.Equal(t, []string{"A=1", "B=2", "C=3"}, d.Environ())
	assert.Equal(t, []string{"A", "B", "C"}, d.Names())
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var d Descriptor
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, d.Environ())

	merged := d.Overlay(New(map[string]string{"A": "1"}))
	assert.Equal(t, 1, merged.Len())
}
