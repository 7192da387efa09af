package matrix

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/buildmatrix/internal/config"
	"github.com/vk/buildmatrix/internal/env"
	"github.com/vk/buildmatrix/internal/shard"
)

// gothamModel mirrors the stable/beta/nightly matrix with an extra
// rustfmt row and nightly allow-listed.
func gothamModel() *config.Model {
	return &config.Model{
		BeforeScript: []string{"rustup component add rustfmt"},
		Script:       []string{"cargo build", "cargo test"},
		Matrix: config.Matrix{
			Toolchains: []config.ToolchainEntry{
				{Label: "stable"},
				{Label: "beta"},
				{Label: "nightly"},
			},
			Include: []config.OverrideEntry{
				{Tag: "rustfmt", Script: []string{"cargo fmt -- --check"}},
			},
			AllowFailures: []config.MatchRule{{Toolchain: "nightly"}},
			FastFinish:    true,
		},
	}
}

func TestExpand_CountAndOrder(t *testing.T) {
	t.Parallel()

	shards, err := Expand(gothamModel())
	require.NoError(t, err)

	// N implicit shards in listed order, then M explicit ones.
	require.Len(t, shards, 4)
	ids := []string{shards[0].ID, shards[1].ID, shards[2].ID, shards[3].ID}
	assert.Equal(t, []string{"stable", "beta", "nightly", "rustfmt"}, ids)
}

func TestExpand_AllowFailuresResolvedAtExpansion(t *testing.T) {
	t.Parallel()

	shards, err := Expand(gothamModel())
	require.NoError(t, err)

	assert.False(t, shards[0].AllowFailure, "stable")
	assert.False(t, shards[1].AllowFailure, "beta")
	assert.True(t, shards[2].AllowFailure, "nightly matches the allow_failures rule")
	assert.False(t, shards[3].AllowFailure, "rustfmt is not allow-listed")
}

func TestExpand_IncludeInheritsAndOverrides(t *testing.T) {
	t.Parallel()

	shards, err := Expand(gothamModel())
	require.NoError(t, err)

	rustfmt := shards[3]
	assert.Equal(t, []string{"cargo fmt -- --check"}, rustfmt.Script, "own script replaces the default")
	assert.Equal(t, []string{"rustup component add rustfmt"}, rustfmt.BeforeScript, "before_script inherited")
}

func TestExpand_EnvOverlay(t *testing.T) {
	t.Parallel()

	m := &config.Model{
		Env:    map[string]string{"RUST_BACKTRACE": "1", "CI": "true"},
		Script: []string{"cargo test"},
		Matrix: config.Matrix{
			Toolchains: []config.ToolchainEntry{{Label: "stable"}},
			Include: []config.OverrideEntry{
				{Tag: "trace", Env: map[string]string{"RUST_BACKTRACE": "full"}},
			},
		},
	}

	shards, err := Expand(m)
	require.NoError(t, err)
	require.Len(t, shards, 2)

	v, _ := shards[0].Env.Get("RUST_BACKTRACE")
	assert.Equal(t, "1", v)

	v, _ = shards[1].Env.Get("RUST_BACKTRACE")
	assert.Equal(t, "full", v, "include patch wins over base")
	v, _ = shards[1].Env.Get("CI")
	assert.Equal(t, "true", v, "base keys survive under the patch")
}

func TestExpand_Idempotent(t *testing.T) {
	t.Parallel()

	a, err := Expand(gothamModel())
	require.NoError(t, err)
	b, err := Expand(gothamModel())
	require.NoError(t, err)

	opts := []cmp.Option{
		cmp.Comparer(func(x, y env.Descriptor) bool {
			return cmp.Equal(x.Map(), y.Map())
		}),
		cmpopts.IgnoreUnexported(shard.Shard{}),
	}
	if diff := cmp.Diff(a, b, opts...); diff != "" {
		t.Fatalf("expansion is not deterministic (-first +second):\n%s", diff)
	}
}

func TestExpand_DuplicateIDIsError(t *testing.T) {
	t.Parallel()

	m := gothamModel()
	// An include whose derived id collides with an implicit row is an
	// ambiguous override target, never a silent merge.
	m.Matrix.Include = append(m.Matrix.Include, config.OverrideEntry{Toolchain: "nightly"})

	_, err := Expand(m)

	require.Error(t, err)
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), `duplicate shard id "nightly"`)
	assert.Contains(t, err.Error(), "include entry 1", "message identifies the offending entry")
}

func TestExpand_DuplicateIncludeIDsIsError(t *testing.T) {
	t.Parallel()

	m := gothamModel()
	m.Matrix.Include = append(m.Matrix.Include, config.OverrideEntry{Tag: "rustfmt"})

	_, err := Expand(m)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), `duplicate shard id "rustfmt"`)
}

func TestExpand_EmptyScriptIsError(t *testing.T) {
	t.Parallel()

	m := &config.Model{
		Matrix: config.Matrix{
			Toolchains: []config.ToolchainEntry{{Label: "stable"}},
		},
	}

	_, err := Expand(m)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), `shard "stable" has an empty script`)
}

func TestExpand_ExplicitlyEmptyIncludeScriptIsError(t *testing.T) {
	t.Parallel()

	m := gothamModel()
	m.Matrix.Include = []config.OverrideEntry{{Tag: "noop", Script: []string{}}}

	_, err := Expand(m)

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr), "an explicitly empty script must not inherit the default")
}

func TestExpand_ZeroShardsIsError(t *testing.T) {
	t.Parallel()

	_, err := Expand(&config.Model{Script: []string{"true"}})

	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Contains(t, err.Error(), "nothing to run")
}

func TestExpand_IncludeWithoutMatchingRowIsAdditive(t *testing.T) {
	t.Parallel()

	m := &config.Model{
		Script: []string{"cargo test"},
		Matrix: config.Matrix{
			Include: []config.OverrideEntry{{Toolchain: "nightly", Tag: "miri"}},
		},
	}

	shards, err := Expand(m)
	require.NoError(t, err)
	require.Len(t, shards, 1)
	assert.Equal(t, "nightly/miri", shards[0].ID)
}

func TestShardID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stable", ShardID("stable", ""))
	assert.Equal(t, "rustfmt", ShardID("", "rustfmt"))
	assert.Equal(t, "nightly/rustfmt", ShardID("nightly", "rustfmt"))
}

func TestMatchRule_EmptyMatchesNothing(t *testing.T) {
	t.Parallel()

	r := config.MatchRule{}
	assert.False(t, r.Matches("stable", ""))
}
