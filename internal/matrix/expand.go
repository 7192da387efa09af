// Package matrix turns a declarative matrix description into a concrete,
// ordered list of shards. Expansion is a pure function over the config
// model: implicit shards come from the toolchain rows in listed order,
// followed by the include rows in listed order. Includes are additive;
// they never merge into an existing row, and an id collision is a
// configuration error rather than a silent override.
package matrix

import (
	"fmt"

	"github.com/vk/buildmatrix/internal/config"
	"github.com/vk/buildmatrix/internal/env"
	"github.com/vk/buildmatrix/internal/shard"
)

// ConfigError is a fatal pre-run configuration problem: nothing has been
// executed when it is reported.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return "matrix: " + e.Msg
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// ShardID derives the deterministic shard id from a toolchain label and
// tag. For plain rows this is the label itself; tag-only includes use the
// tag; rows with both use "label/tag".
func ShardID(label, tag string) string {
	switch {
	case label != "" && tag != "":
		return label + "/" + tag
	case tag != "":
		return tag
	default:
		return label
	}
}

// Expand resolves the matrix description into its ordered shard list.
// The returned order is an observable contract: reports and serial
// execution follow it. Expansion is deterministic and side-effect free,
// so expanding the same model twice yields structurally identical shards.
func Expand(m *config.Model) ([]*shard.Shard, error) {
	total := len(m.Matrix.Toolchains) + len(m.Matrix.Include)
	if total == 0 {
		return nil, configErrorf("nothing to run: no toolchain entries and no include entries")
	}

	base := env.New(m.Env)
	shards := make([]*shard.Shard, 0, total)
	seen := make(map[string]struct{}, total)

	add := func(s *shard.Shard, origin string) error {
		if s.ID == "" {
			return configErrorf("%s resolves to an empty shard id", origin)
		}
		if _, dup := seen[s.ID]; dup {
			return configErrorf("%s resolves to duplicate shard id %q", origin, s.ID)
		}
		if len(s.Script) == 0 {
			return configErrorf("shard %q has an empty script", s.ID)
		}
		seen[s.ID] = struct{}{}
		shards = append(shards, s)
		return nil
	}

	for i, tc := range m.Matrix.Toolchains {
		s := &shard.Shard{
			ID:           ShardID(tc.Label, tc.Tag),
			Toolchain:    tc.Label,
			Tag:          tc.Tag,
			Env:          base,
			BeforeScript: m.BeforeScript,
			Script:       m.Script,
			AllowFailure: allowed(m.Matrix.AllowFailures, tc.Label, tc.Tag),
		}
		if err := add(s, fmt.Sprintf("toolchain entry %d (%q)", i, tc.Label)); err != nil {
			return nil, err
		}
	}

	for i, inc := range m.Matrix.Include {
		s := &shard.Shard{
			ID:           ShardID(inc.Toolchain, inc.Tag),
			Toolchain:    inc.Toolchain,
			Tag:          inc.Tag,
			Env:          base.Overlay(env.New(inc.Env)),
			BeforeScript: pick(inc.BeforeScript, m.BeforeScript),
			Script:       pick(inc.Script, m.Script),
			AllowFailure: inc.AllowFailure || allowed(m.Matrix.AllowFailures, inc.Toolchain, inc.Tag),
		}
		if err := add(s, fmt.Sprintf("include entry %d", i)); err != nil {
			return nil, err
		}
	}

	return shards, nil
}

// allowed resolves the allow_failures predicates against a shard's
// attributes. The result is baked into the shard so that aggregation
// never re-evaluates matching logic.
func allowed(rules []config.MatchRule, toolchain, tag string) bool {
	for _, r := range rules {
		if r.Matches(toolchain, tag) {
			return true
		}
	}
	return false
}

// pick returns override when set, else fallback. A non-nil empty
// override is honored as-is so that an explicitly empty script is caught
// by validation rather than silently inheriting the default.
func pick(override, fallback []string) []string {
	if override != nil {
		return override
	}
	return fallback
}
