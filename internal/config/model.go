package config

// Model is the unified, format-agnostic representation of a matrix
// description. Loaders for concrete formats (HCL, YAML) translate their
// input into this model; the expander consumes only the model.
type Model struct {
	// Env is the base environment shared by every shard.
	Env map[string]string
	// BeforeScript and Script are the default step lists for shards that
	// do not override them.
	BeforeScript []string
	Script       []string

	Matrix Matrix
}

// Matrix holds the variant rows and the expansion/aggregation policy.
type Matrix struct {
	// Toolchains are the implicit rows, one shard each, in listed order.
	Toolchains []ToolchainEntry
	// Include are the explicit additive rows, appended after the implicit
	// shards in listed order.
	Include []OverrideEntry
	// AllowFailures are predicates matched against resolved shard
	// attributes; a match sets the shard's allow_failure flag.
	AllowFailures []MatchRule
	// FastFinish permits reporting success as soon as every
	// non-allow-failure shard is terminal.
	FastFinish bool
}

// ToolchainEntry is one named variant, e.g. a release channel label, with
// an optional free-form tag used only for matching and id derivation.
type ToolchainEntry struct {
	Label string
	Tag   string
}

// OverrideEntry is one `include` row: an additive shard definition that
// may patch the environment and replace the default step lists.
type OverrideEntry struct {
	Toolchain string
	Tag       string
	Env       map[string]string
	// BeforeScript and Script replace the defaults when non-nil. A non-nil
	// empty Script is a configuration error caught at expansion.
	BeforeScript []string
	Script       []string
	AllowFailure bool
}

// MatchRule matches shards by resolved attributes, never by position.
// Empty fields are wildcards; all non-empty fields must match. A rule
// with no fields set matches nothing.
type MatchRule struct {
	Toolchain string
	Tag       string
}

// Matches reports whether the rule matches a shard with the given
// toolchain label and tag.
func (r MatchRule) Matches(toolchain, tag string) bool {
	if r.Toolchain == "" && r.Tag == "" {
		return false
	}
	if r.Toolchain != "" && r.Toolchain != toolchain {
		return false
	}
	if r.Tag != "" && r.Tag != tag {
		return false
	}
	return true
}
