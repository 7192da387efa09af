// Package yamlcfg provides the YAML implementation of the matrix
// description loader, covering the Travis-style format most existing
// matrix files use. Decoding is strict: unknown fields are rejected so a
// typo cannot silently drop a policy.
package yamlcfg

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/buildmatrix/internal/config"
	"github.com/vk/buildmatrix/internal/ctxlog"
)

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML loader.
func NewLoader() *Loader {
	return &Loader{}
}

// document is the YAML schema of a matrix description.
type document struct {
	Env          map[string]string `yaml:"env"`
	BeforeScript stringList        `yaml:"before_script"`
	Script       stringList        `yaml:"script"`
	Toolchains   []toolchainEntry  `yaml:"toolchains"`
	Matrix       matrixSection     `yaml:"matrix"`
}

type matrixSection struct {
	Include       []includeEntry `yaml:"include"`
	AllowFailures []matchEntry   `yaml:"allow_failures"`
	FastFinish    bool           `yaml:"fast_finish"`
}

type includeEntry struct {
	Toolchain    string            `yaml:"toolchain"`
	Tag          string            `yaml:"tag"`
	Env          map[string]string `yaml:"env"`
	BeforeScript stringList        `yaml:"before_script"`
	Script       stringList        `yaml:"script"`
	AllowFailure bool              `yaml:"allow_failure"`
}

type matchEntry struct {
	Toolchain string `yaml:"toolchain"`
	Tag       string `yaml:"tag"`
}

// toolchainEntry accepts either a bare label or a {label, tag} mapping.
type toolchainEntry struct {
	Label string `yaml:"label"`
	Tag   string `yaml:"tag"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *toolchainEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Tag = ""
		return node.Decode(&e.Label)
	}
	type plain toolchainEntry
	return node.Decode((*plain)(e))
}

// stringList accepts either a single scalar or a sequence of strings, the
// way CI configs commonly allow `script: make test`.
type stringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*l = stringList{single}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return err
	}
	*l = stringList(many)
	return nil
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing YAML matrix description.", "path", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	model := &config.Model{
		Env:          doc.Env,
		BeforeScript: doc.BeforeScript,
		Script:       doc.Script,
	}
	for _, tc := range doc.Toolchains {
		model.Matrix.Toolchains = append(model.Matrix.Toolchains, config.ToolchainEntry{
			Label: tc.Label,
			Tag:   tc.Tag,
		})
	}
	for _, inc := range doc.Matrix.Include {
		model.Matrix.Include = append(model.Matrix.Include, config.OverrideEntry{
			Toolchain:    inc.Toolchain,
			Tag:          inc.Tag,
			Env:          inc.Env,
			BeforeScript: inc.BeforeScript,
			Script:       inc.Script,
			AllowFailure: inc.AllowFailure,
		})
	}
	for _, af := range doc.Matrix.AllowFailures {
		model.Matrix.AllowFailures = append(model.Matrix.AllowFailures, config.MatchRule{
			Toolchain: af.Toolchain,
			Tag:       af.Tag,
		})
	}
	model.Matrix.FastFinish = doc.Matrix.FastFinish

	logger.Debug("YAML matrix description loaded.",
		"toolchains", len(model.Matrix.Toolchains),
		"includes", len(model.Matrix.Include))
	return model, nil
}
