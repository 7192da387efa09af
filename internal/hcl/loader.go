// Package hcl provides the HCL implementation of the matrix description
// loader. It parses a description file, evaluates env attributes as
// expressions, and translates everything into the format-agnostic
// config model.
package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/buildmatrix/internal/config"
	"github.com/vk/buildmatrix/internal/ctxlog"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing HCL matrix description.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse %s: %w", path, diags)
	}

	var root rootSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode %s: %w", path, diags)
	}

	model := &config.Model{
		BeforeScript: root.BeforeScript,
		Script:       root.Script,
	}

	var err error
	if model.Env, err = decodeEnv(root.Env); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if root.Matrix != nil {
		for _, tc := range root.Matrix.Toolchains {
			model.Matrix.Toolchains = append(model.Matrix.Toolchains, config.ToolchainEntry{
				Label: tc.Label,
				Tag:   tc.Tag,
			})
		}
		for i, inc := range root.Matrix.Include {
			envPatch, err := decodeEnv(inc.Env)
			if err != nil {
				return nil, fmt.Errorf("%s: include entry %d: %w", path, i, err)
			}
			model.Matrix.Include = append(model.Matrix.Include, config.OverrideEntry{
				Toolchain:    inc.Toolchain,
				Tag:          inc.Tag,
				Env:          envPatch,
				BeforeScript: inc.BeforeScript,
				Script:       inc.Script,
				AllowFailure: inc.AllowFailure,
			})
		}
		for _, af := range root.Matrix.AllowFailures {
			model.Matrix.AllowFailures = append(model.Matrix.AllowFailures, config.MatchRule{
				Toolchain: af.Toolchain,
				Tag:       af.Tag,
			})
		}
		model.Matrix.FastFinish = root.Matrix.FastFinish
	}

	logger.Debug("HCL matrix description loaded.",
		"toolchains", len(model.Matrix.Toolchains),
		"includes", len(model.Matrix.Include))
	return model, nil
}

// decodeEnv evaluates the attributes of an env block and converts each
// value to a string.
func decodeEnv(block *envBlock) (map[string]string, error) {
	if block == nil {
		return nil, nil
	}
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid env block: %w", diags)
	}

	vars := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("env variable %q: %w", name, diags)
		}
		strVal, err := convert.Convert(val, cty.String)
		if err != nil {
			return nil, fmt.Errorf("env variable %q is not convertible to string: %w", name, err)
		}
		if strVal.IsNull() {
			return nil, fmt.Errorf("env variable %q is null", name)
		}
		vars[name] = strVal.AsString()
	}
	return vars, nil
}
