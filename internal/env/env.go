// Package env provides the immutable environment descriptor attached to a
// shard: a set of variable name/value pairs built up by overlaying layers,
// where later layers win.
package env

import "sort"

// Descriptor is an immutable mapping from variable name to value. The zero
// value is an empty descriptor and is safe to use.
type Descriptor struct {
	vars map[string]string
}

// New creates a Descriptor from the given map. The map is copied, so the
// caller may keep mutating its own copy.
func New(vars map[string]string) Descriptor {
	if len(vars) == 0 {
		return Descriptor{}
	}
	m := make(map[string]string, len(vars))
	for k, v := range vars {
		m[k] = v
	}
	return Descriptor{vars: m}
}

// Overlay returns a new Descriptor containing the union of d and patch,
// with keys from patch taking precedence. Neither input is modified.
func (d Descriptor) Overlay(patch Descriptor) Descriptor {
	if len(patch.vars) == 0 {
		return d
	}
	m := make(map[string]string, len(d.vars)+len(patch.vars))
	for k, v := range d.vars {
		m[k] = v
	}
	for k, v := range patch.vars {
		m[k] = v
	}
	return Descriptor{vars: m}
}

// Get returns the value for name and whether it is present.
func (d Descriptor) Get(name string) (string, bool) {
	v, ok := d.vars[name]
	return v, ok
}

// Len returns the number of variables in the descriptor.
func (d Descriptor) Len() int {
	return len(d.vars)
}

// Names returns the variable names in sorted order.
func (d Descriptor) Names() []string {
	names := make([]string, 0, len(d.vars))
	for k := range d.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Environ renders the descriptor as "KEY=VALUE" pairs in sorted key order,
// the form expected by os/exec.
func (d Descriptor) Environ() []string {
	pairs := make([]string, 0, len(d.vars))
	for _, k := range d.Names() {
		pairs = append(pairs, k+"="+d.vars[k])
	}
	return pairs
}

// Map returns a copy of the descriptor's contents as a plain map.
func (d Descriptor) Map() map[string]string {
	m := make(map[string]string, len(d.vars))
	for k, v := range d.vars {
		m[k] = v
	}
	return m
}
