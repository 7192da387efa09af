// Package config defines the format-agnostic model of a matrix
// description, along with the Loader interface for reading it from a
// concrete source format. The config.Model is the single source of truth
// for the matrix expander; concrete loaders, such as for HCL and YAML,
// live in separate packages.
package config
