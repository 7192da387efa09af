package config

import "context"

// Loader is the interface for a format-specific matrix description loader.
type Loader interface {
	// Load reads a matrix description from path and translates it into
	// the format-agnostic model.
	Load(ctx context.Context, path string) (*Model, error)
}
