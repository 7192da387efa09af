package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/buildmatrix/internal/config"
	"github.com/vk/buildmatrix/internal/ctxlog"
	"github.com/vk/buildmatrix/internal/fsutil"
	"github.com/vk/buildmatrix/internal/hcl"
	"github.com/vk/buildmatrix/internal/yamlcfg"
)

// matrixExtensions are the description formats, in resolution order.
var matrixExtensions = []string{".hcl", ".yml", ".yaml"}

// loadModel resolves the configured matrix path to a description file,
// picks the loader for its format, and returns the unified model.
func (a *App) loadModel(ctx context.Context) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	path, err := resolveMatrixPath(a.config.MatrixPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("Matrix description resolved.", "path", path)

	loader, err := loaderFor(path)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, path)
}

// resolveMatrixPath accepts either a description file or a directory
// containing exactly one.
func resolveMatrixPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("matrix description not found: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	files, err := fsutil.FindFilesByExtensions(path, matrixExtensions...)
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", path, err)
	}
	switch len(files) {
	case 0:
		return "", fmt.Errorf("no matrix description (%s) found under %s",
			strings.Join(matrixExtensions, ", "), path)
	case 1:
		return files[0], nil
	default:
		return "", fmt.Errorf("multiple matrix descriptions found under %s: %s",
			path, strings.Join(files, ", "))
	}
}

// loaderFor selects the format loader by file extension.
func loaderFor(path string) (config.Loader, error) {
	switch filepath.Ext(path) {
	case ".hcl":
		return hcl.NewLoader(), nil
	case ".yml", ".yaml":
		return yamlcfg.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported matrix description format %q", filepath.Ext(path))
	}
}
