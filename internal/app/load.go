package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
)

// load reads the configured path with the loader matching each file's
// extension. A directory is read by every loader and the results are merged,
// HCL first. The partial model is returned on error so diagnostics can show
// source snippets.
func (a *App) load(ctx context.Context) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	path := a.config.ConfigPath

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config path not found: %w", err)
	}

	if !info.IsDir() {
		loader := a.loaderFor(filepath.Ext(path))
		if loader == nil {
			return nil, fmt.Errorf("unsupported config file %s: expected one of %v", path, a.extensions())
		}
		logger.Debug("Loading config file.", "path", path)
		return loader.Load(ctx, path)
	}

	logger.Debug("Loading config directory.", "path", path)
	model := config.NewModel()
	for _, loader := range a.loaders {
		m, err := loader.Load(ctx, path)
		model.Merge(m)
		if err != nil {
			return model, err
		}
	}
	if len(model.Components) == 0 && len(model.Automations) == 0 {
		logger.Warn("No configuration blocks found.", "path", path, "extensions", a.extensions())
	}
	return model, nil
}

func (a *App) loaderFor(ext string) config.Loader {
	for _, l := range a.loaders {
		if slices.Contains(l.Extensions(), ext) {
			return l
		}
	}
	return nil
}

func (a *App) extensions() []string {
	var exts []string
	for _, l := range a.loaders {
		exts = append(exts, l.Extensions()...)
	}
	return exts
}
