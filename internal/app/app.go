package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/engine"
	"github.com/vk/fwgen/internal/hcl"
	"github.com/vk/fwgen/internal/registry"
	"github.com/vk/fwgen/internal/toml"
	"github.com/vk/fwgen/internal/yaml"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	diagW    io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	engine   *engine.Engine
	loaders  []config.Loader
	writers  map[string]config.Writer
}

// NewApp is the constructor for the main application. outW receives the
// generated program when writing to stdout, and dumps; logW receives logs and
// diagnostics. It panics if a module registers an unusable definition, which
// is a programmer error.
func NewApp(outW, logW io.Writer, appConfig *Config, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}

	return &App{
		outW:     outW,
		diagW:    logW,
		logger:   logger,
		config:   appConfig,
		registry: reg,
		engine:   engine.New(reg),
		loaders:  []config.Loader{hcl.NewLoader(), yaml.NewLoader()},
		writers: map[string]config.Writer{
			"hcl":  hcl.NewWriter(),
			"yaml": yaml.NewWriter(),
			"toml": toml.NewWriter(),
		},
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
