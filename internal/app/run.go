package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/engine"
)

// diagnosticsWidth is the wrap width of rendered diagnostics.
const diagnosticsWidth = 100

// Run executes one generation pass: load, validate, then either emit the
// program or dump the validated configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "config", a.config.ConfigPath)

	model, err := a.load(ctx)
	if err != nil {
		return a.report(model, err)
	}
	a.logger.Info("Configuration loaded.", "components", len(model.Components), "automations", len(model.Automations))

	validated, err := a.engine.Validate(ctx, model)
	if err != nil {
		return a.report(model, err)
	}

	if a.config.DumpConfig {
		return a.dump(ctx, validated)
	}

	prog, err := a.engine.Emit(ctx, validated)
	if err != nil {
		return a.report(model, err)
	}
	return a.writeProgram(ctx, prog)
}

// report prints err as diagnostics with source snippets where available and
// returns a short summary error for the caller.
func (a *App) report(model *config.Model, err error) error {
	diags := engine.Diagnostics(err)
	var files map[string]*hcl.File
	if model != nil {
		files = model.Files
	}
	wr := hcl.NewDiagnosticTextWriter(a.diagW, files, diagnosticsWidth, false)
	if writeErr := wr.WriteDiagnostics(diags); writeErr != nil {
		a.logger.Error("Failed to write diagnostics.", "error", writeErr)
	}
	return fmt.Errorf("generation failed with %d error(s): %w", len(diags), err)
}

func (a *App) writeProgram(ctx context.Context, prog *codegen.Program) error {
	logger := ctxlog.FromContext(ctx)

	if a.config.OutputPath == StdoutPath {
		return prog.Render(a.outW)
	}

	var buf bytes.Buffer
	if err := prog.Render(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(a.config.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(a.config.OutputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.config.OutputPath, err)
	}
	logger.Info("Program written.", "path", a.config.OutputPath, "bytes", buf.Len())
	return nil
}
