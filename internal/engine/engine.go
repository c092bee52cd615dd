package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/agext/levenshtein"
	"github.com/vk/fwgen/internal/automation"
	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/registry"
	"github.com/vk/fwgen/internal/schema"
	"github.com/vk/fwgen/internal/stageid"
)

// CoreStage is the first stage of every pass.
var CoreStage = stageid.CoreAddress().String()

// Component is a validated component block.
type Component struct {
	Definition *registry.ComponentDefinition
	Record     *schema.Record
}

// ID returns the identifier declared by the component.
func (c *Component) ID() string {
	id, _, _ := c.Record.DeclaredID()
	return id
}

// Validated is a configuration that passed schema validation.
type Validated struct {
	Components  []*Component
	Automations []*automation.Automation
}

// Engine generates programs from configuration models.
type Engine struct {
	registry *registry.Registry
}

// New returns an engine backed by the given registry.
func New(reg *registry.Registry) *Engine {
	return &Engine{registry: reg}
}

// Validate checks every block in the model. It has no side effects.
func (e *Engine) Validate(ctx context.Context, model *config.Model) (*Validated, error) {
	logger := ctxlog.FromContext(ctx)
	var errs schema.ValidationErrors
	out := &Validated{}

	for _, block := range model.Components {
		def, ok := e.registry.Component(block.Domain)
		if !ok {
			verr := &schema.SchemaValidationError{
				Key:     block.Domain,
				Range:   block.Range,
				Summary: "unknown component domain",
			}
			if suggestion := e.suggestDomain(block.Domain); suggestion != "" {
				verr.Detail = fmt.Sprintf("did you mean %q?", suggestion)
			}
			errs = append(errs, verr)
			continue
		}
		rec, err := def.Schema.Validate(ctx, block.Attributes, block.Range)
		if err != nil {
			errs = appendValidation(errs, err)
			continue
		}
		out.Components = append(out.Components, &Component{Definition: def, Record: rec})
	}

	for _, block := range model.Automations {
		a, err := automation.Validate(ctx, e.registry, block)
		if err != nil {
			errs = appendValidation(errs, err)
			continue
		}
		out.Automations = append(out.Automations, a)
	}

	if len(errs) > 0 {
		logger.Debug("Configuration validation failed.", "errors", len(errs))
		return nil, errs
	}
	logger.Debug("Configuration validated.", "components", len(out.Components), "automations", len(out.Automations))
	return out, nil
}

// Generate validates the model and emits the program.
func (e *Engine) Generate(ctx context.Context, model *config.Model) (*codegen.Program, error) {
	validated, err := e.Validate(ctx, model)
	if err != nil {
		return nil, err
	}
	return e.Emit(ctx, validated)
}

// Emit plans and runs the stages of an already validated configuration.
func (e *Engine) Emit(ctx context.Context, v *Validated) (*codegen.Program, error) {
	logger := ctxlog.FromContext(ctx)

	p, err := e.plan(ctx, v)
	if err != nil {
		return nil, err
	}
	order, err := p.graph.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to order stages: %w", err)
	}
	logger.Debug("Stage order resolved.", "stages", order)

	prog := codegen.NewProgram()
	for i, id := range order {
		addr, err := stageid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid stage %q: %w", id, err)
		}
		if i == 0 && !addr.Equal(stageid.CoreAddress()) {
			return nil, fmt.Errorf("stage %s is ordered before the core stage", id)
		}

		stageCtx := ctxlog.With(ctx, "stage", id, "kind", string(addr.Kind))
		if addr.Domain != "" {
			stageCtx = ctxlog.With(stageCtx, "domain", addr.Domain)
		}
		if addr.ID != "" {
			stageCtx = ctxlog.With(stageCtx, "id", addr.ID)
		}
		stageLogger := ctxlog.FromContext(stageCtx)
		stageLogger.Debug("Running stage.")
		if err := p.stages[id](stageCtx, prog); err != nil {
			return nil, fmt.Errorf("stage %s: %w", id, err)
		}
		dependents, err := p.graph.Dependents(id)
		if err != nil {
			return nil, err
		}
		stageLogger.Debug("Stage done.", "dependents", dependents)
	}
	logger.Info("Program generated.", "stages", len(order), "symbols", len(prog.Symbols().Variables()))
	return prog, nil
}

func (e *Engine) suggestDomain(name string) string {
	best, bestDist := "", 4
	for _, candidate := range e.registry.Domains() {
		if d := levenshtein.Distance(name, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

func appendValidation(errs schema.ValidationErrors, err error) schema.ValidationErrors {
	var verrs schema.ValidationErrors
	if errors.As(err, &verrs) {
		return append(errs, verrs...)
	}
	var verr *schema.SchemaValidationError
	if errors.As(err, &verr) {
		return append(errs, verr)
	}
	return append(errs, &schema.SchemaValidationError{Summary: err.Error()})
}
