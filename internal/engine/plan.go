package engine

import (
	"context"
	"fmt"

	"github.com/vk/fwgen/internal/automation"
	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/dag"
	"github.com/vk/fwgen/internal/schema"
	"github.com/vk/fwgen/internal/stageid"
)

// CoreHeader is included by every generated program.
const CoreHeader = "esphome.h"

type stageFunc func(ctx context.Context, prog *codegen.Program) error

type plan struct {
	graph  *dag.Graph
	stages map[string]stageFunc
}

// add registers a stage under addr, indexing it when the address is taken.
func (p *plan) add(addr *stageid.Address, fn stageFunc) string {
	unique := addr
	for i := 2; p.graph.HasNode(unique.String()); i++ {
		unique = addr.WithIndex(i)
	}
	id := unique.String()
	p.graph.AddNode(id)
	p.stages[id] = fn
	return id
}

// plan builds the stage graph. A reference to an id nobody declares adds no
// edge; the emitting stage reports it as unresolved.
func (e *Engine) plan(ctx context.Context, v *Validated) (*plan, error) {
	logger := ctxlog.FromContext(ctx)
	p := &plan{graph: dag.New(), stages: make(map[string]stageFunc)}

	var includes []string
	seen := make(map[string]struct{})
	for _, c := range v.Components {
		for _, inc := range c.Definition.Includes {
			if _, ok := seen[inc]; !ok {
				seen[inc] = struct{}{}
				includes = append(includes, inc)
			}
		}
	}
	p.add(stageid.CoreAddress(), func(ctx context.Context, prog *codegen.Program) error {
		prog.AddInclude(CoreHeader)
		for _, inc := range includes {
			prog.AddInclude(inc)
		}
		prog.AddGlobal(fmt.Sprintf("using namespace %s;", codegen.RootNamespace.Name))
		return nil
	})

	declaredBy := make(map[string]string)
	type pending struct {
		stage string
		refs  []schema.Reference
	}
	var deps []pending

	for _, c := range v.Components {
		stage := p.add(stageid.ComponentAddress(c.Definition.Domain, c.ID()), func(ctx context.Context, prog *codegen.Program) error {
			return c.Definition.ToCode(ctx, prog, c.Record)
		})
		if _, ok := declaredBy[c.ID()]; !ok {
			declaredBy[c.ID()] = stage
		}
		deps = append(deps, pending{stage, c.Record.References()})
	}
	for _, a := range v.Automations {
		stage := p.add(stageid.AutomationAddress(a.ID), func(ctx context.Context, prog *codegen.Program) error {
			return automation.ToCode(ctx, prog, a)
		})
		if _, ok := declaredBy[a.ID]; !ok {
			declaredBy[a.ID] = stage
		}
		deps = append(deps, pending{stage, a.References()})
	}

	for _, d := range deps {
		if err := p.graph.AddEdge(CoreStage, d.stage); err != nil {
			return nil, err
		}
		for _, ref := range d.refs {
			from, ok := declaredBy[ref.ID]
			if !ok || from == d.stage {
				continue
			}
			if err := p.graph.AddEdge(from, d.stage); err != nil {
				return nil, err
			}
		}
	}

	if err := p.graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("configuration has circular references: %w", err)
	}
	logger.Debug("Stage graph built.", "stages", len(p.stages))
	return p, nil
}
