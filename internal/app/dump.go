package app

import (
	"context"
	"fmt"

	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/engine"
)

// dump writes the validated configuration in the configured format. Values
// are shown normalized, e.g. restore_value: yes becomes true.
func (a *App) dump(ctx context.Context, v *engine.Validated) error {
	w, ok := a.writers[a.config.DumpFormat]
	if !ok {
		return fmt.Errorf("no writer for dump format %q", a.config.DumpFormat)
	}
	ctxlog.FromContext(ctx).Debug("Dumping validated configuration.", "format", a.config.DumpFormat)
	return w.Write(a.outW, validatedModel(v))
}

// validatedModel turns validated records back into a model.
func validatedModel(v *engine.Validated) *config.Model {
	m := config.NewModel()
	for _, c := range v.Components {
		m.Components = append(m.Components, &config.Component{
			Domain:     c.Definition.Domain,
			Attributes: c.Record.Attributes(),
			Order:      c.Record.Keys(),
			Range:      c.Record.Range(),
		})
	}
	for _, a := range v.Automations {
		out := &config.Automation{ID: a.ID, Range: a.Range}
		for _, p := range a.Args {
			out.Args = append(out.Args, &config.Arg{Name: p.Name, Type: p.Type.String()})
		}
		for _, act := range a.Actions {
			out.Actions = append(out.Actions, &config.Action{
				Name:       act.Definition.Name,
				Attributes: act.Record.Attributes(),
				Order:      act.Record.Keys(),
				Range:      act.Record.Range(),
			})
		}
		m.Automations = append(m.Automations, out)
	}
	return m
}
