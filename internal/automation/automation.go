package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/registry"
	"github.com/vk/fwgen/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

var (
	// TriggerClass fires an automation with its arguments.
	TriggerClass = codegen.RootNamespace.Class("Trigger")
	// AutomationClass runs a list of actions when its trigger fires.
	AutomationClass = codegen.RootNamespace.Class("Automation")
)

var headerSchema = schema.MustNew(
	schema.Required("id", schema.DeclareID(AutomationClass.String())),
)

var argSchema = schema.MustNew(
	schema.Required("name", schema.Identifier),
	schema.Required("type", schema.NonEmptyString),
)

// Action is one validated step of an automation.
type Action struct {
	Definition *registry.ActionDefinition
	Record     *schema.Record
}

// Automation is a validated automation block.
type Automation struct {
	ID      string
	Args    []codegen.Param
	Actions []*Action
	Range   hcl.Range
}

// TemplateArgs returns the argument types, used as Ts in Trigger<Ts...>.
func (a *Automation) TemplateArgs() codegen.TemplateArguments {
	out := make(codegen.TemplateArguments, len(a.Args))
	for i, p := range a.Args {
		out[i] = p.Type
	}
	return out
}

// References lists every identifier the automation's actions refer to.
func (a *Automation) References() []schema.Reference {
	var refs []schema.Reference
	for _, act := range a.Actions {
		refs = append(refs, act.Record.References()...)
	}
	return refs
}

// Validate checks an automation block and all of its actions against the
// registered action schemas. Every problem found is returned together.
func Validate(ctx context.Context, reg *registry.Registry, in *config.Automation) (*Automation, error) {
	logger := ctxlog.FromContext(ctx)
	var errs schema.ValidationErrors

	collect := func(err error) {
		var verrs schema.ValidationErrors
		if errors.As(err, &verrs) {
			errs = append(errs, verrs...)
			return
		}
		var verr *schema.SchemaValidationError
		if errors.As(err, &verr) {
			errs = append(errs, verr)
		}
	}

	_, err := headerSchema.Validate(ctx, map[string]*config.Attribute{
		"id": {Name: "id", Value: cty.StringVal(in.ID), Range: in.Range},
	}, in.Range)
	collect(err)

	out := &Automation{ID: in.ID, Range: in.Range}
	seenArgs := make(map[string]struct{})
	for _, arg := range in.Args {
		_, err := argSchema.Validate(ctx, map[string]*config.Attribute{
			"name": {Name: "name", Value: cty.StringVal(arg.Name), Range: in.Range},
			"type": {Name: "type", Value: cty.StringVal(arg.Type), Range: in.Range},
		}, in.Range)
		if err != nil {
			collect(err)
			continue
		}
		if _, dup := seenArgs[arg.Name]; dup {
			errs = append(errs, &schema.SchemaValidationError{
				Key:     arg.Name,
				Range:   in.Range,
				Summary: fmt.Sprintf("argument %q is declared more than once", arg.Name),
			})
			continue
		}
		seenArgs[arg.Name] = struct{}{}
		out.Args = append(out.Args, codegen.Param{Type: codegen.RawExpression(arg.Type), Name: arg.Name})
	}

	if len(in.Actions) == 0 {
		errs = append(errs, &schema.SchemaValidationError{
			Range:   in.Range,
			Summary: fmt.Sprintf("automation %q has no actions", in.ID),
		})
	}

	for _, act := range in.Actions {
		def, ok := reg.Action(act.Name)
		if !ok {
			e := &schema.SchemaValidationError{
				Key:     act.Name,
				Range:   act.Range,
				Summary: "unknown action",
			}
			if suggestion := suggestAction(reg, act.Name); suggestion != "" {
				e.Detail = fmt.Sprintf("did you mean %q?", suggestion)
			}
			errs = append(errs, e)
			continue
		}
		rec, err := def.Schema.Validate(ctx, act.Attributes, act.Range)
		if err != nil {
			collect(err)
			continue
		}
		out.Actions = append(out.Actions, &Action{Definition: def, Record: rec})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	logger.Debug("Automation validated.", "id", in.ID, "args", len(out.Args), "actions", len(out.Actions))
	return out, nil
}

func suggestAction(reg *registry.Registry, name string) string {
	best, bestDist := "", 4
	for _, candidate := range reg.Actions() {
		if d := levenshtein.Distance(name, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// ToCode emits the trigger, the automation and every action, then attaches
// the actions to the automation. All referenced ids, including those used
// inside lambdas, must already be declared.
func ToCode(ctx context.Context, prog *codegen.Program, a *Automation) error {
	logger := ctxlog.FromContext(ctx)

	for _, ref := range a.References() {
		if _, err := prog.GetVariable(ref.ID, ref.Range); err != nil {
			return fmt.Errorf("automation %q: %w", a.ID, err)
		}
	}

	targs := a.TemplateArgs()
	triggerType := TriggerClass.Variadic(targs)
	trigger, err := prog.Pvariable(
		prog.Symbols().FreshName(a.ID+"_trigger"),
		TriggerClass, triggerType,
		&codegen.NewExpression{Type: triggerType},
		a.Range,
	)
	if err != nil {
		return err
	}

	automationType := AutomationClass.Variadic(targs)
	auto, err := prog.Pvariable(
		a.ID,
		AutomationClass, automationType,
		&codegen.NewExpression{Type: automationType, Args: []codegen.Expression{trigger}},
		a.Range,
	)
	if err != nil {
		return err
	}

	actions := make(codegen.ArrayInitializer, 0, len(a.Actions))
	for _, act := range a.Actions {
		actx := registry.ActionContext{
			ID:           prog.Symbols().FreshName(actionBaseName(a.ID, act.Definition)),
			TemplateArgs: targs,
			Args:         a.Args,
		}
		v, err := act.Definition.ToCode(ctx, prog, act.Record, actx)
		if err != nil {
			return fmt.Errorf("automation %q: action %s: %w", a.ID, act.Definition.Name, err)
		}
		actions = append(actions, v)
	}
	prog.Add(auto.Call("add_actions", actions))

	logger.Debug("Automation emitted.", "id", a.ID, "trigger", trigger.Name, "actions", len(actions))
	return nil
}

// actionBaseName derives the variable name of an action object, e.g.
// on_boot_globalvarsetaction.
func actionBaseName(automationID string, def *registry.ActionDefinition) string {
	return automationID + "_" + strings.ToLower(def.Type.Name)
}
