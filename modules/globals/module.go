// Package globals implements persisted global variables: a component that
// declares a typed global in the firmware, and the globals.set action that
// assigns it at runtime.
package globals

import (
	"context"
	"fmt"

	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/component"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/registry"
	"github.com/vk/fwgen/internal/schema"
)

// Domain is the configuration block name of this component.
const Domain = "globals"

// Configuration keys.
const (
	KeyID           = "id"
	KeyType         = "type"
	KeyInitialValue = "initial_value"
	KeyValue        = "value"
)

var (
	globalsNS = codegen.RootNamespace.Namespace("globals")

	// GlobalsComponent is the firmware class holding one global value.
	GlobalsComponent = globalsNS.Class("GlobalsComponent")
	// GlobalVarSetAction is the firmware action assigning a global.
	GlobalVarSetAction = globalsNS.Class("GlobalVarSetAction")
)

// zeroInitializer value-initializes any C++ type.
const zeroInitializer = codegen.RawExpression("{}")

// ConfigSchema validates one globals block. restore_value has no default so
// that restore_mode alone can drive restoring.
var ConfigSchema = schema.MustNew(
	schema.Required(KeyID, schema.DeclareID(GlobalsComponent.String())),
	schema.Required(KeyType, schema.NonEmptyString),
	schema.Optional(KeyInitialValue, schema.StringStrict),
	schema.Optional(component.KeyRestoreValue, schema.Boolean),
).MustExtend(component.Schema, component.StatefulSchema)

// SetActionSchema validates one globals.set action.
var SetActionSchema = schema.MustNew(
	schema.Required(KeyID, schema.UseID(GlobalsComponent.String())),
	schema.Required(KeyValue, schema.Templatable(schema.StringStrict)),
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the globals component and the globals.set action.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterComponent(&registry.ComponentDefinition{
		Domain:   Domain,
		Schema:   ConfigSchema,
		Includes: []string{"esphome/components/globals/globals_component.h"},
		ToCode:   ToCode,
	})
	r.RegisterAction("globals.set", GlobalVarSetAction, SetActionSchema, SetToCode)
}

// ToCode declares, constructs and registers one global variable.
func ToCode(ctx context.Context, prog *codegen.Program, rec *schema.Record) error {
	logger := ctxlog.FromContext(ctx)
	id := rec.String(KeyID)

	typ := codegen.RawExpression(rec.String(KeyType))
	templateArgs := codegen.TemplateArguments{typ}
	resType := GlobalsComponent.Template(templateArgs)

	rhs := GlobalsComponent.New(templateArgs)
	glob, err := prog.Pvariable(id, GlobalsComponent, resType, rhs, rec.KeyRange(KeyID))
	if err != nil {
		return err
	}
	logger.Debug("Global declared.", "id", id, "type", resType.String())

	if err := component.Register(ctx, prog, glob, rec); err != nil {
		return err
	}

	initial := zeroInitializer
	if rec.Has(KeyInitialValue) {
		initial = codegen.RawExpression(rec.String(KeyInitialValue))
	}
	return component.ApplyRestoreConfig(ctx, prog, glob, rec, typ, initial)
}

// SetToCode emits a GlobalVarSetAction targeting the global named by id.
func SetToCode(ctx context.Context, prog *codegen.Program, rec *schema.Record, actx registry.ActionContext) (*codegen.Variable, error) {
	logger := ctxlog.FromContext(ctx)

	target, err := prog.GetVariable(rec.String(KeyID), rec.KeyRange(KeyID))
	if err != nil {
		return nil, err
	}
	if target.Class != GlobalsComponent.String() {
		return nil, &schema.SchemaValidationError{
			Key:     KeyID,
			Range:   rec.KeyRange(KeyID),
			Summary: fmt.Sprintf("id %q is a %s, expected %s", target.Name, target.Class, GlobalsComponent),
		}
	}

	templateArgs := append(codegen.TemplateArguments{codegen.RawExpression(target.Type)}, actx.TemplateArgs...)
	value, _ := rec.Get(KeyValue)
	templ, err := codegen.NewTemplatable(value, nil, codegen.RawFromString)
	if err != nil {
		return nil, err
	}
	expr, err := templ.Resolve(actx.Args)
	if err != nil {
		return nil, err
	}
	if l, ok := rec.Lambda(KeyValue); ok {
		logger.Debug("Set value is a lambda.", "action", actx.ID, "references", l.References())
	}

	actionType := GlobalVarSetAction.Template(templateArgs)
	action, err := prog.Pvariable(actx.ID, GlobalVarSetAction, actionType, GlobalVarSetAction.New(templateArgs, target), rec.Range())
	if err != nil {
		return nil, err
	}
	prog.Add(action.Call("set_value", expr))
	logger.Debug("Set action emitted.", "action", actx.ID, "target", target.Name)
	return action, nil
}
