package component

import (
	"context"

	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/schema"
)

// KeySetupPriority overrides the order in which the firmware sets up a
// component.
const KeySetupPriority = "setup_priority"

// Schema is the extension accepted by every component.
var Schema = schema.MustNew(
	schema.Optional(KeySetupPriority, schema.Float),
)

var registerComponent = codegen.RawExpression("App.register_component")

// Register emits the registration of v with the application, passing through
// the generic component options found in rec.
func Register(ctx context.Context, prog *codegen.Program, v *codegen.Variable, rec *schema.Record) error {
	logger := ctxlog.FromContext(ctx)
	prog.Add(&codegen.Call{Func: registerComponent, Args: []codegen.Expression{v}})

	if rec.Has(KeySetupPriority) {
		var prio float64
		if err := rec.Decode(KeySetupPriority, &prio); err != nil {
			return err
		}
		prog.Add(v.Call("set_setup_priority", codegen.FloatLiteral(prio)))
		logger.Debug("Setup priority overridden.", "id", v.Name, "priority", prio)
	}
	return nil
}
