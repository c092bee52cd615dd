package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// LambdaFunc wraps its string argument into a config.Lambda.
var LambdaFunc = function.New(&function.Spec{
	Description: "Marks a string as a C++ lambda body evaluated by the firmware.",
	Params: []function.Parameter{
		{Name: "body", Type: cty.String},
	},
	Type: function.StaticReturnType(config.LambdaType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		return config.LambdaVal(args[0].AsString()), nil
	},
})

// newEvalContext returns the context attribute expressions are evaluated in.
// No variables are defined; ids are always written as strings.
func newEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Functions: map[string]function.Function{
			"lambda": LambdaFunc,
		},
	}
}
