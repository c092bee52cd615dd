package codegen

import (
	"fmt"

	"github.com/vk/fwgen/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// Templatable is a value that is either known at generation time (Literal)
// or depends on the runtime arguments of the surrounding automation
// (Deferred). It is resolved with Resolve once those arguments are known.
type Templatable interface {
	Resolve(args []Param) (Expression, error)
	isTemplatable()
}

// Literal is a templatable value fixed at generation time.
type Literal struct {
	Expr Expression
}

// Resolve returns the literal expression; args are ignored.
func (l Literal) Resolve([]Param) (Expression, error) { return l.Expr, nil }
func (Literal) isTemplatable()                         {}

// Deferred is a templatable value built from the automation's arguments.
type Deferred struct {
	resolve func(args []Param) (Expression, error)
}

// Resolve builds the expression for the given argument list.
func (d Deferred) Resolve(args []Param) (Expression, error) { return d.resolve(args) }
func (Deferred) isTemplatable()                              {}

// NewTemplatable turns a validated value into a Templatable. Lambdas become
// Deferred values resolved into a capturing C++ lambda returning outputType
// (omitted when nil); anything else goes through toExpr.
func NewTemplatable(v cty.Value, outputType Expression, toExpr func(cty.Value) (Expression, error)) (Templatable, error) {
	if l, ok := config.AsLambda(v); ok {
		body := l.Body
		return Deferred{resolve: func(args []Param) (Expression, error) {
			return &LambdaExpression{
				Capture:    "=",
				Params:     append([]Param(nil), args...),
				ReturnType: outputType,
				Body:       body,
			}, nil
		}}, nil
	}
	expr, err := toExpr(v)
	if err != nil {
		return nil, err
	}
	return Literal{Expr: expr}, nil
}

// RawFromString converts a string value into a RawExpression.
func RawFromString(v cty.Value) (Expression, error) {
	if v.Type() != cty.String {
		return nil, fmt.Errorf("expected string, got %s", v.Type().FriendlyName())
	}
	return RawExpression(v.AsString()), nil
}
