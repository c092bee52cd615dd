package config

import (
	"reflect"
	"regexp"

	"github.com/zclconf/go-cty/cty"
)

// Lambda is a C++ lambda body written by the user. It is evaluated by the
// firmware at runtime, never by the generator.
type Lambda struct {
	Body string
}

// LambdaType is the cty capsule type wrapping a *Lambda.
var LambdaType = cty.Capsule("lambda", reflect.TypeOf(Lambda{}))

// LambdaVal wraps a lambda body into a cty value.
func LambdaVal(body string) cty.Value {
	return cty.CapsuleVal(LambdaType, &Lambda{Body: body})
}

// AsLambda returns the lambda wrapped by v, if any.
func AsLambda(v cty.Value) (*Lambda, bool) {
	if v.IsNull() || !v.IsKnown() || !v.Type().Equals(LambdaType) {
		return nil, false
	}
	return v.EncapsulatedValue().(*Lambda), true
}

var lambdaIDPattern = regexp.MustCompile(`\bid\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)`)

// References returns the identifiers referenced through `id(name)` inside the
// lambda body, in order of first appearance.
func (l *Lambda) References() []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, m := range lambdaIDPattern.FindAllStringSubmatch(l.Body, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		refs = append(refs, m[1])
	}
	return refs
}
