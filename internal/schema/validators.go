package schema

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/vk/fwgen/internal/config"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Validator checks a single value and returns its normalized form.
type Validator struct {
	// Kind is a short, human-readable description used in error messages.
	Kind  string
	check func(cty.Value) (cty.Value, error)

	declares    string
	references  string
	templatable bool
}

// Check validates v and returns the normalized value.
func (v Validator) Check(val cty.Value) (cty.Value, error) {
	if val.IsNull() {
		return cty.NilVal, fmt.Errorf("expected %s, got null", v.Kind)
	}
	if !val.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("expected %s, got an unknown value", v.Kind)
	}
	return v.check(val)
}

// Declares reports the class of the symbol a DeclareID value introduces.
func (v Validator) Declares() (string, bool) {
	return v.declares, v.declares != ""
}

// References reports the class of the symbol a UseID value must resolve to.
func (v Validator) References() (string, bool) {
	return v.references, v.references != ""
}

// IsTemplatable reports whether the validator accepts lambdas.
func (v Validator) IsTemplatable() bool {
	return v.templatable
}

// StringStrict accepts only string values. Numbers and booleans are rejected
// rather than converted, since the raw text usually matters (e.g. "1.50").
var StringStrict = Validator{
	Kind: "string",
	check: func(v cty.Value) (cty.Value, error) {
		if v.Type() == cty.String {
			return v, nil
		}
		if v.Type() == cty.Number || v.Type() == cty.Bool {
			return cty.NilVal, errors.New("must be a string, did you forget quotes?")
		}
		return cty.NilVal, fmt.Errorf("expected string, got %s", friendlyName(v.Type()))
	},
}

// NonEmptyString is StringStrict that also rejects empty and blank strings.
var NonEmptyString = Validator{
	Kind: "non-empty string",
	check: func(v cty.Value) (cty.Value, error) {
		v, err := StringStrict.check(v)
		if err != nil {
			return cty.NilVal, err
		}
		if strings.TrimSpace(v.AsString()) == "" {
			return cty.NilVal, errors.New("string must not be empty")
		}
		return v, nil
	},
}

var booleanWords = map[string]bool{
	"true": true, "yes": true, "on": true, "enable": true,
	"false": false, "no": false, "off": false, "disable": false,
}

// Boolean accepts booleans and the usual boolean words, normalized to cty.Bool.
var Boolean = Validator{
	Kind: "boolean",
	check: func(v cty.Value) (cty.Value, error) {
		switch v.Type() {
		case cty.Bool:
			return v, nil
		case cty.String:
			if b, ok := booleanWords[strings.ToLower(strings.TrimSpace(v.AsString()))]; ok {
				return cty.BoolVal(b), nil
			}
			return cty.NilVal, fmt.Errorf("%q is not a valid boolean, use true or false", v.AsString())
		}
		return cty.NilVal, fmt.Errorf("expected boolean, got %s", friendlyName(v.Type()))
	},
}

// Float accepts numbers and numeric strings.
var Float = Validator{
	Kind: "number",
	check: func(v cty.Value) (cty.Value, error) {
		if v.Type() != cty.Number && v.Type() != cty.String {
			return cty.NilVal, fmt.Errorf("expected number, got %s", friendlyName(v.Type()))
		}
		n, err := convert.Convert(v, cty.Number)
		if err != nil {
			return cty.NilVal, fmt.Errorf("expected number: %w", err)
		}
		if n.IsNull() || !n.IsKnown() {
			return n, nil
		}
		bf := n.AsBigFloat()
		if bf.IsInf() {
			return cty.NilVal, errors.New("must be a finite number")
		}
		// Emitted as a C++ float literal.
		if f, _ := bf.Float32(); math.IsInf(float64(f), 0) {
			return cty.NilVal, fmt.Errorf("%s is out of range for a float", bf.Text('g', 6))
		}
		return n, nil
	},
}

// OneOf accepts one of the given options, compared case-insensitively and
// normalized to upper case.
func OneOf(options ...string) Validator {
	allowed := make(map[string]struct{}, len(options))
	for _, o := range options {
		allowed[strings.ToUpper(o)] = struct{}{}
	}
	return Validator{
		Kind: "one of " + strings.Join(options, ", "),
		check: func(v cty.Value) (cty.Value, error) {
			v, err := StringStrict.check(v)
			if err != nil {
				return cty.NilVal, err
			}
			s := strings.ToUpper(strings.TrimSpace(v.AsString()))
			if _, ok := allowed[s]; !ok {
				return cty.NilVal, fmt.Errorf("unknown value %q, valid options are %s", v.AsString(), strings.Join(options, ", "))
			}
			return cty.StringVal(s), nil
		},
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reservedWords = map[string]struct{}{
	"alignas": {}, "alignof": {}, "and": {}, "asm": {}, "auto": {}, "bool": {}, "break": {},
	"case": {}, "catch": {}, "char": {}, "class": {}, "const": {}, "constexpr": {},
	"continue": {}, "decltype": {}, "default": {}, "delete": {}, "do": {}, "double": {},
	"else": {}, "enum": {}, "explicit": {}, "export": {}, "extern": {}, "false": {},
	"float": {}, "for": {}, "friend": {}, "goto": {}, "if": {}, "inline": {}, "int": {},
	"long": {}, "mutable": {}, "namespace": {}, "new": {}, "noexcept": {}, "not": {},
	"nullptr": {}, "operator": {}, "or": {}, "private": {}, "protected": {}, "public": {},
	"register": {}, "return": {}, "short": {}, "signed": {}, "sizeof": {}, "static": {},
	"struct": {}, "switch": {}, "template": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typedef": {}, "typename": {}, "union": {}, "unsigned": {}, "using": {},
	"virtual": {}, "void": {}, "volatile": {}, "while": {},
	// Names the generated program already uses.
	"App": {}, "setup": {}, "loop": {}, "id": {},
}

func checkIdentifier(v cty.Value) (cty.Value, error) {
	v, err := StringStrict.check(v)
	if err != nil {
		return cty.NilVal, err
	}
	s := v.AsString()
	if !identifierPattern.MatchString(s) {
		return cty.NilVal, fmt.Errorf("%q is not a valid identifier, use letters, digits and underscores only", s)
	}
	if _, ok := reservedWords[s]; ok {
		return cty.NilVal, fmt.Errorf("%q is a reserved word and cannot be used as an id", s)
	}
	return v, nil
}

// Identifier accepts a plain C++ identifier that is not a symbol, such as a
// lambda parameter name.
var Identifier = Validator{Kind: "identifier", check: checkIdentifier}

// DeclareID accepts an identifier that introduces a new symbol of class.
// Uniqueness is enforced by the symbol table during generation.
func DeclareID(class string) Validator {
	return Validator{Kind: "identifier", check: checkIdentifier, declares: class}
}

// UseID accepts an identifier that must refer to a symbol of class.
func UseID(class string) Validator {
	return Validator{Kind: "identifier", check: checkIdentifier, references: class}
}

// Templatable accepts either a lambda or a value accepted by inner.
func Templatable(inner Validator) Validator {
	return Validator{
		Kind: inner.Kind + " or lambda",
		check: func(v cty.Value) (cty.Value, error) {
			if _, ok := config.AsLambda(v); ok {
				return v, nil
			}
			return inner.Check(v)
		},
		templatable: true,
	}
}

func friendlyName(t cty.Type) string {
	if t.Equals(config.LambdaType) {
		return "lambda"
	}
	return t.FriendlyName()
}
