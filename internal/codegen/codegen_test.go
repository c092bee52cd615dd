package codegen

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/symbols"
	"github.com/zclconf/go-cty/cty"
)

var (
	testNS     = RootNamespace.Namespace("globals")
	testGlobal = testNS.Class("GlobalsComponent")
)

func TestExpressions(t *testing.T) {
	intArgs := TemplateArguments{RawExpression("int")}

	testCases := []struct {
		name string
		expr Expression
		want string
	}{
		{"class", testGlobal, "globals::GlobalsComponent"},
		{"root class", RootNamespace.Class("Automation"), "Automation"},
		{"templated", testGlobal.Template(intArgs), "globals::GlobalsComponent<int>"},
		{"empty template args", RootNamespace.Class("Trigger").Template(nil), "Trigger"},
		{"variadic without args", RootNamespace.Class("Trigger").Variadic(nil), "Trigger<>"},
		{"variadic with args", RootNamespace.Class("Trigger").Variadic(TemplateArguments{RawExpression("float")}), "Trigger<float>"},
		{"new", testGlobal.New(intArgs), "new globals::GlobalsComponent<int>()"},
		{"member call", &MemberCall{Base: RawExpression("glob1"), Method: "set_value", Args: []Expression{RawExpression("100")}}, "glob1->set_value(100)"},
		{"call", &Call{Func: RawExpression("App.register_component"), Args: []Expression{RawExpression("glob1")}}, "App.register_component(glob1)"},
		{"array", ArrayInitializer{RawExpression("a"), RawExpression("b")}, "{a, b}"},
		{"bool", BoolLiteral(false), "false"},
		{"float", FloatLiteral(-100), "-100.0f"},
		{"float fraction", FloatLiteral(2.5), "2.5f"},
		{"uint32", Uint32Literal(4294967295), "4294967295UL"},
		{"string", StringLiteral("a \"b\""), `"a \"b\""`},
		{
			"lambda with return type",
			&LambdaExpression{Capture: "=", Params: []Param{{Type: RawExpression("float"), Name: "x"}}, ReturnType: RawExpression("int"), Body: " return x; "},
			"[=](float x) -> int {\nreturn x;\n}",
		},
		{
			"lambda without return type",
			&LambdaExpression{Capture: "=", Body: "return 1;"},
			"[=]() {\nreturn 1;\n}",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.expr.String())
		})
	}
}

func TestNewTemplatable(t *testing.T) {
	args := []Param{{Type: RawExpression("float"), Name: "x"}}

	t.Run("literal ignores args", func(t *testing.T) {
		tv, err := NewTemplatable(cty.StringVal("100"), nil, RawFromString)
		require.NoError(t, err)
		require.IsType(t, Literal{}, tv)
		expr, err := tv.Resolve(args)
		require.NoError(t, err)
		assert.Equal(t, "100", expr.String())
	})

	t.Run("lambda is deferred until args are known", func(t *testing.T) {
		tv, err := NewTemplatable(config.LambdaVal("return x * 2;"), nil, RawFromString)
		require.NoError(t, err)
		require.IsType(t, Deferred{}, tv)

		expr, err := tv.Resolve(args)
		require.NoError(t, err)
		assert.Equal(t, "[=](float x) {\nreturn x * 2;\n}", expr.String())

		expr, err = tv.Resolve(nil)
		require.NoError(t, err)
		assert.Equal(t, "[=]() {\nreturn x * 2;\n}", expr.String())
	})

	t.Run("conversion errors surface", func(t *testing.T) {
		_, err := NewTemplatable(cty.True, nil, RawFromString)
		assert.ErrorContains(t, err, "expected string")
	})
}

func TestProgram_Pvariable(t *testing.T) {
	p := NewProgram()
	typ := testGlobal.Template(TemplateArguments{RawExpression("int")})

	v, err := p.Pvariable("glob1", testGlobal, typ, testGlobal.New(TemplateArguments{RawExpression("int")}), hcl.Range{})
	require.NoError(t, err)
	assert.Equal(t, "glob1", v.String())
	assert.Equal(t, "globals::GlobalsComponent", v.Class)
	assert.Equal(t, "glob1->set_value(1)", v.Call("set_value", RawExpression("1")).String())

	_, err = p.Pvariable("glob1", testGlobal, typ, testGlobal.New(nil), hcl.Range{})
	var dup *symbols.DuplicateIdentifierError
	require.True(t, errors.As(err, &dup))

	got, err := p.GetVariable("glob1", hcl.Range{})
	require.NoError(t, err)
	assert.Equal(t, "globals::GlobalsComponent<int>", got.Type)

	_, err = p.GetVariable("nope", hcl.Range{})
	var unresolved *symbols.UnresolvedReferenceError
	assert.True(t, errors.As(err, &unresolved))
}

func TestProgram_Render(t *testing.T) {
	p := NewProgram()
	p.AddInclude("esphome.h")
	p.AddInclude("esphome.h")
	p.AddGlobal("using namespace esphome;")
	typ := testGlobal.Template(TemplateArguments{RawExpression("int")})
	v, err := p.Pvariable("glob1", testGlobal, typ, testGlobal.New(TemplateArguments{RawExpression("int")}), hcl.Range{})
	require.NoError(t, err)
	p.Add(v.Call("set_fn", &LambdaExpression{Capture: "=", Body: "return 1;"}))

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))

	want := `// Auto-generated by fwgen
// DO NOT EDIT - This file is generated from the device configuration

#include "esphome.h"

using namespace esphome;
globals::GlobalsComponent<int> *glob1;

void setup() {
  glob1 = new globals::GlobalsComponent<int>();
  glob1->set_fn([=]() {
  return 1;
  });
  App.setup();
}

void loop() {
  App.loop();
}
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("rendered program mismatch (-want +got):\n%s", diff)
	}
}
