package globals

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/config"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/registry"
	"github.com/vk/fwgen/internal/schema"
	"github.com/vk/fwgen/internal/symbols"
	"github.com/zclconf/go-cty/cty"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func validate(t *testing.T, s *schema.Schema, input map[string]cty.Value, file string) *schema.Record {
	t.Helper()
	attrs := make(map[string]*config.Attribute)
	for k, v := range input {
		attrs[k] = &config.Attribute{Name: k, Value: v, Range: hcl.Range{Filename: file, Start: hcl.Pos{Line: 1, Column: 1}}}
	}
	rec, err := s.Validate(testContext(), attrs, hcl.Range{Filename: file})
	require.NoError(t, err)
	return rec
}

func declare(t *testing.T, prog *codegen.Program, input map[string]cty.Value) {
	t.Helper()
	require.NoError(t, ToCode(testContext(), prog, validate(t, ConfigSchema, input, "globals.hcl")))
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	def, ok := r.Component(Domain)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "type", "initial_value", "restore_value", "setup_priority", "restore_mode"}, def.Schema.Keys())

	action, ok := r.Action("globals.set")
	require.True(t, ok)
	assert.Equal(t, "globals::GlobalVarSetAction", action.Type.String())
	require.NoError(t, r.ValidateRegistry(testContext()))
}

func TestToCode_WithInitialValue(t *testing.T) {
	prog := codegen.NewProgram()
	declare(t, prog, map[string]cty.Value{
		"id":            cty.StringVal("glob1"),
		"type":          cty.StringVal("int"),
		"initial_value": cty.StringVal("42"),
	})

	assert.Equal(t, []string{"globals::GlobalsComponent<int> *glob1;"}, prog.Globals())
	assert.Equal(t, []string{
		"glob1 = new globals::GlobalsComponent<int>()",
		"App.register_component(glob1)",
		"glob1->set_initial_value(42)",
	}, prog.Statements())

	v, err := prog.GetVariable("glob1", hcl.Range{})
	require.NoError(t, err)
	assert.Equal(t, "globals::GlobalsComponent<int>", v.Type)
}

func TestToCode_ZeroInitializer(t *testing.T) {
	prog := codegen.NewProgram()
	declare(t, prog, map[string]cty.Value{
		"id":   cty.StringVal("glob1"),
		"type": cty.StringVal("int"),
	})
	assert.Contains(t, prog.Statements(), "glob1->set_initial_value({})")
}

func TestToCode_DuplicateID(t *testing.T) {
	prog := codegen.NewProgram()
	declare(t, prog, map[string]cty.Value{"id": cty.StringVal("glob1"), "type": cty.StringVal("int")})

	rec := validate(t, ConfigSchema, map[string]cty.Value{"id": cty.StringVal("glob1"), "type": cty.StringVal("float")}, "other.hcl")
	err := ToCode(testContext(), prog, rec)

	var dup *symbols.DuplicateIdentifierError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "globals.hcl", dup.First.Filename)
	assert.Equal(t, "other.hcl", dup.Conflict.Filename)
}

func TestSetToCode_Literal(t *testing.T) {
	prog := codegen.NewProgram()
	declare(t, prog, map[string]cty.Value{"id": cty.StringVal("glob1"), "type": cty.StringVal("int")})
	before := len(prog.Statements())

	rec := validate(t, SetActionSchema, map[string]cty.Value{"id": cty.StringVal("glob1"), "value": cty.StringVal("100")}, "auto.hcl")
	action, err := SetToCode(testContext(), prog, rec, registry.ActionContext{ID: "globals_globalvarsetaction"})
	require.NoError(t, err)
	assert.Equal(t, "globals::GlobalVarSetAction<globals::GlobalsComponent<int>>", action.Type)

	assert.Equal(t, []string{
		"globals_globalvarsetaction = new globals::GlobalVarSetAction<globals::GlobalsComponent<int>>(glob1)",
		"globals_globalvarsetaction->set_value(100)",
	}, prog.Statements()[before:])
}

func TestSetToCode_LambdaWithArgs(t *testing.T) {
	prog := codegen.NewProgram()
	declare(t, prog, map[string]cty.Value{"id": cty.StringVal("glob1"), "type": cty.StringVal("float")})

	rec := validate(t, SetActionSchema, map[string]cty.Value{"id": cty.StringVal("glob1"), "value": config.LambdaVal("return x * 2;")}, "auto.hcl")
	actx := registry.ActionContext{
		ID:           "set_double",
		TemplateArgs: codegen.TemplateArguments{codegen.RawExpression("float")},
		Args:         []codegen.Param{{Type: codegen.RawExpression("float"), Name: "x"}},
	}
	_, err := SetToCode(testContext(), prog, rec, actx)
	require.NoError(t, err)

	stmts := prog.Statements()
	assert.Equal(t, "set_double = new globals::GlobalVarSetAction<globals::GlobalsComponent<float>, float>(glob1)", stmts[len(stmts)-2])
	assert.Equal(t, "set_double->set_value([=](float x) {\nreturn x * 2;\n})", stmts[len(stmts)-1])
}

func TestSetToCode_LogsLambdaReferences(t *testing.T) {
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	prog := codegen.NewProgram()
	declare(t, prog, map[string]cty.Value{"id": cty.StringVal("glob1"), "type": cty.StringVal("int")})
	declare(t, prog, map[string]cty.Value{"id": cty.StringVal("glob2"), "type": cty.StringVal("int")})

	rec := validate(t, SetActionSchema, map[string]cty.Value{"id": cty.StringVal("glob1"), "value": config.LambdaVal("return id(glob2) + 1;")}, "auto.hcl")
	_, err := SetToCode(ctx, prog, rec, registry.ActionContext{ID: "copy"})
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `"msg":"Set value is a lambda.","action":"copy","references":["glob2"]`)
}

func TestSetToCode_UnresolvedID(t *testing.T) {
	prog := codegen.NewProgram()
	rec := validate(t, SetActionSchema, map[string]cty.Value{"id": cty.StringVal("missing"), "value": cty.StringVal("1")}, "auto.hcl")

	_, err := SetToCode(testContext(), prog, rec, registry.ActionContext{ID: "a"})
	var unresolved *symbols.UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "missing", unresolved.ID)
	assert.Empty(t, prog.Statements())
	assert.Empty(t, prog.Globals())
}

func TestSetToCode_WrongClass(t *testing.T) {
	prog := codegen.NewProgram()
	other := codegen.RootNamespace.Class("Other")
	_, err := prog.Pvariable("thing", other, other, other.New(nil), hcl.Range{})
	require.NoError(t, err)

	rec := validate(t, SetActionSchema, map[string]cty.Value{"id": cty.StringVal("thing"), "value": cty.StringVal("1")}, "auto.hcl")
	_, err = SetToCode(testContext(), prog, rec, registry.ActionContext{ID: "a"})
	var verr *schema.SchemaValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Summary, "expected globals::GlobalsComponent")
}
