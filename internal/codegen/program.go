package codegen

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/symbols"
)

const mainTemplate = `// Auto-generated by fwgen
// DO NOT EDIT - This file is generated from the device configuration

{{range .Includes}}#include "{{.}}"
{{end}}
{{range .Globals}}{{.}}
{{end}}
void setup() {
{{range .Statements}}  {{indent .}};
{{end}}  App.setup();
}

void loop() {
  App.loop();
}
`

var mainTmpl = template.Must(template.New("main").Funcs(template.FuncMap{
	"indent": indent,
}).Parse(mainTemplate))

// Program is the generated C++ translation unit.
type Program struct {
	includes   map[string]struct{}
	globals    []string
	statements []Expression
	symbols    *symbols.Table
}

// NewProgram returns an empty program with its own symbol table.
func NewProgram() *Program {
	return &Program{
		includes: make(map[string]struct{}),
		symbols:  symbols.NewTable(),
	}
}

// Symbols returns the program's symbol table.
func (p *Program) Symbols() *symbols.Table {
	return p.symbols
}

// AddInclude adds a header to the include list. Duplicates are ignored.
func (p *Program) AddInclude(header string) {
	p.includes[header] = struct{}{}
}

// AddGlobal appends a line to the global declaration section.
func (p *Program) AddGlobal(line string) {
	p.globals = append(p.globals, line)
}

// Add appends a statement to setup().
func (p *Program) Add(expr Expression) {
	p.statements = append(p.statements, expr)
}

// Statements returns the setup() statements emitted so far.
func (p *Program) Statements() []string {
	out := make([]string, len(p.statements))
	for i, s := range p.statements {
		out[i] = s.String()
	}
	return out
}

// Globals returns the global declarations emitted so far.
func (p *Program) Globals() []string {
	return append([]string(nil), p.globals...)
}

// Variable is an emitted pointer variable usable in expressions.
type Variable struct {
	*symbols.Variable
}

func (v *Variable) String() string { return v.Name }

// Call builds `name->method(args)` without emitting it.
func (v *Variable) Call(method string, args ...Expression) *MemberCall {
	return &MemberCall{Base: v, Method: method, Args: args}
}

// Pvariable declares a global pointer named id of type typ, assigns rhs to it
// in setup() and records it in the symbol table.
func (p *Program) Pvariable(id string, class *Class, typ Expression, rhs Expression, rng hcl.Range) (*Variable, error) {
	sv, err := p.symbols.Declare(&symbols.Variable{
		Name:  id,
		Class: class.String(),
		Type:  typ.String(),
		Range: rng,
	})
	if err != nil {
		return nil, err
	}
	p.AddGlobal(fmt.Sprintf("%s *%s;", typ, id))
	p.Add(RawExpression(fmt.Sprintf("%s = %s", id, rhs)))
	return &Variable{Variable: sv}, nil
}

// GetVariable resolves id in the symbol table.
func (p *Program) GetVariable(id string, rng hcl.Range) (*Variable, error) {
	sv, err := p.symbols.Lookup(id, rng)
	if err != nil {
		return nil, err
	}
	return &Variable{Variable: sv}, nil
}

// Render writes main.cpp to w.
func (p *Program) Render(w io.Writer) error {
	includes := make([]string, 0, len(p.includes))
	for inc := range p.includes {
		includes = append(includes, inc)
	}
	sort.Strings(includes)

	var buf bytes.Buffer
	err := mainTmpl.Execute(&buf, struct {
		Includes   []string
		Globals    []string
		Statements []string
	}{includes, p.globals, p.Statements()})
	if err != nil {
		return fmt.Errorf("render main.cpp: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// indent re-indents continuation lines of multi-line statements (lambdas).
func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n  ")
}
