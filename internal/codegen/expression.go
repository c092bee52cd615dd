package codegen

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a fragment of C++ source.
type Expression interface {
	String() string
}

// RawExpression is emitted verbatim.
type RawExpression string

func (r RawExpression) String() string { return string(r) }

// TemplateArguments renders as `<a, b>`.
type TemplateArguments []Expression

func (t TemplateArguments) String() string {
	if len(t) == 0 {
		return ""
	}
	parts := make([]string, len(t))
	for i, a := range t {
		parts[i] = a.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// Namespace is a C++ namespace, possibly nested.
type Namespace struct {
	Name   string
	parent *Namespace
}

// RootNamespace is the firmware's top-level namespace.
var RootNamespace = &Namespace{Name: "esphome"}

// Namespace returns a child namespace.
func (n *Namespace) Namespace(name string) *Namespace {
	return &Namespace{Name: name, parent: n}
}

// Class declares a class inside the namespace.
func (n *Namespace) Class(name string) *Class {
	return &Class{Name: name, ns: n}
}

// Qualified returns the namespace path relative to the root namespace, which
// the generated file imports with `using namespace`.
func (n *Namespace) Qualified() string {
	if n == nil || n.parent == nil {
		return ""
	}
	if p := n.parent.Qualified(); p != "" {
		return p + "::" + n.Name
	}
	return n.Name
}

// Class is a C++ class reference.
type Class struct {
	Name string
	ns   *Namespace
}

func (c *Class) String() string {
	if q := c.ns.Qualified(); q != "" {
		return q + "::" + c.Name
	}
	return c.Name
}

// Template applies template arguments to the class.
func (c *Class) Template(args TemplateArguments) *TemplatedClass {
	return &TemplatedClass{Class: c, Args: args}
}

// New returns a `new Class<args>(ctorArgs...)` expression.
func (c *Class) New(args TemplateArguments, ctorArgs ...Expression) *NewExpression {
	return &NewExpression{Type: c.Template(args), Args: ctorArgs}
}

// Variadic applies template arguments to a variadic class template, which
// needs `<>` even without arguments.
func (c *Class) Variadic(args TemplateArguments) *TemplatedClass {
	return &TemplatedClass{Class: c, Args: args, variadic: true}
}

// TemplatedClass is a class with its template arguments applied.
type TemplatedClass struct {
	Class *Class
	Args  TemplateArguments

	variadic bool
}

func (t *TemplatedClass) String() string {
	if t.variadic && len(t.Args) == 0 {
		return t.Class.String() + "<>"
	}
	return t.Class.String() + t.Args.String()
}

// NewExpression allocates an object: `new T(args)`.
type NewExpression struct {
	Type Expression
	Args []Expression
}

func (n *NewExpression) String() string {
	return "new " + n.Type.String() + "(" + joinArgs(n.Args) + ")"
}

// MemberCall calls a method through a pointer: `obj->method(args)`.
type MemberCall struct {
	Base   Expression
	Method string
	Args   []Expression
}

func (m *MemberCall) String() string {
	return m.Base.String() + "->" + m.Method + "(" + joinArgs(m.Args) + ")"
}

// Call is a free function or static call: `fn(args)`.
type Call struct {
	Func Expression
	Args []Expression
}

func (c *Call) String() string {
	return c.Func.String() + "(" + joinArgs(c.Args) + ")"
}

// ArrayInitializer renders a braced list: `{a, b}`.
type ArrayInitializer []Expression

func (a ArrayInitializer) String() string {
	return "{" + joinArgs(a) + "}"
}

// Param is a typed lambda parameter.
type Param struct {
	Type Expression
	Name string
}

func (p Param) String() string {
	return p.Type.String() + " " + p.Name
}

// LambdaExpression is a C++ lambda. ReturnType may be nil.
type LambdaExpression struct {
	Capture    string
	Params     []Param
	ReturnType Expression
	Body       string
}

func (l *LambdaExpression) String() string {
	params := make([]string, len(l.Params))
	for i, p := range l.Params {
		params[i] = p.String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s](%s)", l.Capture, strings.Join(params, ", "))
	if l.ReturnType != nil {
		sb.WriteString(" -> ")
		sb.WriteString(l.ReturnType.String())
	}
	sb.WriteString(" {\n")
	sb.WriteString(strings.TrimSpace(l.Body))
	sb.WriteString("\n}")
	return sb.String()
}

// BoolLiteral renders true or false.
type BoolLiteral bool

func (b BoolLiteral) String() string {
	if b {
		return "true"
	}
	return "false"
}

// FloatLiteral renders a float constant: `-100.0f`.
type FloatLiteral float64

func (f FloatLiteral) String() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "f"
}

// Uint32Literal renders an unsigned 32-bit constant: `123UL`.
type Uint32Literal uint32

func (u Uint32Literal) String() string {
	return strconv.FormatUint(uint64(u), 10) + "UL"
}

// StringLiteral renders a quoted, escaped C++ string.
type StringLiteral string

func (s StringLiteral) String() string {
	return strconv.Quote(string(s))
}

func joinArgs(args []Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
