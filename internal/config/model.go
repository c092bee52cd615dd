package config

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of a firmware
// configuration: the component blocks and the automations that drive them.
type Model struct {
	Components  []*Component
	Automations []*Automation

	// Files holds parsed HCL sources, keyed by filename, so diagnostics can
	// print source snippets. YAML inputs leave no entry here.
	Files map[string]*hcl.File
}

// NewModel returns an empty model ready to be populated by a loader.
func NewModel() *Model {
	return &Model{Files: make(map[string]*hcl.File)}
}

// Merge appends the blocks of other to m, preserving declaration order.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	m.Components = append(m.Components, other.Components...)
	m.Automations = append(m.Automations, other.Automations...)
	for name, f := range other.Files {
		m.Files[name] = f
	}
}

// Component is one configuration block of a component domain, e.g. a single
// `globals` entry.
type Component struct {
	Domain     string
	Attributes map[string]*Attribute
	// Order lists attribute names as written, for stable output.
	Order []string
	Range hcl.Range
}

// Attribute is a single key/value pair with the range it was declared at.
type Attribute struct {
	Name  string
	Value cty.Value
	Range hcl.Range
}

// Automation groups an ordered list of actions that run when the automation's
// trigger fires. Args are the runtime arguments passed to every action.
type Automation struct {
	ID      string
	Args    []*Arg
	Actions []*Action
	Range   hcl.Range
}

// Arg is a typed runtime argument of an automation.
type Arg struct {
	Name string
	Type string
}

// Action is one step of an automation, e.g. `globals.set`.
type Action struct {
	Name       string
	Attributes map[string]*Attribute
	Order      []string
	Range      hcl.Range
}

// SortedNames returns attribute names in lexical order.
func SortedNames(attrs map[string]*Attribute) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OrderedNames returns the names listed in order that exist in attrs,
// followed by the remaining names in lexical order.
func OrderedNames(order []string, attrs map[string]*Attribute) []string {
	names := make([]string, 0, len(attrs))
	seen := make(map[string]struct{}, len(attrs))
	for _, name := range order {
		if _, ok := attrs[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, name := range SortedNames(attrs) {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}
