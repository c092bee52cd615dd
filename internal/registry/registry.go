package registry

import (
	"context"
	"sort"

	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/schema"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// ComponentFunc emits the code for one validated component block.
type ComponentFunc func(ctx context.Context, prog *codegen.Program, rec *schema.Record) error

// ComponentDefinition describes a component domain.
type ComponentDefinition struct {
	Domain   string
	Schema   *schema.Schema
	Includes []string
	ToCode   ComponentFunc
}

// ActionContext carries what an action handler needs from the surrounding
// automation.
type ActionContext struct {
	// ID is a fresh identifier for the action object.
	ID string
	// TemplateArgs are the automation's argument types.
	TemplateArgs codegen.TemplateArguments
	// Args are the automation's runtime arguments, used to resolve lambdas.
	Args []codegen.Param
}

// ActionFunc emits one action object and returns it so the automation can
// sequence it.
type ActionFunc func(ctx context.Context, prog *codegen.Program, rec *schema.Record, actx ActionContext) (*codegen.Variable, error)

// ActionDefinition describes an automation action.
type ActionDefinition struct {
	Name   string
	Type   *codegen.Class
	Schema *schema.Schema
	ToCode ActionFunc
}

// Registry holds all registered components and actions for a single
// application instance.
type Registry struct {
	components map[string]*ComponentDefinition
	actions    map[string]*ActionDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		components: make(map[string]*ComponentDefinition),
		actions:    make(map[string]*ActionDefinition),
	}
}

// Component returns the definition registered for domain.
func (r *Registry) Component(domain string) (*ComponentDefinition, bool) {
	def, ok := r.components[domain]
	return def, ok
}

// Action returns the definition registered for name.
func (r *Registry) Action(name string) (*ActionDefinition, bool) {
	def, ok := r.actions[name]
	return def, ok
}

// Domains returns the registered component domains, sorted.
func (r *Registry) Domains() []string {
	out := make([]string, 0, len(r.components))
	for d := range r.components {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Actions returns the registered action names, sorted.
func (r *Registry) Actions() []string {
	out := make([]string, 0, len(r.actions))
	for a := range r.actions {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
