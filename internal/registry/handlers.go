package registry

import (
	"fmt"
	"log/slog"

	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/schema"
)

// RegisterComponent registers a component domain.
func (r *Registry) RegisterComponent(def *ComponentDefinition) {
	if _, exists := r.components[def.Domain]; exists {
		panic(fmt.Sprintf("component with domain '%s' already registered", def.Domain))
	}
	slog.Debug("Registering component.", "domain", def.Domain)
	r.components[def.Domain] = def
}

// RegisterAction registers an automation action.
func (r *Registry) RegisterAction(name string, actionType *codegen.Class, s *schema.Schema, handler ActionFunc) {
	if _, exists := r.actions[name]; exists {
		panic(fmt.Sprintf("action with name '%s' already registered", name))
	}
	slog.Debug("Registering action.", "name", name, "type", actionType.String())
	r.actions[name] = &ActionDefinition{Name: name, Type: actionType, Schema: s, ToCode: handler}
}
