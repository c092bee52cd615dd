package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/fwgen/internal/ctxlog"
)

// ValidateRegistry checks that every registered definition is usable: it
// has a schema and a handler, and a component schema declares exactly one id
// so its stage can be addressed by other blocks.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, domain := range r.Domains() {
		def := r.components[domain]
		if def.Schema == nil {
			errs = append(errs, fmt.Sprintf("component '%s': no schema", domain))
			continue
		}
		if def.ToCode == nil {
			errs = append(errs, fmt.Sprintf("component '%s': no code handler", domain))
		}
		declaring := 0
		for _, key := range def.Schema.Keys() {
			f, _ := def.Schema.Field(key)
			if _, ok := f.Validator.Declares(); ok {
				declaring++
				if !f.Required {
					errs = append(errs, fmt.Sprintf("component '%s': id key '%s' must be required", domain, key))
				}
			}
		}
		if declaring != 1 {
			errs = append(errs, fmt.Sprintf("component '%s': schema must declare exactly one id, found %d", domain, declaring))
		}
	}

	for _, name := range r.Actions() {
		def := r.actions[name]
		if def.Schema == nil {
			errs = append(errs, fmt.Sprintf("action '%s': no schema", name))
		}
		if def.ToCode == nil {
			errs = append(errs, fmt.Sprintf("action '%s': no code handler", name))
		}
		if def.Type == nil {
			errs = append(errs, fmt.Sprintf("action '%s': no action type", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	logger.Debug("Registry validation passed.", "components", len(r.components), "actions", len(r.actions))
	return nil
}
