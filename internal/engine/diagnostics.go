package engine

import (
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/fwgen/internal/schema"
	"github.com/vk/fwgen/internal/symbols"
)

// Diagnostics converts a generation error into HCL diagnostics so it can be
// printed with source context. Errors without a known shape become a single
// diagnostic without a subject.
func Diagnostics(err error) hcl.Diagnostics {
	if err == nil {
		return nil
	}

	var verrs schema.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Diagnostics()
	}
	var verr *schema.SchemaValidationError
	if errors.As(err, &verr) {
		return hcl.Diagnostics{verr.Diagnostic()}
	}

	var dup *symbols.DuplicateIdentifierError
	if errors.As(err, &dup) {
		first, conflict := dup.First, dup.Conflict
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Duplicate id",
			Detail:   "The id \"" + dup.ID + "\" was already declared at " + first.String() + ".",
			Subject:  &conflict,
		}}
	}

	var unresolved *symbols.UnresolvedReferenceError
	if errors.As(err, &unresolved) {
		rng := unresolved.Range
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unresolved id",
			Detail:   "Couldn't find id \"" + unresolved.ID + "\".",
			Subject:  &rng,
		}}
	}

	var diags hcl.Diagnostics
	if errors.As(err, &diags) {
		return diags
	}

	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  err.Error(),
	}}
}
