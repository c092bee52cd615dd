package schema

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// SchemaValidationError reports a single key that failed validation.
type SchemaValidationError struct {
	Key     string
	Range   hcl.Range
	Summary string
	Detail  string
}

func (e *SchemaValidationError) Error() string {
	var sb strings.Builder
	if e.Range.Filename != "" {
		sb.WriteString(e.Range.String())
		sb.WriteString(": ")
	}
	if e.Key != "" {
		fmt.Fprintf(&sb, "[%s] ", e.Key)
	}
	sb.WriteString(e.Summary)
	if e.Detail != "" {
		sb.WriteString("; ")
		sb.WriteString(e.Detail)
	}
	return sb.String()
}

// Diagnostic converts the error into an HCL diagnostic for user-facing output.
func (e *SchemaValidationError) Diagnostic() *hcl.Diagnostic {
	rng := e.Range
	summary := e.Summary
	if e.Key != "" {
		summary = fmt.Sprintf("Invalid %q: %s", e.Key, e.Summary)
	}
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   e.Detail,
		Subject:  &rng,
	}
}

// ValidationErrors collects every problem found in one validation pass.
type ValidationErrors []*SchemaValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return "schema validation failed:\n- " + strings.Join(msgs, "\n- ")
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (errs ValidationErrors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// Diagnostics converts all errors into HCL diagnostics.
func (errs ValidationErrors) Diagnostics() hcl.Diagnostics {
	diags := make(hcl.Diagnostics, 0, len(errs))
	for _, e := range errs {
		diags = append(diags, e.Diagnostic())
	}
	return diags
}
