package integration_tests

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fwgen/internal/schema"
	"github.com/vk/fwgen/internal/symbols"
	"github.com/vk/fwgen/internal/testutil"
)

// Test for: invalid hcl is rejected
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	// --- Arrange ---
	// An HCL string with a clear syntax error (a missing closing brace).
	files := map[string]string{
		"main.hcl": `
		globals {
			id = "g"
		// Missing closing brace here
	`,
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files)

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "failed to load HCL configuration")
	assert.Contains(t, result.LogOutput, "Unclosed configuration block")
	assert.Empty(t, result.Output)
}

// Test for: a set action on an undeclared global
func TestErrorHandling_UnresolvedID(t *testing.T) {
	files := map[string]string{
		"main.hcl": `
automation "on_boot" {
  action "globals.set" {
    id    = "missing"
    value = "1"
  }
}
`,
	}

	result := testutil.RunIntegrationTest(t, files)

	var unresolved *symbols.UnresolvedReferenceError
	require.True(t, errors.As(result.Err, &unresolved), "got %v", result.Err)
	assert.Equal(t, "missing", unresolved.ID)
	assert.Contains(t, result.LogOutput, "Unresolved id")
	assert.Empty(t, result.Output)
}

// Test for: the same id declared twice reports both places
func TestErrorHandling_DuplicateID(t *testing.T) {
	testCases := []struct {
		name         string
		files        map[string]string
		wantFirst    string
		wantConflict string
	}{
		{
			name: "same file",
			files: map[string]string{
				"main.hcl": "globals {\n  id   = \"g\"\n  type = \"int\"\n}\n\nglobals {\n  id   = \"g\"\n  type = \"float\"\n}\n",
			},
			wantFirst:    "main.hcl:2",
			wantConflict: "main.hcl:7",
		},
		{
			name: "files are read in name order",
			files: map[string]string{
				"a.hcl": "globals {\n  id   = \"other\"\n  type = \"int\"\n}\n\nglobals {\n  id   = \"g\"\n  type = \"int\"\n}\n",
				"b.hcl": "globals {\n  id   = \"g\"\n  type = \"int\"\n}\n",
			},
			wantFirst:    "a.hcl:7",
			wantConflict: "b.hcl:2",
		},
		{
			name: "hcl is read before yaml",
			files: map[string]string{
				"a.yaml": "globals:\n  - id: other\n    type: int\n  - id: g\n    type: int\n",
				"b.hcl":  "globals {\n  id   = \"g\"\n  type = \"int\"\n}\n",
			},
			wantFirst:    "b.hcl:2",
			wantConflict: "a.yaml:4",
		},
		{
			name: "automation named like a global",
			files: map[string]string{
				"main.hcl": `automation "g" {
  action "globals.set" {
    id    = "other"
    value = "1"
  }
}

globals {
  id   = "g"
  type = "int"
}

globals {
  id   = "other"
  type = "int"
}
`,
			},
			wantFirst:    "main.hcl:9",
			wantConflict: "main.hcl:1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Act ---
			result := testutil.RunIntegrationTest(t, tc.files)

			// --- Assert ---
			var dup *symbols.DuplicateIdentifierError
			require.True(t, errors.As(result.Err, &dup), "got %v", result.Err)
			assert.Equal(t, "g", dup.ID)
			assert.Equal(t, tc.wantFirst, position(dup.First))
			assert.Equal(t, tc.wantConflict, position(dup.Conflict))
			assert.Contains(t, result.LogOutput, "Duplicate id")
		})
	}
}

func position(rng hcl.Range) string {
	return fmt.Sprintf("%s:%d", filepath.Base(rng.Filename), rng.Start.Line)
}

// Test for: every schema problem is reported in one run
func TestErrorHandling_AllValidationErrorsReported(t *testing.T) {
	files := map[string]string{
		"main.yaml": `
globals:
  - id: 1bad
    type: int
  - id: g
    type: int
    initial_value: 42
    inital_value: "1"
  - type: int
`,
	}

	result := testutil.RunIntegrationTest(t, files)

	var errs schema.ValidationErrors
	require.True(t, errors.As(result.Err, &errs), "got %v", result.Err)
	assert.Len(t, errs, 4)
	assert.Contains(t, result.LogOutput, "not a valid identifier")
	assert.Contains(t, result.LogOutput, "did you forget quotes?")
	assert.Contains(t, result.LogOutput, `did you mean "initial_value"?`)
	assert.Contains(t, result.LogOutput, "required key is missing")
}

// Test for: numbers that cannot be emitted as a C++ float are rejected
func TestErrorHandling_NonFiniteNumbers(t *testing.T) {
	testCases := []struct {
		name    string
		files   map[string]string
		wantMsg string
	}{
		{"yaml nan", map[string]string{"main.yaml": "globals:\n  - id: g\n    type: int\n    setup_priority: .nan\n"}, ".nan is not a finite number"},
		{"yaml infinity", map[string]string{"main.yaml": "globals:\n  - id: g\n    type: int\n    setup_priority: .inf\n"}, ".inf is not a finite number"},
		{"quoted infinity", map[string]string{"main.hcl": "globals {\n  id             = \"g\"\n  type           = \"int\"\n  setup_priority = \"inf\"\n}\n"}, "must be a finite number"},
		{"beyond float range", map[string]string{"main.yaml": "globals:\n  - id: g\n    type: int\n    setup_priority: 1e400\n"}, "out of range for a float"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := testutil.RunIntegrationTest(t, tc.files)

			require.Error(t, result.Err)
			assert.Contains(t, result.LogOutput, tc.wantMsg)
			assert.Empty(t, result.Output)
		})
	}
}
