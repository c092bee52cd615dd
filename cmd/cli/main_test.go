package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_GeneratesToStdout(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "device.yaml")
	err := os.WriteFile(filePath, []byte("globals:\n  - id: glob1\n    type: int\n    initial_value: \"42\"\n"), 0600)
	require.NoError(t, err, "failed to set up test file")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err = run(out, errOut, []string{"-o", "-", filePath})

	// --- Assert ---
	require.NoError(t, err, errOut.String())
	require.Contains(t, out.String(), "glob1 = new globals::GlobalsComponent<int>();")
	require.Contains(t, out.String(), "glob1->set_initial_value(42);")
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A syntax error is reported as a diagnostic, not a panic.
	invalidHCL := `
		globals {
			id = "g"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	err := os.WriteFile(filePath, []byte(invalidHCL), 0600)
	require.NoError(t, err, "failed to set up test file")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, errOut, []string{"-o", "-", filePath})

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "generation failed")
	require.Contains(t, errOut.String(), "Error: Unclosed configuration block")
	require.Empty(t, out.String())
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRecoverPanic(t *testing.T) {
	runPanicking := func() (err error) {
		defer recoverPanic(&err)
		panic("boom")
	}
	require.EqualError(t, runPanicking(), "fwgen panicked: boom")

	runClean := func() (err error) {
		defer recoverPanic(&err)
		return nil
	}
	require.NoError(t, runClean())
}
