// Package testutil provides the harness shared by the integration tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/fwgen/internal/app"
	"github.com/vk/fwgen/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Output is the generated program, or the dump with DumpConfig set.
	Output    string
	LogOutput string
	Err       error
	App       *app.App
}

// RunIntegrationTest writes files into a temporary directory and runs one
// generation pass over it, writing the program to the result.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithConfig(t, files, app.Config{}, modules...)
}

// RunIntegrationTestWithConfig is RunIntegrationTest with extra configuration,
// e.g. DumpConfig. ConfigPath and OutputPath are set by the harness.
func RunIntegrationTestWithConfig(t *testing.T, files map[string]string, cfg app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	// 1. Write all files to a temporary directory. Relative paths such as
	//    "devices/a.hcl" create the subdirectory structure.
	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	// 2. Configure the app to read the whole directory and print the program.
	cfg.ConfigPath = tmpDir
	cfg.OutputPath = app.StdoutPath
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	// 3. Run it.
	testApp, out, logs := app.SetupAppTest(t, appConfig, modules...)
	runErr := testApp.Run(context.Background())

	return &HarnessResult{
		Output:    out.String(),
		LogOutput: logs.String(),
		Err:       runErr,
		App:       testApp,
	}
}
