package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

// setConfigFile sets the global configFile variable and registers a cleanup to restore it.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

type testWorkspace struct {
	configPath       string
	tracksDirectory  string
	exportsDirectory string
}

// setupWorkspace writes a config storing tracks as YAML files in a temporary directory.
func setupWorkspace(t *testing.T) testWorkspace {
	t.Helper()
	tmpDir := t.TempDir()
	ws := testWorkspace{
		configPath:       filepath.Join(tmpDir, "config.yml"),
		tracksDirectory:  filepath.Join(tmpDir, "tracks"),
		exportsDirectory: filepath.Join(tmpDir, "exports"),
	}
	content := fmt.Sprintf("storage:\n  driver: yaml\n  directory: %s\nexport:\n  directory: %s\n", ws.tracksDirectory, ws.exportsDirectory)
	require.NoError(t, os.WriteFile(ws.configPath, []byte(content), 0644))
	setConfigFile(t, ws.configPath)
	return ws
}

// runCommand executes the root command with args and stdin, returning what it printed.
func runCommand(t *testing.T, ws testWorkspace, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	rootCommand := newRootCommand()
	rootCommand.SetArgs(append([]string{"--config", ws.configPath}, args...))
	rootCommand.SetIn(strings.NewReader(stdin))
	var out bytes.Buffer
	rootCommand.SetOut(&out)
	rootCommand.SetErr(&out)
	err := rootCommand.Execute()
	return out.String(), err
}
