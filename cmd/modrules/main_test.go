package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/modrules/cmd/modrules/commands"
)

// inTempDir runs the test from a fresh working directory with a clean graft cache.
func inTempDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmpDir))

	originalArgs := os.Args
	graft.ResetDefaultCache()
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
		os.Args = originalArgs
		graft.ResetDefaultCache()
	})
	return tmpDir
}

func TestRun(t *testing.T) {
	rules := `version: "1"
pluginDir: /plugin
`

	tests := []struct {
		name         string
		args         []string
		expectedExit int
		contains     string
	}{
		{
			name:         "Resolve with rules file",
			args:         []string{"modrules", "resolve", "-c", "modrules.yaml", "Linux"},
			expectedExit: 0,
			contains:     "/plugin/Source/ThirdParty/nanodbc/linux-x64/lib/libnanodbc.a",
		},
		{
			name:         "Resolve unsupported platform",
			args:         []string{"modrules", "resolve", "Quest"},
			expectedExit: 1,
			contains:     "unknown platform: Quest",
		},
		{
			name:         "Resolve unsupported platform allowed",
			args:         []string{"modrules", "resolve", "--allow-unsupported", "Quest"},
			expectedExit: 0,
			contains:     "unknown platform: Quest",
		},
		{
			name:         "Missing rules file",
			args:         []string{"modrules", "resolve", "-c", "missing.yaml"},
			expectedExit: 1,
		},
		{
			name:         "Platforms",
			args:         []string{"modrules", "platforms"},
			expectedExit: 0,
			contains:     "windows-x64",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := inTempDir(t)
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "modrules.yaml"), []byte(rules), 0o600))

			os.Args = tt.args
			var out bytes.Buffer
			exitCode := run(func(c *commands.CLI) {
				c.SetArgs(tt.args[1:])
				c.SetOutput(&out)
			})
			assert.Equal(t, tt.expectedExit, exitCode)
			if tt.contains != "" {
				assert.Contains(t, out.String(), tt.contains)
			}
		})
	}
}

func TestRun_PersistsRecords(t *testing.T) {
	tmpDir := inTempDir(t)

	exitCode := run(func(c *commands.CLI) {
		c.SetArgs([]string{"resolve", "Win64"})
		c.SetOutput(&bytes.Buffer{})
	})
	require.Equal(t, 0, exitCode)

	data, err := os.ReadFile(filepath.Join(tmpDir, ".modrules", "descriptors.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "DatabaseConnector/windows-x64")
}

func TestRun_StoreInitError(t *testing.T) {
	tmpDir := inTempDir(t)

	// A directory where the store file belongs makes the store fail to load.
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, ".modrules", "descriptors.json"), 0o750))

	exitCode := run(func(c *commands.CLI) {
		c.SetArgs([]string{"resolve", "Linux"})
		c.SetOutput(&bytes.Buffer{})
	})
	assert.Equal(t, 1, exitCode)
}
