package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/logging"
)

func TestInitCommand_CreatesConfig(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "opsync.yaml")

	cfg := &config.Config{
		Path:   configPath,
		Logger: logging.New(false, true),
	}

	cmd := NewInitCommand(cfg)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	// Verify file was created
	_, err = os.Stat(configPath)
	require.NoError(t, err, "config file should exist")

	// Verify content contains expected elements
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)

	assert.Contains(t, string(content), "version:")
	assert.Contains(t, string(content), "items:")
	assert.Contains(t, string(content), "type: template")
}

func TestInitCommand_StarterConfigLoads(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "opsync.yaml")

	cfg := &config.Config{
		Path:   configPath,
		Logger: logging.New(false, true),
	}

	cmd := NewInitCommand(cfg)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	// The generated starter must itself be a valid config
	loaded := &config.Config{Path: configPath, Logger: logging.New(false, true)}
	require.NoError(t, loaded.Load())
	assert.Len(t, loaded.Definition.Items, 1)
	assert.Equal(t, "app-env", loaded.Definition.Items[0].Name)
}

func TestInitCommand_ExistingConfigError(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "opsync.yaml")

	// Create existing config file
	require.NoError(t, os.WriteFile(configPath, []byte("existing config"), 0644))

	cfg := &config.Config{
		Path:   configPath,
		Logger: logging.New(false, true),
	}

	cmd := NewInitCommand(cfg)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommand_CustomPath(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "custom", "opsync.yaml")

	// Create parent directory
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))

	cfg := &config.Config{
		Path:   configPath,
		Logger: logging.New(false, true),
	}

	cmd := NewInitCommand(cfg)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	// Verify file was created at custom path
	_, err = os.Stat(configPath)
	require.NoError(t, err, "config file should exist at custom path")
}
