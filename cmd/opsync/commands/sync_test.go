package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/logging"
	"github.com/systmms/opsync/pkg/provider"
	"github.com/systmms/opsync/tests/fakes"
)

func TestSyncCommand_WritesTargets(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "app.env.tpl")
	envDest := filepath.Join(tempDir, ".env")
	keyDest := filepath.Join(tempDir, "deploy_key")
	require.NoError(t, os.WriteFile(source, []byte("DB_HOST={{db.host}}\nDB_PASS={{db.password}}\n"), 0644))

	configPath := filepath.Join(tempDir, "opsync.yaml")
	configYAML := fmt.Sprintf(`version: 1
items:
  - name: app-env
    type: template
    source: %s
    destination: %s
    vault: Platform
  - name: ssh-key
    type: file
    destination: %s
    vault: Infra
    item: Deploy Key
    mode: "0400"
`, source, envDest, keyDest)
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	cfg := &config.Config{Path: configPath, Logger: logging.New(false, true)}
	fake := fakes.NewFakeProvider("1password").
		WithSecret("Platform", "db", "host", "db.internal.example.com").
		WithSecret("Platform", "db", "password", "hunter2").
		WithDocument("Infra", "Deploy Key", []byte("KEY MATERIAL\n"))

	cmd := NewSyncCommandWithProvider(cfg, fake)
	output := captureOutput(t, cmd, []string{})

	content, err := os.ReadFile(envDest)
	require.NoError(t, err)
	assert.Equal(t, "DB_HOST=db.internal.example.com\nDB_PASS=hunter2\n", string(content))

	keyContent, err := os.ReadFile(keyDest)
	require.NoError(t, err)
	assert.Equal(t, "KEY MATERIAL\n", string(keyContent))

	info, err := os.Stat(keyDest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o400), info.Mode().Perm())

	assert.Contains(t, output, "app-env")
	assert.Contains(t, output, "ssh-key")
	assert.Contains(t, output, "✓ written")
	assert.Contains(t, output, "Summary: 2 written, 0 failed, 0 skipped")
}

func TestSyncCommand_OnlyFilter(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "a.tpl")
	destA := filepath.Join(tempDir, "a.out")
	destB := filepath.Join(tempDir, "b.out")
	require.NoError(t, os.WriteFile(source, []byte("v={{db.host}}\n"), 0644))

	configPath := filepath.Join(tempDir, "opsync.yaml")
	configYAML := fmt.Sprintf(`version: 1
items:
  - name: a
    type: template
    source: %s
    destination: %s
  - name: b
    type: template
    source: %s
    destination: %s
`, source, destA, source, destB)
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	cfg := &config.Config{Path: configPath, Logger: logging.New(false, true)}
	fake := fakes.NewFakeProvider("1password").
		WithSecret("", "db", "host", "h")

	cmd := NewSyncCommandWithProvider(cfg, fake)
	output := captureOutput(t, cmd, []string{"--only", "a"})

	assert.FileExists(t, destA)
	assert.NoFileExists(t, destB)
	assert.Contains(t, output, "Summary: 1 written, 0 failed, 0 skipped")
}

func TestSyncCommand_FailedTargetSetsExitError(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "a.tpl")
	dest := filepath.Join(tempDir, "a.out")
	require.NoError(t, os.WriteFile(source, []byte("v={{db.missing}}\n"), 0644))

	configPath := filepath.Join(tempDir, "opsync.yaml")
	configYAML := fmt.Sprintf(`version: 1
items:
  - name: a
    type: template
    source: %s
    destination: %s
`, source, dest)
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	cfg := &config.Config{Path: configPath, Logger: logging.New(false, true)}
	fake := fakes.NewFakeProvider("1password")

	cmd := NewSyncCommandWithProvider(cfg, fake)
	cmd.SetArgs([]string{})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync completed with 1 failed targets")
	assert.NoFileExists(t, dest)
}

func TestSyncCommand_PreflightFailureStopsRun(t *testing.T) {
	tempDir := t.TempDir()
	source := filepath.Join(tempDir, "a.tpl")
	dest := filepath.Join(tempDir, "a.out")
	require.NoError(t, os.WriteFile(source, []byte("v={{db.host}}\n"), 0644))

	configPath := filepath.Join(tempDir, "opsync.yaml")
	configYAML := fmt.Sprintf(`version: 1
items:
  - name: a
    type: template
    source: %s
    destination: %s
`, source, dest)
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	cfg := &config.Config{Path: configPath, Logger: logging.New(false, true)}
	fake := fakes.NewFakeProvider("1password").
		WithSecret("", "db", "host", "h").
		WithValidateError(&provider.AuthError{Provider: "1password", Message: "not signed in"})

	cmd := NewSyncCommandWithProvider(cfg, fake)
	cmd.SetArgs([]string{})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider error during preflight")
	assert.Contains(t, err.Error(), "op signin")
	assert.NoFileExists(t, dest)
	assert.Zero(t, fake.GetCallCount("Resolve"))
}

func TestSyncCommand_UnknownOnlyTarget(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "opsync.yaml")
	configYAML := `version: 1
items:
  - name: a
    type: file
    destination: /tmp/a
    item: thing
`
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0644))

	cfg := &config.Config{Path: configPath, Logger: logging.New(false, true)}
	cmd := NewSyncCommandWithProvider(cfg, fakes.NewFakeProvider("1password"))
	cmd.SetArgs([]string{"--only", "nope"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

// captureOutput captures stdout while executing a command.
func captureOutput(t *testing.T, cmd *cobra.Command, args []string) string {
	t.Helper()

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Set args and execute
	if args != nil {
		cmd.SetArgs(args)
	}

	err := cmd.Execute()
	if err != nil {
		_ = w.Close()
		os.Stdout = old
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		t.Logf("Command output before error: %s", buf.String())
		require.NoError(t, err)
	}

	// Restore stdout and read output
	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	return buf.String()
}
