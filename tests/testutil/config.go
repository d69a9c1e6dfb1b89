package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/systmms/opsync/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configurations.
//
// This builder allows programmatic creation of opsync.yaml configurations
// for testing without manually writing YAML strings. Targets accumulate in
// order; the scoping methods (WithVault, WithItem, WithAccount, WithMode)
// apply to the most recently added target.
//
// Example usage:
//
//	path := NewTestConfig(t).
//	    WithTemplateTarget("app-env", source, destination).
//	    WithVault("Production").
//	    Write()
type TestConfigBuilder struct {
	config  *config.Definition
	tempDir string
	t       *testing.T
}

// NewTestConfig creates a new TestConfigBuilder.
//
// The builder starts with a minimal configuration (version: 1, no
// targets). Use the WithX methods to add targets and scope them.
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	return &TestConfigBuilder{
		config:  &config.Definition{Version: 1},
		tempDir: t.TempDir(),
		t:       t,
	}
}

// WithTemplateTarget appends a template target rendering source into
// destination.
//
// Returns the builder for method chaining.
func (b *TestConfigBuilder) WithTemplateTarget(name, source, destination string) *TestConfigBuilder {
	b.t.Helper()

	b.config.Items = append(b.config.Items, config.Target{
		Name:        name,
		Type:        config.TypeTemplate,
		Source:      source,
		Destination: destination,
	})
	return b
}

// WithFileTarget appends a file target copying the named document item
// into destination.
//
// Returns the builder for method chaining.
func (b *TestConfigBuilder) WithFileTarget(name, destination, item string) *TestConfigBuilder {
	b.t.Helper()

	b.config.Items = append(b.config.Items, config.Target{
		Name:        name,
		Type:        config.TypeFile,
		Destination: destination,
		Item:        item,
	})
	return b
}

// WithVault sets the default vault on the most recently added target.
func (b *TestConfigBuilder) WithVault(vault string) *TestConfigBuilder {
	b.t.Helper()

	b.last().Vault = vault
	return b
}

// WithItem sets the default item on the most recently added target.
func (b *TestConfigBuilder) WithItem(item string) *TestConfigBuilder {
	b.t.Helper()

	b.last().Item = item
	return b
}

// WithAccount scopes the most recently added target to one account.
func (b *TestConfigBuilder) WithAccount(account string) *TestConfigBuilder {
	b.t.Helper()

	b.last().Account = account
	return b
}

// WithMode sets the output file mode on the most recently added target.
// The mode is an octal string such as "0400".
func (b *TestConfigBuilder) WithMode(mode string) *TestConfigBuilder {
	b.t.Helper()

	b.last().Mode = mode
	return b
}

func (b *TestConfigBuilder) last() *config.Target {
	if len(b.config.Items) == 0 {
		b.t.Fatal("no target added yet; call WithTemplateTarget or WithFileTarget first")
	}
	return &b.config.Items[len(b.config.Items)-1]
}

// Build returns the built configuration Definition.
//
// This returns the in-memory configuration object. Use Write() or
// WriteYAML() if you need a file on disk.
func (b *TestConfigBuilder) Build() *config.Definition {
	b.t.Helper()

	return b.config
}

// Write writes the configuration to a temporary file and returns the path.
//
// The file is created in a temporary directory and will be cleaned up
// automatically by the testing framework.
//
// Returns the absolute path to the written configuration file.
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	path := filepath.Join(b.tempDir, "opsync.yaml")
	if err := b.WriteYAML(path); err != nil {
		b.t.Fatalf("Failed to write test config: %v", err)
	}

	return path
}

// WriteYAML writes the configuration to a specific path.
//
// Parameters:
//   - path: Absolute or relative path to write the YAML file
//
// Returns an error if writing fails.
func (b *TestConfigBuilder) WriteYAML(path string) error {
	b.t.Helper()

	data, err := yaml.Marshal(b.config)
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Write file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	return nil
}

// WriteTestConfig is a convenience function for writing a YAML string to a file.
//
// This is useful for tests that have hand-written YAML test cases.
// The file is created in a temporary directory and cleaned up automatically.
//
// Parameters:
//   - t: Testing context
//   - yamlContent: Raw YAML configuration string
//
// Returns the absolute path to the written configuration file.
//
// Example:
//
//	path := WriteTestConfig(t, `
//	version: 1
//	items:
//	  - name: app-env
//	    type: template
//	    source: ./app.env.tpl
//	    destination: ./.env
//	`)
func WriteTestConfig(t *testing.T, yamlContent string) string {
	t.Helper()

	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "opsync.yaml")

	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	return path
}

// LoadTestConfig loads a configuration from a file path.
//
// This is a convenience wrapper around config loading for tests.
// It handles errors by failing the test immediately.
//
// Parameters:
//   - t: Testing context
//   - path: Path to the configuration file
//
// Returns the loaded Configuration Definition.
func LoadTestConfig(t *testing.T, path string) *config.Definition {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read config: %v", err)
	}

	var def config.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}

	return &def
}
