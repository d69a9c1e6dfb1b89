package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/logging"
	"github.com/systmms/opsync/pkg/provider"
	"github.com/systmms/opsync/tests/fakes"
)

func newGetTestConfig() *config.Config {
	return &config.Config{Logger: logging.New(false, true)}
}

func TestGetCommand_PrintsRawValue(t *testing.T) {
	fake := fakes.NewFakeProvider("1password").
		WithSecret("Production", "db", "password", "hunter2")

	cmd := NewGetCommandWithProvider(newGetTestConfig(), fake)
	output := captureOutput(t, cmd, []string{"db", "password", "--vault", "Production"})

	// Raw value only, no trailing newline, ready for $(...) capture
	assert.Equal(t, "hunter2", output)
}

func TestGetCommand_AccountFlag(t *testing.T) {
	fake := fakes.NewFakeProvider("1password").
		WithSecretRef(provider.Reference{
			Account: "myteam.1password.com",
			Vault:   "Production",
			Item:    "db",
			Field:   "password",
		}, provider.SecretValue{Value: "scoped-value"})

	cmd := NewGetCommandWithProvider(newGetTestConfig(), fake)
	output := captureOutput(t, cmd, []string{
		"db", "password",
		"--vault", "Production",
		"--account", "myteam.1password.com",
	})

	assert.Equal(t, "scoped-value", output)
}

func TestGetCommand_JSON(t *testing.T) {
	fake := fakes.NewFakeProvider("1password").
		WithSecret("Production", "db", "password", "hunter2")

	cmd := NewGetCommandWithProvider(newGetTestConfig(), fake)
	output := captureOutput(t, cmd, []string{"db", "password", "--vault", "Production", "--json"})

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(output), &parsed))

	assert.Equal(t, "db", parsed["item"])
	assert.Equal(t, "password", parsed["field"])
	assert.Equal(t, "hunter2", parsed["value"])
	assert.Equal(t, "Production", parsed["vault"])
}

func TestGetCommand_NotFound(t *testing.T) {
	fake := fakes.NewFakeProvider("1password")

	cmd := NewGetCommandWithProvider(newGetTestConfig(), fake)
	cmd.SetArgs([]string{"db", "password"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetCommand_RequiresItemAndField(t *testing.T) {
	cmd := NewGetCommandWithProvider(newGetTestConfig(), fakes.NewFakeProvider("1password"))
	cmd.SetArgs([]string{"db"})

	err := cmd.Execute()
	require.Error(t, err)
}
