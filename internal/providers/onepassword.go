package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/systmms/opsync/internal/logging"
	pkgexec "github.com/systmms/opsync/pkg/exec"
	"github.com/systmms/opsync/pkg/provider"
)

// OnePasswordProvider implements provider.Provider on top of the op
// CLI. Every invocation goes through a pkg/exec.CommandExecutor so
// tests can substitute canned op output, and an existing op session is
// assumed: the provider never signs in on its own.
type OnePasswordProvider struct {
	logger   *logging.Logger
	executor pkgexec.CommandExecutor
}

// NewOnePasswordProvider creates a provider that runs the real op CLI.
func NewOnePasswordProvider(logger *logging.Logger) *OnePasswordProvider {
	return &OnePasswordProvider{
		logger:   logger,
		executor: pkgexec.DefaultExecutor(),
	}
}

// NewOnePasswordProviderWithExecutor creates a provider with a custom
// executor. This is primarily for testing, allowing command execution
// to be mocked.
func NewOnePasswordProviderWithExecutor(logger *logging.Logger, executor pkgexec.CommandExecutor) *OnePasswordProvider {
	return &OnePasswordProvider{
		logger:   logger,
		executor: executor,
	}
}

// Name returns the provider name.
func (op *OnePasswordProvider) Name() string {
	return "1password"
}

// Validate checks that the op CLI is installed and a session exists.
func (op *OnePasswordProvider) Validate(ctx context.Context) error {
	if _, err := exec.LookPath("op"); err != nil {
		return &provider.UnavailableError{
			Provider: op.Name(),
			Message:  "1Password CLI not found in PATH",
			Err:      err,
		}
	}

	_, stderr, err := op.executor.Execute(ctx, "op", "account", "get")
	if err != nil {
		return &provider.AuthError{
			Provider: op.Name(),
			Message:  authMessage(stderr),
		}
	}
	return nil
}

// Resolve fetches one field of one item via op item get.
func (op *OnePasswordProvider) Resolve(ctx context.Context, ref provider.Reference) (provider.SecretValue, error) {
	args := []string{"item", "get", ref.Item, "--format", "json"}
	args = appendScope(args, ref.Vault, ref.Account)

	op.logger.Debug("Running op %s", strings.Join(args, " "))

	stdout, stderr, err := op.executor.Execute(ctx, "op", args...)
	if err != nil {
		return provider.SecretValue{}, op.classifyError(ref.Vault, ref.Item, stderr, err)
	}

	var item OnePasswordItem
	if err := json.Unmarshal(stdout, &item); err != nil {
		return provider.SecretValue{}, fmt.Errorf("failed to parse op output for item '%s': %w", ref.Item, err)
	}

	value, ok := item.Field(ref.Field)
	if !ok {
		return provider.SecretValue{}, &provider.NotFoundError{
			Provider: op.Name(),
			Vault:    ref.Vault,
			Item:     ref.Item,
			Field:    ref.Field,
		}
	}

	return provider.SecretValue{
		Value: value,
		Metadata: map[string]string{
			"item_id":  item.ID,
			"vault":    item.Vault.Name,
			"category": item.Category,
		},
	}, nil
}

// FetchDocument fetches a stored document's bytes via op document get.
func (op *OnePasswordProvider) FetchDocument(ctx context.Context, ref provider.DocumentReference) ([]byte, error) {
	args := []string{"document", "get", ref.Item}
	args = appendScope(args, ref.Vault, ref.Account)

	op.logger.Debug("Running op %s", strings.Join(args, " "))

	stdout, stderr, err := op.executor.Execute(ctx, "op", args...)
	if err != nil {
		return nil, op.classifyError(ref.Vault, ref.Item, stderr, err)
	}
	return stdout, nil
}

// appendScope adds --vault and --account flags when set.
func appendScope(args []string, vault, account string) []string {
	if vault != "" {
		args = append(args, "--vault", vault)
	}
	if account != "" {
		args = append(args, "--account", account)
	}
	return args
}

// classifyError sorts an op failure into the provider error taxonomy
// by its stderr text. Unknown failures with output stay ordinary
// errors; a command that produced no output at all could not run, so
// the provider itself is unavailable.
func (op *OnePasswordProvider) classifyError(vault, item string, stderr []byte, err error) error {
	msg := strings.TrimSpace(string(stderr))

	switch {
	case strings.Contains(msg, "isn't an item"),
		strings.Contains(msg, "isn't a document"),
		strings.Contains(msg, "not found"):
		return &provider.NotFoundError{
			Provider: op.Name(),
			Vault:    vault,
			Item:     item,
		}
	case strings.Contains(msg, "not currently signed in"),
		strings.Contains(msg, "not signed in"),
		strings.Contains(msg, "session expired"),
		strings.Contains(msg, "no account found"),
		strings.Contains(msg, "authorization"):
		return &provider.AuthError{
			Provider: op.Name(),
			Message:  authMessage(stderr),
		}
	case strings.Contains(msg, "more than one item matches"):
		return fmt.Errorf("ambiguous item '%s': %s", item, msg)
	}

	if msg != "" {
		return fmt.Errorf("op command failed: %s", msg)
	}
	return &provider.UnavailableError{
		Provider: op.Name(),
		Message:  "could not run the op CLI",
		Err:      err,
	}
}

// authMessage condenses op's stderr into a single auth diagnostic,
// falling back to a generic hint when op printed nothing usable.
func authMessage(stderr []byte) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return "not signed in. Run: op signin"
	}
	// op prefixes errors with "[ERROR] <timestamp>"; the timestamp is
	// noise in our own diagnostics.
	if idx := strings.Index(msg, "] "); strings.HasPrefix(msg, "[ERROR]") && idx >= 0 {
		trimmed := strings.TrimSpace(msg[idx+2:])
		if fields := strings.SplitN(trimmed, " ", 3); len(fields) == 3 && looksLikeTimestamp(fields[0]) {
			return fields[2]
		}
		return trimmed
	}
	return msg
}

func looksLikeTimestamp(s string) bool {
	return strings.Count(s, "/") == 2
}

// OnePasswordItem is the shape returned by op item get --format json.
type OnePasswordItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Notes    string   `json:"notes"`
	Tags     []string `json:"tags"`
	Vault    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"vault"`
	Fields []OnePasswordField `json:"fields"`
	URLs   []OnePasswordURL   `json:"urls"`
}

// OnePasswordField is one entry of an item's fields array.
type OnePasswordField struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// OnePasswordURL is one entry of an item's urls array.
type OnePasswordURL struct {
	Label   string `json:"label"`
	Primary bool   `json:"primary"`
	Href    string `json:"href"`
}

// Field finds a field's value by name: exact label match first, then
// field id, then the special names users expect from 1Password items
// (password, username, url, notes, title).
func (item *OnePasswordItem) Field(name string) (string, bool) {
	for _, field := range item.Fields {
		if field.Label == name {
			return field.Value, true
		}
	}
	for _, field := range item.Fields {
		if field.ID == name {
			return field.Value, true
		}
	}

	switch strings.ToLower(name) {
	case "password":
		for _, field := range item.Fields {
			if field.Type == "CONCEALED" || strings.EqualFold(field.Label, "password") {
				return field.Value, true
			}
		}
	case "username":
		for _, field := range item.Fields {
			if strings.EqualFold(field.Label, "username") || strings.EqualFold(field.Label, "email") {
				return field.Value, true
			}
		}
	case "url", "website":
		for _, url := range item.URLs {
			if url.Primary {
				return url.Href, true
			}
		}
		if len(item.URLs) > 0 {
			return item.URLs[0].Href, true
		}
	case "notes":
		return item.Notes, true
	case "title", "name":
		return item.Title, true
	}

	return "", false
}
