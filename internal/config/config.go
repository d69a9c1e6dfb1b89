package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	opserrors "github.com/systmms/opsync/internal/errors"
	"github.com/systmms/opsync/internal/logging"
)

// Target types
const (
	TypeFile     = "file"
	TypeTemplate = "template"
)

// DefaultFile is the config filename that 'opsync init' writes.
const DefaultFile = "opsync.yaml"

// candidates are probed in order when no --config flag is given. The last
// name keeps configs from earlier versions of this tool working.
var candidates = []string{"opsync.yaml", "opsync.yml", "1passwordrc.yml"}

// Config holds the runtime configuration
type Config struct {
	Path           string
	Logger         *logging.Logger
	NonInteractive bool
	Definition     *Definition
}

// Definition represents the opsync.yaml structure: an ordered list of
// targets to materialize.
type Definition struct {
	Version int      `yaml:"version"`
	Items   []Target `yaml:"items"`
}

// Target is one entry from the items list: a file to produce, where to
// find its content, and the vault defaults its placeholders inherit.
// Immutable after Load.
type Target struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Source      string `yaml:"source,omitempty"`
	Destination string `yaml:"destination"`
	Account     string `yaml:"account,omitempty"`
	Vault       string `yaml:"vault,omitempty"`
	Item        string `yaml:"item,omitempty"`
	Mode        string `yaml:"mode,omitempty"`
}

// IsTemplate reports whether the target renders a template rather than
// copying a stored document.
func (t Target) IsTemplate() bool {
	return t.Type == TypeTemplate
}

// FileMode returns the permissions for the written destination file.
// Defaults to 0600: materialized files hold credentials.
func (t Target) FileMode() (os.FileMode, error) {
	if t.Mode == "" {
		return 0o600, nil
	}
	parsed, err := strconv.ParseUint(t.Mode, 8, 32)
	if err != nil {
		return 0, opserrors.ConfigError{
			Field:      "mode",
			Value:      t.Mode,
			Message:    "not a valid octal file mode",
			Suggestion: `Use a quoted octal string such as "0600" or "0644"`,
		}
	}
	return os.FileMode(parsed), nil
}

// Discover returns the first config file present in the working directory,
// or DefaultFile when none exists yet.
func Discover() string {
	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return DefaultFile
}

// Load reads, schema-validates, and parses the config file at c.Path.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return opserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Run 'opsync init' to create a new configuration file",
			}
		}
		return opserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	if err := validateSchema(data); err != nil {
		return err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return opserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if err := validateDefinition(&def); err != nil {
		return err
	}

	c.Definition = &def
	return nil
}

// validateDefinition applies the structural rules the schema cannot
// express. A file target without an item is deliberately accepted here:
// that absence is reported per target at run time so the other targets
// still process.
func validateDefinition(def *Definition) error {
	seen := make(map[string]bool, len(def.Items))
	for i, target := range def.Items {
		field := fmt.Sprintf("items[%d]", i)

		if seen[target.Name] {
			return opserrors.ConfigError{
				Field:      field + ".name",
				Value:      target.Name,
				Message:    "duplicate target name",
				Suggestion: "Give every target a unique name so results can be told apart",
			}
		}
		seen[target.Name] = true

		if target.IsTemplate() && target.Source == "" {
			return opserrors.ConfigError{
				Field:      field + ".source",
				Message:    fmt.Sprintf("template target '%s' has no source file", target.Name),
				Suggestion: "Set 'source:' to the template file to render",
			}
		}

		if _, err := target.FileMode(); err != nil {
			return err
		}
	}
	return nil
}

// GetTarget returns the named target from the loaded definition.
func (c *Config) GetTarget(name string) (Target, error) {
	if c.Definition == nil {
		return Target{}, opserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	for _, target := range c.Definition.Items {
		if target.Name == name {
			return target, nil
		}
	}

	var available []string
	for _, target := range c.Definition.Items {
		available = append(available, target.Name)
	}

	suggestion := "Check your config file for defined targets"
	if len(available) > 0 {
		suggestion = fmt.Sprintf("Available targets: %s", strings.Join(available, ", "))
	}

	return Target{}, opserrors.ConfigError{
		Field:      "target",
		Value:      name,
		Message:    "target not found",
		Suggestion: suggestion,
	}
}

// SelectTargets returns the targets to process, in configured order. With
// an empty selection every target is returned; otherwise only the named
// ones, and naming an unknown target is an error.
func (c *Config) SelectTargets(names []string) ([]Target, error) {
	if c.Definition == nil {
		return nil, opserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	if len(names) == 0 {
		return c.Definition.Items, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := c.GetTarget(name); err != nil {
			return nil, err
		}
		wanted[name] = true
	}

	var selected []Target
	for _, target := range c.Definition.Items {
		if wanted[target.Name] {
			selected = append(selected, target)
		}
	}
	return selected, nil
}
