package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	opserrors "github.com/systmms/opsync/internal/errors"
)

// definitionSchema validates the shape of opsync.yaml before it is
// decoded into Definition. Field-level rules the schema cannot express
// live in validateDefinition.
const definitionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "opsync configuration",
  "type": "object",
  "additionalProperties": false,
  "required": ["items"],
  "properties": {
    "version": {
      "type": "integer",
      "enum": [0, 1]
    },
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["name", "type", "destination"],
        "properties": {
          "name":        {"type": "string", "minLength": 1},
          "type":        {"type": "string", "enum": ["file", "template"]},
          "source":      {"type": "string", "minLength": 1},
          "destination": {"type": "string", "minLength": 1},
          "account":     {"type": "string"},
          "vault":       {"type": "string"},
          "item":        {"type": "string"},
          "mode":        {"type": "string", "pattern": "^0?[0-7]{3,4}$"}
        }
      }
    }
  }
}`

// validateSchema checks raw config bytes against definitionSchema. The
// YAML is round-tripped through JSON because gojsonschema only speaks
// JSON documents.
func validateSchema(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return opserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config to JSON for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(definitionSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return opserrors.ConfigError{
			Message:    "configuration does not match the expected structure",
			Suggestion: fmt.Sprintf("Fix the following and retry (note: mode must be a quoted string):\n  - %s", strings.Join(details, "\n  - ")),
		}
	}

	return nil
}
