// Package testutil provides testing utilities for opsync.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockCommandExecutor provides a configurable pkg/exec.CommandExecutor
// for testing code that shells out to the op CLI.
type MockCommandExecutor struct {
	mu sync.Mutex

	// Responses maps command patterns to their mock responses.
	// Key format: "command arg1 arg2" (space-separated command and args)
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching pattern is found.
	DefaultResponse *MockResponse

	// RecordedCalls stores all calls made to Execute for verification.
	RecordedCalls []RecordedCall

	// StrictMode causes Execute to fail if no matching response is found.
	StrictMode bool
}

// MockResponse defines the expected output for a mocked command.
type MockResponse struct {
	Stdout   []byte
	Stderr   []byte
	Err      error
	ExitCode int // Used to simulate exit codes when Err is nil
}

// RecordedCall stores information about a command execution.
type RecordedCall struct {
	Command string
	Args    []string
	Context context.Context
}

// NewMockCommandExecutor creates a new mock executor with empty responses.
func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:     make(map[string]MockResponse),
		RecordedCalls: make([]RecordedCall, 0),
	}
}

// Execute returns the mocked response for the given command.
func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Record the call
	m.RecordedCalls = append(m.RecordedCalls, RecordedCall{
		Command: name,
		Args:    args,
		Context: ctx,
	})

	// Build the command key for lookup
	key := m.buildKey(name, args)

	// Try exact match first
	if resp, ok := m.Responses[key]; ok {
		return resp.Stdout, resp.Stderr, resp.Err
	}

	// Try partial/prefix matching for flexibility
	for pattern, resp := range m.Responses {
		if m.matchesPattern(key, pattern) {
			return resp.Stdout, resp.Stderr, resp.Err
		}
	}

	// Use default response if available
	if m.DefaultResponse != nil {
		return m.DefaultResponse.Stdout, m.DefaultResponse.Stderr, m.DefaultResponse.Err
	}

	// Strict mode fails on unknown commands
	if m.StrictMode {
		return nil, nil, fmt.Errorf("mock: no response configured for command: %s", key)
	}

	// Non-strict mode returns empty success
	return []byte{}, []byte{}, nil
}

// buildKey creates a lookup key from command and arguments.
func (m *MockCommandExecutor) buildKey(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// matchesPattern checks if the command key matches a pattern.
// Supports simple prefix matching for flexible response configuration.
func (m *MockCommandExecutor) matchesPattern(key, pattern string) bool {
	// Support wildcard patterns with "*"
	if strings.Contains(pattern, "*") {
		// Replace * with .* for prefix matching
		pattern = strings.ReplaceAll(pattern, "*", ".*")
		return strings.HasPrefix(key, strings.Split(pattern, ".*")[0])
	}

	// Check if key starts with pattern (allows additional args)
	return strings.HasPrefix(key, pattern)
}

// AddResponse registers a mock response for a specific command pattern.
func (m *MockCommandExecutor) AddResponse(commandPattern string, response MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[commandPattern] = response
}

// AddJSONResponse is a convenience method to add a JSON response.
func (m *MockCommandExecutor) AddJSONResponse(commandPattern string, jsonData string) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout: []byte(jsonData),
		Stderr: []byte{},
		Err:    nil,
	})
}

// AddErrorResponse adds an error response for a command pattern.
func (m *MockCommandExecutor) AddErrorResponse(commandPattern string, errMsg string, exitCode int) {
	m.AddResponse(commandPattern, MockResponse{
		Stdout:   []byte{},
		Stderr:   []byte(errMsg),
		Err:      fmt.Errorf("exit status %d: %s", exitCode, errMsg),
		ExitCode: exitCode,
	})
}

// GetCalls returns all recorded calls matching the given command name.
func (m *MockCommandExecutor) GetCalls(commandName string) []RecordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []RecordedCall
	for _, call := range m.RecordedCalls {
		if call.Command == commandName {
			matches = append(matches, call)
		}
	}
	return matches
}

// CallCount returns the number of times Execute was called.
func (m *MockCommandExecutor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RecordedCalls)
}

// Reset clears all recorded calls and responses.
func (m *MockCommandExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = make(map[string]MockResponse)
	m.RecordedCalls = make([]RecordedCall, 0)
	m.DefaultResponse = nil
}

// AssertCalled verifies that a specific command was called at least once.
func (m *MockCommandExecutor) AssertCalled(t interface{ Error(args ...interface{}) }, commandName string) bool {
	calls := m.GetCalls(commandName)
	if len(calls) == 0 {
		t.Error("expected command", commandName, "to be called, but it was not")
		return false
	}
	return true
}

// AssertNotCalled verifies that a specific command was never called.
func (m *MockCommandExecutor) AssertNotCalled(t interface{ Error(args ...interface{}) }, commandName string) bool {
	calls := m.GetCalls(commandName)
	if len(calls) > 0 {
		t.Error("expected command", commandName, "to not be called, but it was called", len(calls), "times")
		return false
	}
	return true
}

// AssertCallCount verifies the exact number of times a command was called.
func (m *MockCommandExecutor) AssertCallCount(t interface{ Error(args ...interface{}) }, commandName string, expected int) bool {
	calls := m.GetCalls(commandName)
	if len(calls) != expected {
		t.Error("expected command", commandName, "to be called", expected, "times, but was called", len(calls), "times")
		return false
	}
	return true
}

// OnePasswordMockResponses provides pre-configured responses for the op CLI.
type OnePasswordMockResponses struct{}

// AccountGet returns a mock response for op account get.
func (OnePasswordMockResponses) AccountGet() MockResponse {
	return MockResponse{
		Stdout: []byte(`{
			"id": "ABCD123",
			"name": "Personal",
			"domain": "my.1password.com",
			"type": "Individual",
			"state": "active",
			"created_at": "2024-01-01T00:00:00Z"
		}`),
		Err: nil,
	}
}

// Item returns a mock op item response with username, password, and one
// custom api_key field.
func (OnePasswordMockResponses) Item(id, title, username, password string) MockResponse {
	return MockResponse{
		Stdout: []byte(fmt.Sprintf(`{
			"id": "%s",
			"title": "%s",
			"vault": {
				"id": "vault-1",
				"name": "Test Vault"
			},
			"category": "LOGIN",
			"fields": [
				{"id": "username", "type": "STRING", "purpose": "USERNAME", "label": "username", "value": "%s"},
				{"id": "password", "type": "CONCEALED", "purpose": "PASSWORD", "label": "password", "value": "%s"},
				{"id": "custom", "type": "STRING", "label": "api_key", "value": "custom-value-123"}
			]
		}`, id, title, username, password)),
		Err: nil,
	}
}

// Document returns a mock op document get response.
func (OnePasswordMockResponses) Document(content string) MockResponse {
	return MockResponse{
		Stdout: []byte(content),
		Err:    nil,
	}
}

// ItemNotFound returns the op error for an unknown item.
func (OnePasswordMockResponses) ItemNotFound(item string) MockResponse {
	msg := fmt.Sprintf("[ERROR] 2024/01/15 10:30:00 \"%s\" isn't an item. Specify the item with its UUID, name, or domain.", item)
	return MockResponse{
		Stderr: []byte(msg),
		Err:    fmt.Errorf("exit status 1"),
	}
}

// NotSignedIn returns the op error for a missing session.
func (OnePasswordMockResponses) NotSignedIn() MockResponse {
	msg := "[ERROR] 2024/01/15 10:30:00 You are not currently signed in. Please run `op signin --help` for instructions"
	return MockResponse{
		Stderr: []byte(msg),
		Err:    fmt.Errorf("exit status 1"),
	}
}

// AmbiguousItem returns the op error for a title matching several items.
func (OnePasswordMockResponses) AmbiguousItem(item string) MockResponse {
	msg := fmt.Sprintf("[ERROR] 2024/01/15 10:30:00 more than one item matches \"%s\". Specify the item with its UUID", item)
	return MockResponse{
		Stderr: []byte(msg),
		Err:    fmt.Errorf("exit status 1"),
	}
}
