package provider

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      NotFoundError
		expected string
	}{
		{
			name: "item only",
			err: NotFoundError{
				Provider: "1password",
				Item:     "db",
			},
			expected: `secret not found: item "db" (1password)`,
		},
		{
			name: "item and field",
			err: NotFoundError{
				Provider: "1password",
				Item:     "db",
				Field:    "password",
			},
			expected: `secret not found: item "db" field "password" (1password)`,
		},
		{
			name: "fully scoped",
			err: NotFoundError{
				Provider: "1password",
				Vault:    "Production",
				Item:     "db",
				Field:    "password",
			},
			expected: `secret not found: item "db" field "password" in vault "Production" (1password)`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	t.Parallel()

	err := &AuthError{Provider: "1password", Message: "session expired"}
	expected := "authentication failed for 1password: session expired"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestUnavailableError(t *testing.T) {
	t.Parallel()

	cause := errors.New("exec: \"op\": executable file not found in $PATH")
	err := &UnavailableError{
		Provider: "1password",
		Message:  "1Password CLI not found in PATH",
		Err:      cause,
	}

	expected := "1password unavailable: 1Password CLI not found in PATH"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("UnavailableError should unwrap to its cause")
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "direct", err: &NotFoundError{Provider: "p", Item: "i"}, want: true},
		{name: "wrapped", err: fmt.Errorf("lookup failed: %w", &NotFoundError{Provider: "p", Item: "i"}), want: true},
		{name: "other error", err: errors.New("boom"), want: false},
		{name: "auth error", err: &AuthError{Provider: "p"}, want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "auth", err: &AuthError{Provider: "p", Message: "locked"}, want: true},
		{name: "unavailable", err: &UnavailableError{Provider: "p", Message: "gone"}, want: true},
		{name: "wrapped auth", err: fmt.Errorf("run aborted: %w", &AuthError{Provider: "p"}), want: true},
		{name: "not found", err: &NotFoundError{Provider: "p", Item: "i"}, want: false},
		{name: "other error", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsUnavailable(tt.err); got != tt.want {
				t.Errorf("IsUnavailable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
