package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/opsync/internal/logging"
	"github.com/systmms/opsync/pkg/provider"
)

func testItem() *OnePasswordItem {
	return &OnePasswordItem{
		ID:       "item-123",
		Title:    "Database",
		Category: "LOGIN",
		Notes:    "connection notes",
		Fields: []OnePasswordField{
			{ID: "username", Type: "STRING", Label: "username", Value: "dbadmin"},
			{ID: "password", Type: "CONCEALED", Label: "password", Value: "hunter2"},
			{ID: "cf1", Type: "STRING", Label: "api_key", Value: "k-123"},
			{ID: "odd-id", Type: "STRING", Label: "host", Value: "db.internal"},
		},
		URLs: []OnePasswordURL{
			{Label: "backup", Primary: false, Href: "https://backup.example.com"},
			{Label: "console", Primary: true, Href: "https://db.example.com"},
		},
	}
}

func TestItemField(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  string
		found bool
	}{
		{name: "label match", field: "api_key", want: "k-123", found: true},
		{name: "label match beats special name", field: "password", want: "hunter2", found: true},
		{name: "id match", field: "cf1", want: "k-123", found: true},
		{name: "special username", field: "Username", want: "dbadmin", found: true},
		{name: "special url prefers primary", field: "url", want: "https://db.example.com", found: true},
		{name: "special website alias", field: "website", want: "https://db.example.com", found: true},
		{name: "special notes", field: "notes", want: "connection notes", found: true},
		{name: "special title", field: "title", want: "Database", found: true},
		{name: "unknown field", field: "nope", found: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			value, ok := testItem().Field(tt.field)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, value)
			}
		})
	}
}

func TestItemField_ConcealedFallback(t *testing.T) {
	// An item whose concealed field is not labeled "password" still
	// answers the password special name.
	item := &OnePasswordItem{
		Fields: []OnePasswordField{
			{ID: "credential", Type: "CONCEALED", Label: "credential", Value: "tok-9"},
		},
	}

	value, ok := item.Field("password")
	require.True(t, ok)
	assert.Equal(t, "tok-9", value)
}

func TestClassifyError(t *testing.T) {
	op := NewOnePasswordProvider(logging.New(false, true))
	execErr := fmt.Errorf("exit status 1")

	tests := []struct {
		name        string
		stderr      string
		notFound    bool
		unavailable bool
	}{
		{
			name:     "item missing",
			stderr:   `[ERROR] 2024/01/15 10:30:00 "db" isn't an item. Specify the item with its UUID, name, or domain.`,
			notFound: true,
		},
		{
			name:     "document missing",
			stderr:   `[ERROR] 2024/01/15 10:30:00 "cert.pem" isn't a document.`,
			notFound: true,
		},
		{
			name:     "vault missing",
			stderr:   `[ERROR] 2024/01/15 10:30:00 vault "Prod" not found`,
			notFound: true,
		},
		{
			name:        "not signed in",
			stderr:      "[ERROR] 2024/01/15 10:30:00 You are not currently signed in. Please run `op signin --help` for instructions",
			unavailable: true,
		},
		{
			name:        "session expired",
			stderr:      `[ERROR] 2024/01/15 10:30:00 session expired, sign in to create a new session`,
			unavailable: true,
		},
		{
			name:        "process would not run",
			stderr:      "",
			unavailable: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := op.classifyError("Prod", "db", []byte(tt.stderr), execErr)
			require.Error(t, err)
			assert.Equal(t, tt.notFound, provider.IsNotFound(err))
			assert.Equal(t, tt.unavailable, provider.IsUnavailable(err))
		})
	}
}

func TestClassifyError_Ambiguous(t *testing.T) {
	op := NewOnePasswordProvider(logging.New(false, true))
	stderr := `[ERROR] 2024/01/15 10:30:00 more than one item matches "db". Specify the item with its UUID`

	err := op.classifyError("", "db", []byte(stderr), errors.New("exit status 1"))
	require.Error(t, err)

	// Ambiguity is a per-lookup failure, not a missing item and not an
	// outage.
	assert.False(t, provider.IsNotFound(err))
	assert.False(t, provider.IsUnavailable(err))
	assert.Contains(t, err.Error(), "ambiguous item 'db'")
}

func TestAuthMessage(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{
			name:   "strips error prefix and timestamp",
			stderr: "[ERROR] 2024/01/15 10:30:00 You are not currently signed in.",
			want:   "You are not currently signed in.",
		},
		{
			name:   "plain message unchanged",
			stderr: "session expired",
			want:   "session expired",
		},
		{
			name:   "empty stderr gets a hint",
			stderr: "",
			want:   "not signed in. Run: op signin",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, authMessage([]byte(tt.stderr)))
		})
	}
}
