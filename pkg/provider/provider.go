package provider

import (
	"context"
	"errors"
)

// Provider retrieves secrets from a single backing store.
type Provider interface {
	// Name returns the provider's stable, lowercase identifier, used in
	// logging and error messages.
	Name() string

	// Resolve fetches the value of one field of one item.
	//
	// The reference's Item and Field are required; Account and Vault narrow
	// the search when set and fall back to provider defaults when empty
	// (an empty Vault searches every vault the session can see).
	//
	// Returns NotFoundError when the item or field does not exist,
	// AuthError or UnavailableError when the session or process is gone.
	Resolve(ctx context.Context, ref Reference) (SecretValue, error)

	// FetchDocument retrieves the raw contents of a document item, byte for
	// byte. Used for targets that copy a stored file to disk rather than
	// rendering a template.
	FetchDocument(ctx context.Context, ref DocumentReference) ([]byte, error)

	// Validate checks that the provider can serve lookups: the backing CLI
	// is installed and the session is usable. Called by preflight checks
	// before any secret is requested.
	Validate(ctx context.Context) error
}

// Reference addresses a single field within the store.
//
// Example:
//
//	ref := provider.Reference{
//	    Vault: "Development",
//	    Item:  "database_credentials",
//	    Field: "password",
//	}
type Reference struct {
	// Account selects the signed-in account to query. Empty means the
	// CLI's default account.
	Account string

	// Vault scopes the item search to one vault, by name or ID. Empty
	// searches all vaults visible to the session.
	Vault string

	// Item names the item that holds the field, by title or ID. Required.
	Item string

	// Field names the field whose value is wanted, by label or ID. Required.
	Field string
}

// DocumentReference addresses a whole document item rather than one field.
type DocumentReference struct {
	// Account selects the signed-in account to query. Empty means the
	// CLI's default account.
	Account string

	// Vault scopes the item search, as in Reference.
	Vault string

	// Item names the document item. Required.
	Item string
}

// SecretValue is a retrieved secret with whatever metadata the store
// exposes alongside it.
type SecretValue struct {
	// Value is the secret itself. Never log this field.
	Value string

	// Metadata carries provider-specific detail about where the value came
	// from, such as the matched item ID or vault name. May be nil.
	Metadata map[string]string
}

// NotFoundError reports that the addressed item or field does not exist in
// the store. It is a per-target failure: other targets in the same run are
// unaffected.
type NotFoundError struct {
	Provider string
	Vault    string
	Item     string
	Field    string
}

func (e *NotFoundError) Error() string {
	msg := "secret not found: item " + quoted(e.Item)
	if e.Field != "" {
		msg += " field " + quoted(e.Field)
	}
	if e.Vault != "" {
		msg += " in vault " + quoted(e.Vault)
	}
	return msg + " (" + e.Provider + ")"
}

// AuthError reports a missing, locked, or expired session. Fatal for the
// run: no later lookup can succeed until the user signs in again.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return "authentication failed for " + e.Provider + ": " + e.Message
}

// UnavailableError reports that the provider process could not be reached
// at all, for example when the CLI binary is not installed. Fatal for the
// run.
type UnavailableError struct {
	Provider string
	Message  string
	Err      error
}

func (e *UnavailableError) Error() string {
	return e.Provider + " unavailable: " + e.Message
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUnavailable reports whether err means the provider cannot serve any
// further lookups in this run, either because the session is gone
// (AuthError) or the process is unreachable (UnavailableError).
func IsUnavailable(err error) bool {
	var auth *AuthError
	var unavail *UnavailableError
	return errors.As(err, &auth) || errors.As(err, &unavail)
}

func quoted(s string) string {
	return `"` + s + `"`
}
