// Package provider defines the contract between opsync and the secret store
// it reads from.
//
// opsync addresses secrets with a three-level hierarchy: a vault contains
// items, and an item contains named fields. A Reference carries that address
// plus an optional account for installations with multiple signed-in
// accounts. The only production implementation talks to the 1Password CLI,
// but the core resolution engine depends solely on this interface, so tests
// substitute an in-memory fake.
//
// # Architecture Overview
//
// The provider package is the seam between orchestration and the store:
//
//	┌─────────────────────────────────────────────┐
//	│                CLI Commands                 │
//	│            (cmd/opsync/commands/)           │
//	└──────────────────────┬──────────────────────┘
//	                       │
//	┌──────────────────────▼──────────────────────┐
//	│          Orchestrator + Resolution          │
//	│       (internal/run, internal/resolve)      │
//	└──────────────────────┬──────────────────────┘
//	                       │
//	┌──────────────────────▼──────────────────────┐
//	│             Provider Interface              │
//	│               (pkg/provider)                │
//	└──────────────────────┬──────────────────────┘
//	                       │
//	┌──────────────────────▼──────────────────────┐
//	│            1Password CLI bridge             │
//	│           (internal/providers)              │
//	└─────────────────────────────────────────────┘
//
// # Implementing a Provider
//
//	type MyProvider struct{}
//
//	func (p *MyProvider) Name() string { return "my-provider" }
//
//	func (p *MyProvider) Resolve(ctx context.Context, ref provider.Reference) (provider.SecretValue, error) {
//	    value, ok := p.lookup(ref.Item, ref.Field)
//	    if !ok {
//	        return provider.SecretValue{}, &provider.NotFoundError{
//	            Provider: p.Name(),
//	            Vault:    ref.Vault,
//	            Item:     ref.Item,
//	            Field:    ref.Field,
//	        }
//	    }
//	    return provider.SecretValue{Value: value}, nil
//	}
//
// New implementations should pass the suite in testing.go; see
// RunContractTests.
//
// # Error Handling
//
// Implementations report failures through the error types in this package:
//   - NotFoundError when the addressed item or field does not exist
//   - AuthError when the session is missing, locked, or expired
//   - UnavailableError when the backing process cannot be reached at all
//
// AuthError and UnavailableError are fatal for a run: once the session is
// gone no later lookup can succeed, so callers stop instead of retrying.
//
// # Security
//
// Implementations must never log secret values; use the logging.Secret
// wrapper when a value has to appear in a format string. A pre-authenticated
// session is assumed; providers do not prompt, store, or refresh
// credentials.
//
// # Concurrency
//
// Provider methods may be called from multiple goroutines when the caller
// chooses to overlap lookups. Implementations must be safe for concurrent
// use.
package provider
