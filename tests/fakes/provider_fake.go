package fakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/systmms/opsync/pkg/provider"
)

// FakeProvider is a manual fake implementation of provider.Provider.
//
// It serves secrets and documents from in-memory maps and can be
// configured to return specific errors, so resolution and run logic
// can be tested without a 1Password account or the op binary. Call
// counts are tracked per method and per reference, which is how tests
// prove that a cached lookup never reached the provider.
//
// Example usage:
//
//	fake := fakes.NewFakeProvider("1password").
//	    WithSecret("Production", "db", "password", "s3cret").
//	    WithRefError(provider.Reference{Item: "db", Field: "user"},
//	        &provider.NotFoundError{Provider: "1password", Item: "db", Field: "user"})
type FakeProvider struct {
	name string

	// Test data storage
	secrets   map[provider.Reference]provider.SecretValue
	documents map[provider.DocumentReference][]byte

	// Behavior control
	failOn       map[provider.Reference]error
	docFailOn    map[provider.DocumentReference]error
	validateErr  error
	resolveDelay time.Duration

	// Call tracking
	callCount    map[string]int
	resolveCalls map[provider.Reference]int

	mu sync.RWMutex
}

// NewFakeProvider creates a FakeProvider with the given name and no
// secrets. Use the builder methods to configure data and behavior.
func NewFakeProvider(name string) *FakeProvider {
	return &FakeProvider{
		name:         name,
		secrets:      make(map[provider.Reference]provider.SecretValue),
		documents:    make(map[provider.DocumentReference][]byte),
		failOn:       make(map[provider.Reference]error),
		docFailOn:    make(map[provider.DocumentReference]error),
		callCount:    make(map[string]int),
		resolveCalls: make(map[provider.Reference]int),
	}
}

// WithSecret adds a secret for an account-less vault/item/field
// reference. Covers the common case; use WithSecretRef when the test
// needs an account-scoped reference.
func (f *FakeProvider) WithSecret(vault, item, field, value string) *FakeProvider {
	return f.WithSecretRef(
		provider.Reference{Vault: vault, Item: item, Field: field},
		provider.SecretValue{Value: value},
	)
}

// WithSecretRef adds a secret under the exact reference given.
func (f *FakeProvider) WithSecretRef(ref provider.Reference, value provider.SecretValue) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	if value.Metadata == nil {
		value.Metadata = make(map[string]string)
	}
	f.secrets[ref] = value
	return f
}

// WithDocument adds a stored document for a vault/item pair.
func (f *FakeProvider) WithDocument(vault, item string, data []byte) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.documents[provider.DocumentReference{Vault: vault, Item: item}] = data
	return f
}

// WithRefError makes Resolve return err for the exact reference.
func (f *FakeProvider) WithRefError(ref provider.Reference, err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failOn[ref] = err
	return f
}

// WithDocumentError makes FetchDocument return err for the reference.
func (f *FakeProvider) WithDocumentError(ref provider.DocumentReference, err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.docFailOn[ref] = err
	return f
}

// WithValidateError makes Validate fail with err.
func (f *FakeProvider) WithValidateError(err error) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.validateErr = err
	return f
}

// WithDelay adds artificial latency to Resolve calls. Useful for
// forcing concurrent lookups of the same key to overlap.
func (f *FakeProvider) WithDelay(d time.Duration) *FakeProvider {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.resolveDelay = d
	return f
}

// Name returns the provider's identifier.
func (f *FakeProvider) Name() string {
	return f.name
}

// Resolve returns the configured secret for the reference, or the
// configured error, or a NotFoundError when neither is set. Every call
// is counted, including failing ones.
func (f *FakeProvider) Resolve(ctx context.Context, ref provider.Reference) (provider.SecretValue, error) {
	f.mu.Lock()
	f.callCount["Resolve"]++
	f.resolveCalls[ref]++
	delay := f.resolveDelay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return provider.SecretValue{}, ctx.Err()
		}
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if err, ok := f.failOn[ref]; ok {
		return provider.SecretValue{}, err
	}

	secret, ok := f.secrets[ref]
	if !ok {
		return provider.SecretValue{}, &provider.NotFoundError{
			Provider: f.name,
			Vault:    ref.Vault,
			Item:     ref.Item,
			Field:    ref.Field,
		}
	}
	return secret, nil
}

// FetchDocument returns the configured document bytes for the
// reference, or a NotFoundError.
func (f *FakeProvider) FetchDocument(ctx context.Context, ref provider.DocumentReference) ([]byte, error) {
	f.trackCall("FetchDocument")

	f.mu.RLock()
	defer f.mu.RUnlock()

	if err, ok := f.docFailOn[ref]; ok {
		return nil, err
	}

	data, ok := f.documents[ref]
	if !ok {
		return nil, &provider.NotFoundError{
			Provider: f.name,
			Vault:    ref.Vault,
			Item:     ref.Item,
		}
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Validate succeeds unless WithValidateError configured a failure.
func (f *FakeProvider) Validate(ctx context.Context) error {
	f.trackCall("Validate")

	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.validateErr
}

// GetCallCount returns how often a method was called. Method names:
// "Resolve", "FetchDocument", "Validate".
func (f *FakeProvider) GetCallCount(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.callCount[method]
}

// ResolveCount returns how often Resolve was called with exactly this
// reference.
func (f *FakeProvider) ResolveCount(ref provider.Reference) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.resolveCalls[ref]
}

// ResetCallCount resets all call counters to zero.
func (f *FakeProvider) ResetCallCount() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount = make(map[string]int)
	f.resolveCalls = make(map[provider.Reference]int)
}

// trackCall increments the call counter for a method.
func (f *FakeProvider) trackCall(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount[method]++
}

// String returns a string representation of the fake provider.
func (f *FakeProvider) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return fmt.Sprintf("FakeProvider{name=%s, secrets=%d, documents=%d}", f.name, len(f.secrets), len(f.documents))
}
