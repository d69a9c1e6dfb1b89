package provider

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

// ContractTest defines the behavior suite every provider implementation
// must pass. The provider returned by CreateProvider must be pre-seeded so
// that SeededRef resolves to SeededValue and SeededDoc fetches SeededDocData.
type ContractTest struct {
	// CreateProvider creates a fresh instance of the provider to test.
	CreateProvider func(t *testing.T) Provider

	// SeededRef addresses a field known to exist in the provider.
	SeededRef Reference

	// SeededValue is the value SeededRef must resolve to.
	SeededValue string

	// SeededDoc addresses a document known to exist in the provider.
	// Leave the Item empty to skip the document tests.
	SeededDoc DocumentReference

	// SeededDocData is the content SeededDoc must fetch.
	SeededDocData []byte

	// SkipValidate skips the session check for providers that need a live
	// backing CLI to answer it.
	SkipValidate bool
}

// RunContractTests runs the standard provider contract test suite.
func RunContractTests(t *testing.T, contract ContractTest) {
	t.Run("Contract", func(t *testing.T) {
		t.Run("Name", func(t *testing.T) {
			testProviderName(t, contract)
		})

		if !contract.SkipValidate {
			t.Run("Validate", func(t *testing.T) {
				testProviderValidate(t, contract)
			})
		}

		t.Run("Resolve", func(t *testing.T) {
			testProviderResolve(t, contract)
		})

		t.Run("ResolveNotFound", func(t *testing.T) {
			testProviderResolveNotFound(t, contract)
		})

		if contract.SeededDoc.Item != "" {
			t.Run("FetchDocument", func(t *testing.T) {
				testProviderFetchDocument(t, contract)
			})

			t.Run("FetchDocumentNotFound", func(t *testing.T) {
				testProviderFetchDocumentNotFound(t, contract)
			})
		}
	})
}

func testProviderName(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)

	name := p.Name()
	if name == "" {
		t.Error("Provider.Name() returned empty string")
	}

	// Verify name is consistent
	name2 := p.Name()
	if name != name2 {
		t.Errorf("Provider.Name() not consistent: %q != %q", name, name2)
	}
}

func testProviderValidate(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := context.Background()

	// Validate should complete without hanging
	done := make(chan error, 1)
	go func() {
		done <- p.Validate(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Provider.Validate() failed on a seeded provider: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("Provider.Validate() timed out after 5 seconds")
	}
}

func testProviderResolve(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := context.Background()

	secret, err := p.Resolve(ctx, contract.SeededRef)
	if err != nil {
		t.Fatalf("Provider.Resolve() failed for seeded reference: %v", err)
	}

	if secret.Value != contract.SeededValue {
		t.Errorf("Provider.Resolve() = %q, want %q", secret.Value, contract.SeededValue)
	}
}

func testProviderResolveNotFound(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := context.Background()

	// An item that definitely doesn't exist
	ref := Reference{
		Vault: contract.SeededRef.Vault,
		Item:  "this-item-definitely-does-not-exist-" + time.Now().Format("20060102150405"),
		Field: "password",
	}

	secret, err := p.Resolve(ctx, ref)
	if err == nil {
		t.Fatalf("Provider.Resolve() should fail for non-existent item, got value: %q", secret.Value)
	}

	if !IsNotFound(err) {
		t.Errorf("Provider.Resolve() error should satisfy IsNotFound, got: %v", err)
	}

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		if notFound.Provider == "" {
			t.Error("NotFoundError.Provider should name the provider")
		}
		if notFound.Item != ref.Item {
			t.Errorf("NotFoundError.Item = %q, want %q", notFound.Item, ref.Item)
		}
	}
}

func testProviderFetchDocument(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := context.Background()

	data, err := p.FetchDocument(ctx, contract.SeededDoc)
	if err != nil {
		t.Fatalf("Provider.FetchDocument() failed for seeded document: %v", err)
	}

	if !bytes.Equal(data, contract.SeededDocData) {
		t.Errorf("Provider.FetchDocument() = %q, want %q", data, contract.SeededDocData)
	}
}

func testProviderFetchDocumentNotFound(t *testing.T, contract ContractTest) {
	p := contract.CreateProvider(t)
	ctx := context.Background()

	ref := DocumentReference{
		Vault: contract.SeededDoc.Vault,
		Item:  "this-document-definitely-does-not-exist-" + time.Now().Format("20060102150405"),
	}

	if _, err := p.FetchDocument(ctx, ref); !IsNotFound(err) {
		t.Errorf("Provider.FetchDocument() error should satisfy IsNotFound, got: %v", err)
	}
}
