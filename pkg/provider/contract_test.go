package provider_test

import (
	"testing"

	"github.com/systmms/opsync/pkg/provider"
	"github.com/systmms/opsync/tests/fakes"
)

// The in-memory fake stands in for the real store across the test suite,
// so it has to honor the same contract real providers do.
func TestFakeProviderContract(t *testing.T) {
	provider.RunContractTests(t, provider.ContractTest{
		CreateProvider: func(t *testing.T) provider.Provider {
			return fakes.NewFakeProvider("fake").
				WithSecret("Test Vault", "db", "password", "hunter2").
				WithDocument("Test Vault", "Deploy Key", []byte("key material"))
		},
		SeededRef: provider.Reference{
			Vault: "Test Vault",
			Item:  "db",
			Field: "password",
		},
		SeededValue: "hunter2",
		SeededDoc: provider.DocumentReference{
			Vault: "Test Vault",
			Item:  "Deploy Key",
		},
		SeededDocData: []byte("key material"),
	})
}
