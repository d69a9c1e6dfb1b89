package providers_test

import (
	"testing"

	"github.com/systmms/opsync/pkg/provider"
	"github.com/systmms/opsync/tests/testutil"
)

// TestOnePasswordProviderContract runs the shared provider contract
// against the op CLI provider, backed by canned op output.
func TestOnePasswordProviderContract(t *testing.T) {
	ops := testutil.OnePasswordMockResponses{}

	provider.RunContractTests(t, provider.ContractTest{
		CreateProvider: func(t *testing.T) provider.Provider {
			mock := testutil.NewMockCommandExecutor()
			mock.AddResponse("op item get db --format json --vault Test Vault",
				ops.Item("item-db", "db", "svc-user", "hunter2"))
			mock.AddResponse("op document get Deploy Key --vault Test Vault",
				ops.Document("key material"))
			notFound := ops.ItemNotFound("unknown")
			mock.DefaultResponse = &notFound
			return newMockedProvider(mock)
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
		// Validate needs op on the PATH, which the mock cannot provide
		SkipValidate: true,
	})
}
