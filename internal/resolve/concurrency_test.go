package resolve_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/opsync/internal/logging"
	"github.com/systmms/opsync/internal/resolve"
	"github.com/systmms/opsync/pkg/provider"
	"github.com/systmms/opsync/tests/fakes"
)

// The run loop itself is sequential, but the cache promises safety for
// concurrent callers and collapses simultaneous first lookups of one
// key into a single provider call. These tests hammer that promise.

func TestConcurrentLookups_SameKeyCollapses(t *testing.T) {
	ref := provider.Reference{Vault: "Prod", Item: "db", Field: "password"}
	fake := fakes.NewFakeProvider("1password").
		WithSecretRef(ref, provider.SecretValue{Value: "hunter2"}).
		WithDelay(100 * time.Millisecond)

	r := resolve.NewResolver(fake, logging.New(false, true))
	defer r.Close()

	key := resolve.Key{Vault: "Prod", Item: "db", Field: "password"}

	const workers = 20
	var wg sync.WaitGroup
	values := make([]string, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values[i], errs[i] = r.Lookup(context.Background(), key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "hunter2", values[i])
	}

	// Whether a worker joined the in-flight call or hit the cache
	// afterwards, the provider only ever saw one call.
	assert.Equal(t, 1, fake.ResolveCount(ref))
}

func TestConcurrentLookups_DistinctKeys(t *testing.T) {
	fake := fakes.NewFakeProvider("1password")
	for i := 0; i < 5; i++ {
		fake.WithSecret("Prod", "db", fmt.Sprintf("field%d", i), fmt.Sprintf("value%d", i))
	}

	r := resolve.NewResolver(fake, logging.New(false, true))
	defer r.Close()

	var wg sync.WaitGroup
	for round := 0; round < 4; round++ {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				key := resolve.Key{Vault: "Prod", Item: "db", Field: fmt.Sprintf("field%d", i)}
				value, err := r.Lookup(context.Background(), key)
				assert.NoError(t, err)
				assert.Equal(t, fmt.Sprintf("value%d", i), value)
			}(i)
		}
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		ref := provider.Reference{Vault: "Prod", Item: "db", Field: fmt.Sprintf("field%d", i)}
		assert.Equal(t, 1, fake.ResolveCount(ref))
	}
	assert.Equal(t, 5, fake.GetCallCount("Resolve"))
}

func TestConcurrentLookups_FailuresDoNotWedge(t *testing.T) {
	ref := provider.Reference{Item: "db", Field: "missing"}
	fake := fakes.NewFakeProvider("1password").
		WithDelay(20 * time.Millisecond)

	r := resolve.NewResolver(fake, logging.New(false, true))
	defer r.Close()

	key := resolve.Key{Item: "db", Field: "missing"}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.Lookup(context.Background(), key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.Error(t, errs[i])
		assert.True(t, provider.IsNotFound(errs[i]))
	}

	// Overlapping callers share one failed flight; only separate waves
	// retry the provider.
	assert.LessOrEqual(t, fake.ResolveCount(ref), workers)
	assert.GreaterOrEqual(t, fake.ResolveCount(ref), 1)
}
