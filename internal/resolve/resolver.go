package resolve

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/systmms/opsync/internal/config"
	"github.com/systmms/opsync/internal/logging"
	"github.com/systmms/opsync/internal/metrics"
	"github.com/systmms/opsync/internal/secure"
	"github.com/systmms/opsync/internal/template"
	"github.com/systmms/opsync/pkg/provider"
)

// Resolver answers key lookups through a provider, caching every value
// for the lifetime of one run. The first lookup of a key calls the
// provider; every later lookup of an equal key is served from the
// cache, so a placeholder repeated across templates costs exactly one
// provider call. The cache is never evicted and never persisted.
type Resolver struct {
	provider provider.Provider
	logger   *logging.Logger

	mu    sync.RWMutex // guards cache
	cache map[Key]*secure.Value
	group singleflight.Group
}

// NewResolver creates a resolver with an empty cache.
func NewResolver(p provider.Provider, logger *logging.Logger) *Resolver {
	return &Resolver{
		provider: p,
		logger:   logger,
		cache:    make(map[Key]*secure.Value),
	}
}

// Lookup returns the secret value for key. Safe for concurrent use:
// the cache map is lock-guarded and concurrent first lookups of the
// same key collapse into a single provider call, with every caller
// receiving that call's result.
func (r *Resolver) Lookup(ctx context.Context, key Key) (string, error) {
	if cached, ok := r.lookupCache(key); ok {
		metrics.RecordCacheHit()
		r.logger.Debug("Cache hit for %s", key)
		return cached.Reveal()
	}

	result, err, shared := r.group.Do(key.id(), func() (interface{}, error) {
		// A flight that landed between our cache miss and joining the
		// group already stored the value.
		if cached, ok := r.lookupCache(key); ok {
			metrics.RecordCacheHit()
			return cached, nil
		}

		value, err := r.fetch(ctx, key)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[key] = value
		r.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		r.logger.Debug("Joined in-flight lookup for %s", key)
	}

	return result.(*secure.Value).Reveal()
}

func (r *Resolver) lookupCache(key Key) (*secure.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.cache[key]
	return value, ok
}

// fetch performs the actual provider call for a key and seals the
// result. Not-found and other per-key failures come back as a
// LookupError carrying the key; auth and availability errors pass
// through untouched because they end the whole run, not just this key.
func (r *Resolver) fetch(ctx context.Context, key Key) (*secure.Value, error) {
	r.logger.Debug("Resolving %s via %s", key, r.provider.Name())

	start := time.Now()
	secret, err := r.provider.Resolve(ctx, provider.Reference{
		Account: key.Account,
		Vault:   key.Vault,
		Item:    key.Item,
		Field:   key.Field,
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if provider.IsUnavailable(err) {
			metrics.RecordProviderCall(r.provider.Name(), "error", elapsed)
			return nil, err
		}
		outcome := "error"
		if provider.IsNotFound(err) {
			outcome = "not_found"
		}
		metrics.RecordProviderCall(r.provider.Name(), outcome, elapsed)
		return nil, &LookupError{Key: key, Err: err}
	}

	metrics.RecordProviderCall(r.provider.Name(), "success", elapsed)
	r.logger.Debug("Resolved %s = %s", key, logging.Secret(secret.Value))
	return secure.NewValue([]byte(secret.Value)), nil
}

// LookupDocument fetches a whole stored document. Documents bypass the
// field cache: a file target reads its document exactly once, so there
// is nothing to deduplicate.
func (r *Resolver) LookupDocument(ctx context.Context, ref provider.DocumentReference) ([]byte, error) {
	r.logger.Debug("Fetching document %s via %s", ref.Item, r.provider.Name())

	start := time.Now()
	data, err := r.provider.FetchDocument(ctx, ref)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if provider.IsUnavailable(err) {
			metrics.RecordProviderCall(r.provider.Name(), "error", elapsed)
			return nil, err
		}
		outcome := "error"
		if provider.IsNotFound(err) {
			outcome = "not_found"
		}
		metrics.RecordProviderCall(r.provider.Name(), outcome, elapsed)
		return nil, &LookupError{
			Key: Key{Account: ref.Account, Vault: ref.Vault, Item: ref.Item},
			Err: err,
		}
	}

	metrics.RecordProviderCall(r.provider.Name(), "success", elapsed)
	return data, nil
}

// ResolveFor binds one target's defaults into a resolve callback for
// template.Render: merge the reference with the target, then look the
// key up.
func (r *Resolver) ResolveFor(ctx context.Context, target config.Target) func(template.Ref) (string, error) {
	return func(ref template.Ref) (string, error) {
		key, err := KeyFor(target, ref)
		if err != nil {
			return "", err
		}
		return r.Lookup(ctx, key)
	}
}

// Close destroys every cached value. The resolver must not be used
// afterwards.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, value := range r.cache {
		value.Destroy()
		delete(r.cache, key)
	}
}
