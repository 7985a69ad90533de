package secrets

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"conduit/internal/secrets/crypto"
	secretmetrics "conduit/internal/secrets/metrics"
	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
	"conduit/pkg/platform/sentinel"
	psync "conduit/pkg/platform/sync"
)

// DefaultTTL bounds how long a resolved plaintext is memoized. Rotation
// consistency is eventual: a rotated secret may be served for at most one TTL
// window, which is acceptable because secrets rotate rarely relative to call
// volume.
const DefaultTTL = 5 * time.Minute

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// Resolver unifies tenant-encrypted and vault-backed secrets behind one
// lookup. Plaintexts are memoized per (secret, tenant) with a bounded TTL, and
// concurrent resolutions of the same key coalesce into a single backend fetch.
type Resolver struct {
	store   Store
	tenants TenantSecretSource
	enc     Decrypter
	ttl     time.Duration
	cache   *psync.Map[cacheEntry]
	group   singleflight.Group
	metrics *secretmetrics.Metrics
	now     func() time.Time
}

// Decrypter is the minimal decryption surface the resolver needs.
// *crypto.Service satisfies it.
type Decrypter interface {
	DecryptForTenant(env *crypto.Envelope, salt []byte) ([]byte, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTenantSecrets enables tenant-encrypted resolution.
func WithTenantSecrets(src TenantSecretSource, enc Decrypter) Option {
	return func(r *Resolver) {
		r.tenants = src
		r.enc = enc
	}
}

// WithTTL overrides the cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithMetrics attaches resolver metrics.
func WithMetrics(m *secretmetrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithClock overrides the clock for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a resolver over the given vault-backed store.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{
		store: store,
		ttl:   DefaultTTL,
		cache: psync.NewMap[cacheEntry](),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve returns the plaintext for a named secret. Resolution order: the
// tenant's encrypted record first (when a tenant context is present), then the
// vault-backed store. Fails with secret_not_found when absent from both.
func (r *Resolver) Resolve(ctx context.Context, name string, tc *TenantContext) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "secret name cannot be empty")
	}

	key := cacheKey(name, tc)
	if entry, ok := r.cache.Get(key); ok && r.now().Before(entry.expiresAt) {
		r.metrics.IncrementCacheHit()
		return entry.value, nil
	}
	r.metrics.IncrementCacheMiss()

	// Coalesce concurrent fetches of the same key into one backend round-trip.
	// A failed or canceled fetch caches nothing, so later calls retry.
	value, err, _ := r.group.Do(key, func() (any, error) {
		if entry, ok := r.cache.Get(key); ok && r.now().Before(entry.expiresAt) {
			return entry.value, nil
		}

		start := r.now()
		plaintext, err := r.fetch(ctx, name, tc)
		if err != nil {
			var dErr *dErrors.Error
			if errors.As(err, &dErr) {
				r.metrics.IncrementFailure(string(dErr.Code))
			}
			return "", err
		}
		r.metrics.ObserveResolve(start)

		r.cache.Set(key, cacheEntry{value: plaintext, expiresAt: r.now().Add(r.ttl)})
		return plaintext, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Invalidate drops the cached plaintext for a secret, typically on a rotation
// signal. The next resolution fetches fresh.
func (r *Resolver) Invalidate(name string, tc *TenantContext) {
	r.cache.Delete(cacheKey(name, tc))
}

// InvalidateTenant drops every cached plaintext belonging to the tenant.
func (r *Resolver) InvalidateTenant(tenantID domain.TenantID) {
	prefix := "tenant/" + tenantID.String() + "/"
	r.cache.DeleteFunc(func(key string, _ cacheEntry) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (r *Resolver) fetch(ctx context.Context, name string, tc *TenantContext) (string, error) {
	if tc != nil && r.tenants != nil {
		env, err := r.tenants.Get(ctx, tc.TenantID, name)
		switch {
		case err == nil:
			plaintext, err := r.enc.DecryptForTenant(env, tc.EncryptionSalt)
			if err != nil {
				return "", err
			}
			return string(plaintext), nil
		case errors.Is(err, sentinel.ErrNotFound):
			// Fall through to the vault-backed store.
		default:
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "tenant secret lookup failed")
		}
	}

	if r.store == nil {
		return "", dErrors.New(dErrors.CodeSecretNotFound, "secret "+name+" not found")
	}
	value, err := r.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeSecretNotFound, "secret "+name+" not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeTransport, "secret store lookup failed")
	}
	return value, nil
}
