// Package secrets resolves named secrets for outbound API calls. Secrets are
// either tenant-encrypted records or held by an external vault-like backend;
// the resolver unifies both behind one lookup with caching and coalescing.
package secrets

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store,TenantSecretSource

import (
	"context"
	"errors"
	"sync"

	"conduit/internal/secrets/crypto"
	"conduit/pkg/domain"
	"conduit/pkg/platform/sentinel"
)

// Store retrieves named plaintext secrets from a vault-like backend.
// Implementations return sentinel.ErrNotFound (optionally wrapped) for
// absent secrets.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
}

// TenantSecretSource looks up tenant-scoped encrypted secret records.
// Implementations return sentinel.ErrNotFound for absent records.
type TenantSecretSource interface {
	Get(ctx context.Context, tenantID domain.TenantID, name string) (*crypto.Envelope, error)
}

// InMemoryStore is a map-backed Store for tests and seeded deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewInMemoryStore creates an empty in-memory secret store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{values: make(map[string]string)}
}

// Set stores a plaintext secret under name.
func (s *InMemoryStore) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Get retrieves a plaintext secret by name.
func (s *InMemoryStore) Get(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	return "", sentinel.ErrNotFound
}

// LayeredStore consults stores in order and returns the first hit. Lookups
// fall through to the next layer only on sentinel.ErrNotFound; backend
// failures surface immediately so an outage is never mistaken for absence.
type LayeredStore struct {
	layers []Store
}

// NewLayeredStore combines stores, earliest taking precedence. Deployments
// with both an external vault and a seed file use this so seeded secrets stay
// resolvable behind the vault.
func NewLayeredStore(layers ...Store) *LayeredStore {
	return &LayeredStore{layers: layers}
}

// Get retrieves a plaintext secret from the first layer that holds it.
func (s *LayeredStore) Get(ctx context.Context, name string) (string, error) {
	for _, layer := range s.layers {
		value, err := layer.Get(ctx, name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return "", err
		}
	}
	return "", sentinel.ErrNotFound
}

// InMemoryTenantSecrets is a map-backed TenantSecretSource.
type InMemoryTenantSecrets struct {
	mu      sync.RWMutex
	records map[string]*crypto.Envelope
}

// NewInMemoryTenantSecrets creates an empty tenant secret source.
func NewInMemoryTenantSecrets() *InMemoryTenantSecrets {
	return &InMemoryTenantSecrets{records: make(map[string]*crypto.Envelope)}
}

// Put stores an encrypted record for the tenant.
func (s *InMemoryTenantSecrets) Put(tenantID domain.TenantID, name string, env *crypto.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tenantRecordKey(tenantID, name)] = env
}

// Get retrieves the tenant's encrypted record by name.
func (s *InMemoryTenantSecrets) Get(_ context.Context, tenantID domain.TenantID, name string) (*crypto.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if env, ok := s.records[tenantRecordKey(tenantID, name)]; ok {
		return env, nil
	}
	return nil, sentinel.ErrNotFound
}

// Delete removes the tenant's record, if present.
func (s *InMemoryTenantSecrets) Delete(tenantID domain.TenantID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, tenantRecordKey(tenantID, name))
}

func tenantRecordKey(tenantID domain.TenantID, name string) string {
	return tenantID.String() + "/" + name
}
