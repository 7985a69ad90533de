package store

import (
	"context"
	"sync"

	"conduit/internal/tenant"
	"conduit/pkg/domain"
	"conduit/pkg/platform/sentinel"
)

// InMemory stores tenants in memory.
type InMemory struct {
	mu      sync.RWMutex
	tenants map[domain.TenantID]*tenant.Tenant
}

// NewInMemory creates an in-memory tenant store.
func NewInMemory() *InMemory {
	return &InMemory{tenants: make(map[domain.TenantID]*tenant.Tenant)}
}

// Put registers or replaces a tenant record.
func (s *InMemory) Put(_ context.Context, t *tenant.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
}

// FindByID retrieves a tenant by its ID.
func (s *InMemory) FindByID(_ context.Context, tenantID domain.TenantID) (*tenant.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tenants[tenantID]; ok {
		return t, nil
	}
	return nil, sentinel.ErrNotFound
}
