// Package store holds registrations for the invocation engine. The in-memory
// implementation backs tests and single-node deployments; persistent storage
// is an external collaborator.
package store

import (
	"context"
	"sync"

	"conduit/internal/registry/models"
	"conduit/pkg/domain"
	"conduit/pkg/platform/sentinel"
)

// InMemory stores API registrations in memory.
type InMemory struct {
	mu   sync.RWMutex
	apis map[domain.APIID]*models.API
}

// NewInMemory creates an in-memory registration store.
func NewInMemory() *InMemory {
	return &InMemory{apis: make(map[domain.APIID]*models.API)}
}

// Put registers or replaces an API record.
func (s *InMemory) Put(_ context.Context, api *models.API) error {
	if err := api.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apis[api.ID] = api
	return nil
}

// FindByID retrieves a registration by its ID.
func (s *InMemory) FindByID(_ context.Context, apiID domain.APIID) (*models.API, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if api, ok := s.apis[apiID]; ok {
		return api, nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns all registrations.
func (s *InMemory) List(_ context.Context) []*models.API {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.API, 0, len(s.apis))
	for _, api := range s.apis {
		out = append(out, api)
	}
	return out
}
