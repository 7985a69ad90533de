// Package seeder loads API registrations, tenants, and secrets from a JSON
// file at startup. Registration management is handled elsewhere; a seed file
// plus the read API is the minimum for the engine to be invocable.
package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	registrymodels "conduit/internal/registry/models"
	registrystore "conduit/internal/registry/store"
	"conduit/internal/secrets"
	"conduit/internal/secrets/crypto"
	"conduit/internal/tenant"
	tenantstore "conduit/internal/tenant/store"
	"conduit/pkg/domain"
)

// seedFile is the on-disk format.
type seedFile struct {
	Tenants       []seedTenant          `json:"tenants,omitempty"`
	APIs          []*registrymodels.API `json:"apis,omitempty"`
	VaultSecrets  map[string]string     `json:"vault_secrets,omitempty"`
	TenantSecrets []seedTenantSecret    `json:"tenant_secrets,omitempty"`
}

type seedTenant struct {
	ID             domain.TenantID `json:"id"`
	Name           string          `json:"name"`
	EncryptionSalt []byte          `json:"encryption_salt"`
}

type seedTenantSecret struct {
	TenantID domain.TenantID `json:"tenant_id"`
	Name     string          `json:"name"`
	Value    string          `json:"value"`
}

// Seeder populates in-memory stores from a seed file.
type Seeder struct {
	registrations *registrystore.InMemory
	tenants       *tenantstore.InMemory
	vault         *secrets.InMemoryStore
	tenantSecrets *secrets.InMemoryTenantSecrets
	enc           *crypto.Service
	logger        *slog.Logger
}

// New creates a seeder over the given stores. Tenant secret values in the
// seed file are plaintext and are encrypted under the tenant's derived key
// during loading; nothing is stored unencrypted.
func New(
	registrations *registrystore.InMemory,
	tenants *tenantstore.InMemory,
	vault *secrets.InMemoryStore,
	tenantSecrets *secrets.InMemoryTenantSecrets,
	enc *crypto.Service,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		registrations: registrations,
		tenants:       tenants,
		vault:         vault,
		tenantSecrets: tenantSecrets,
		enc:           enc,
		logger:        logger,
	}
}

// Load reads and applies the seed file.
func (s *Seeder) Load(ctx context.Context, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	salts := make(map[domain.TenantID][]byte, len(seed.Tenants))
	for _, t := range seed.Tenants {
		if len(t.EncryptionSalt) == 0 {
			return fmt.Errorf("tenant %s has no encryption salt", t.ID)
		}
		s.tenants.Put(ctx, &tenant.Tenant{ID: t.ID, Name: t.Name, EncryptionSalt: t.EncryptionSalt})
		salts[t.ID] = t.EncryptionSalt
	}

	for _, api := range seed.APIs {
		if err := s.registrations.Put(ctx, api); err != nil {
			return fmt.Errorf("failed to register API %s: %w", api.Name, err)
		}
	}

	for name, value := range seed.VaultSecrets {
		s.vault.Set(name, value)
	}

	for _, record := range seed.TenantSecrets {
		salt, ok := salts[record.TenantID]
		if !ok {
			return fmt.Errorf("tenant secret %s references unknown tenant %s", record.Name, record.TenantID)
		}
		env, err := s.enc.EncryptForTenant([]byte(record.Value), salt)
		if err != nil {
			return fmt.Errorf("failed to encrypt tenant secret %s: %w", record.Name, err)
		}
		s.tenantSecrets.Put(record.TenantID, record.Name, env)
	}

	s.logger.Info("seed data loaded",
		"tenants", len(seed.Tenants),
		"apis", len(seed.APIs),
		"vault_secrets", len(seed.VaultSecrets),
		"tenant_secrets", len(seed.TenantSecrets),
	)
	return nil
}
