// Package tenant holds the read-model of tenants on whose behalf APIs are
// invoked. Tenant lifecycle management is an external concern; the engine
// only needs each tenant's encryption salt.
package tenant

import (
	"conduit/pkg/domain"
)

// Tenant is the engine's view of an account.
type Tenant struct {
	ID             domain.TenantID `json:"id"`
	Name           string          `json:"name"`
	EncryptionSalt []byte          `json:"encryption_salt"`
}
