package secrets

import (
	"conduit/pkg/domain"
)

// TenantContext identifies whose tenant-encrypted secrets apply to a call.
// A nil *TenantContext means only vault-backed secrets are resolvable.
type TenantContext struct {
	TenantID       domain.TenantID
	EncryptionSalt []byte
}

// cacheKey builds the memoization key for a (secret, tenant) pair. Secrets
// resolved without a tenant context live under a distinct namespace so a
// vault-backed value can never shadow a tenant-encrypted one, or vice versa.
func cacheKey(name string, tc *TenantContext) string {
	if tc == nil {
		return "global/" + name
	}
	return "tenant/" + tc.TenantID.String() + "/" + name
}
