// Package secrets generates platform-side secret material (signing keys,
// master keys). Tenant secret encryption lives in internal/secrets/crypto.
package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "conduit/pkg/domain-errors"
)

// Generate creates a cryptographically secure random secret.
// Returns a base64-encoded string suitable for use as API keys, signing keys, etc.
func Generate() (string, error) {
	buf, err := GenerateKey(32)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateKey creates a random key of the given byte length.
func GenerateKey(length int) ([]byte, error) {
	if length <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "key length must be positive")
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate key")
	}
	return buf, nil
}
