// Package crypto provides authenticated encryption for tenant-supplied secret
// material. Each tenant's key is derived from the process-wide master key and
// the tenant's salt, so one tenant can never decrypt another's records even if
// a salt leaks alongside the master key.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	dErrors "conduit/pkg/domain-errors"
)

// KeyLength is the AES-256 key size used throughout.
const KeyLength = 32

// tenantKeyInfo domain-separates tenant secret keys from any other HKDF use
// of the master key.
const tenantKeyInfo = "conduit/tenant-secret-key/v1"

// Envelope carries one encryption result. The ciphertext includes the GCM
// authentication tag; the nonce is unique per operation.
type Envelope struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// Seal encrypts plaintext under key with AES-256-GCM and a fresh random nonce.
func Seal(plaintext, key []byte) (*Envelope, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate nonce")
	}

	return &Envelope{
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, plaintext, nil),
	}, nil
}

// Open decrypts an envelope. Tampered ciphertext, a modified nonce, or a wrong
// key all fail with the decryption_failed code; the error never distinguishes
// which, to avoid acting as a decryption oracle.
func Open(env *Envelope, key []byte) ([]byte, error) {
	if env == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "envelope cannot be nil")
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, dErrors.New(dErrors.CodeDecryptionFailed, "could not decrypt secret")
	}
	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeDecryptionFailed, "could not decrypt secret")
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "encryption key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not initialize cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not initialize AEAD")
	}
	return aead, nil
}

// Service derives per-tenant keys from the injected master key.
type Service struct {
	master []byte
}

// New creates the encryption service. The master key is explicit configuration;
// an absent or short key is rejected here rather than falling back silently.
func New(masterKey []byte) (*Service, error) {
	if len(masterKey) != KeyLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "master key must be 32 bytes")
	}
	key := make([]byte, KeyLength)
	copy(key, masterKey)
	return &Service{master: key}, nil
}

// DeriveTenantKey produces the tenant's encryption key via HKDF-SHA256.
func (s *Service) DeriveTenantKey(salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "tenant salt cannot be empty")
	}
	key := make([]byte, KeyLength)
	r := hkdf.New(sha256.New, s.master, salt, []byte(tenantKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not derive tenant key")
	}
	return key, nil
}

// EncryptForTenant seals plaintext under the tenant's derived key.
func (s *Service) EncryptForTenant(plaintext, salt []byte) (*Envelope, error) {
	key, err := s.DeriveTenantKey(salt)
	if err != nil {
		return nil, err
	}
	return Seal(plaintext, key)
}

// DecryptForTenant opens an envelope under the tenant's derived key.
func (s *Service) DecryptForTenant(env *Envelope, salt []byte) ([]byte, error) {
	key, err := s.DeriveTenantKey(salt)
	if err != nil {
		return nil, err
	}
	return Open(env, key)
}
