package config

import (
	"encoding/base64"
	"os"
	"time"

	dErrors "conduit/pkg/domain-errors"
	"conduit/pkg/secrets"
)

// MasterKeyLength is the required length of the tenant-encryption master key.
const MasterKeyLength = 32

// Server captures process-level configuration.
type Server struct {
	Addr string

	// DevMode relaxes key requirements for local development. Ephemeral keys
	// are generated per process; nothing encrypted in dev mode survives a
	// restart. Must never be enabled in production.
	DevMode bool

	// MasterKey is the process-wide key from which per-tenant encryption keys
	// are derived. Injected, never ambient.
	MasterKey []byte

	// ServiceTokenKey signs and verifies inbound service tokens.
	ServiceTokenKey string

	SecretCacheTTL   time.Duration
	UpstreamTimeout  time.Duration
	MaxResponseBytes int64

	// SeedFile points to a JSON file of API registrations and tenant secrets
	// loaded at startup. Empty means start with an empty registry.
	SeedFile string

	// VaultAddr/VaultToken configure the external secret store. Empty VaultAddr
	// means only seeded and tenant-encrypted secrets are resolvable.
	VaultAddr  string
	VaultToken string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// It fails rather than falling back to weak defaults: outside dev mode a real
// master key and service token key are mandatory.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:             envOr("CONDUIT_ADDR", ":8080"),
		DevMode:          os.Getenv("CONDUIT_DEV_MODE") == "true",
		SecretCacheTTL:   durationOr("CONDUIT_SECRET_CACHE_TTL", 5*time.Minute),
		UpstreamTimeout:  durationOr("CONDUIT_UPSTREAM_TIMEOUT", 30*time.Second),
		MaxResponseBytes: 10 << 20,
		SeedFile:         os.Getenv("CONDUIT_SEED_FILE"),
		VaultAddr:        os.Getenv("CONDUIT_VAULT_ADDR"),
		VaultToken:       os.Getenv("CONDUIT_VAULT_TOKEN"),
	}

	masterKeyB64 := os.Getenv("CONDUIT_MASTER_KEY")
	switch {
	case masterKeyB64 != "":
		key, err := base64.StdEncoding.DecodeString(masterKeyB64)
		if err != nil {
			return Server{}, dErrors.New(dErrors.CodeInvalidInput, "CONDUIT_MASTER_KEY must be base64")
		}
		if len(key) != MasterKeyLength {
			return Server{}, dErrors.New(dErrors.CodeInvalidInput, "CONDUIT_MASTER_KEY must decode to 32 bytes")
		}
		cfg.MasterKey = key
	case cfg.DevMode:
		// Ephemeral per-process key. There is deliberately no static fallback.
		key, err := secrets.GenerateKey(MasterKeyLength)
		if err != nil {
			return Server{}, err
		}
		cfg.MasterKey = key
	default:
		return Server{}, dErrors.New(dErrors.CodeInvalidInput, "CONDUIT_MASTER_KEY is required outside dev mode")
	}

	cfg.ServiceTokenKey = os.Getenv("CONDUIT_SERVICE_TOKEN_KEY")
	if cfg.ServiceTokenKey == "" {
		if !cfg.DevMode {
			return Server{}, dErrors.New(dErrors.CodeInvalidInput, "CONDUIT_SERVICE_TOKEN_KEY is required outside dev mode")
		}
		generated, err := secrets.Generate()
		if err != nil {
			return Server{}, err
		}
		cfg.ServiceTokenKey = generated
	}

	if v := os.Getenv("CONDUIT_MAX_RESPONSE_BYTES"); v != "" {
		if parsed, err := parseBytes(v); err == nil && parsed > 0 {
			cfg.MaxResponseBytes = parsed
		}
	}

	return cfg, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func durationOr(name string, fallback time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func parseBytes(v string) (int64, error) {
	var n int64
	for _, c := range v {
		if c < '0' || c > '9' {
			return 0, dErrors.New(dErrors.CodeInvalidInput, "not a byte count")
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}
