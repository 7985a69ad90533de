package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMasterKey() string {
	key := make([]byte, MasterKeyLength)
	for i := range key {
		key[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CONDUIT_ADDR", "CONDUIT_DEV_MODE", "CONDUIT_MASTER_KEY",
		"CONDUIT_SERVICE_TOKEN_KEY", "CONDUIT_SECRET_CACHE_TTL",
		"CONDUIT_UPSTREAM_TIMEOUT", "CONDUIT_MAX_RESPONSE_BYTES",
		"CONDUIT_SEED_FILE", "CONDUIT_VAULT_ADDR", "CONDUIT_VAULT_TOKEN",
	} {
		t.Setenv(name, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONDUIT_MASTER_KEY", validMasterKey())
	t.Setenv("CONDUIT_SERVICE_TOKEN_KEY", "token-key")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 5*time.Minute, cfg.SecretCacheTTL)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxResponseBytes)
	assert.Len(t, cfg.MasterKey, MasterKeyLength)
}

func TestFromEnvRequiresMasterKeyOutsideDevMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONDUIT_SERVICE_TOKEN_KEY", "token-key")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnvRejectsBadMasterKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONDUIT_SERVICE_TOKEN_KEY", "token-key")

	t.Setenv("CONDUIT_MASTER_KEY", "not base64 ***")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("CONDUIT_MASTER_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	_, err = FromEnv()
	require.Error(t, err)
}

func TestFromEnvDevModeGeneratesEphemeralKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONDUIT_DEV_MODE", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.DevMode)
	assert.Len(t, cfg.MasterKey, MasterKeyLength)
	assert.NotEmpty(t, cfg.ServiceTokenKey)

	// A second process gets a different key; nothing is statically derivable.
	cfg2, err := FromEnv()
	require.NoError(t, err)
	assert.NotEqual(t, cfg.MasterKey, cfg2.MasterKey)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONDUIT_MASTER_KEY", validMasterKey())
	t.Setenv("CONDUIT_SERVICE_TOKEN_KEY", "token-key")
	t.Setenv("CONDUIT_ADDR", ":9999")
	t.Setenv("CONDUIT_SECRET_CACHE_TTL", "30s")
	t.Setenv("CONDUIT_UPSTREAM_TIMEOUT", "5s")
	t.Setenv("CONDUIT_MAX_RESPONSE_BYTES", "1024")
	t.Setenv("CONDUIT_VAULT_ADDR", "https://vault.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.SecretCacheTTL)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, int64(1024), cfg.MaxResponseBytes)
	assert.Equal(t, "https://vault.example.com", cfg.VaultAddr)
}

func TestFromEnvIgnoresMalformedOptionalValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONDUIT_MASTER_KEY", validMasterKey())
	t.Setenv("CONDUIT_SERVICE_TOKEN_KEY", "token-key")
	t.Setenv("CONDUIT_SECRET_CACHE_TTL", "not-a-duration")
	t.Setenv("CONDUIT_MAX_RESPONSE_BYTES", "10MB")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Minute, cfg.SecretCacheTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxResponseBytes)
}
