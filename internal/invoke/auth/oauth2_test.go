package auth

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit/internal/registry/models"
	"conduit/internal/secrets"
	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
	"conduit/pkg/testutil"
)

// tokenEndpoint is a stub transport standing in for an OAuth2 token server.
// The SSRF gate rejects loopback addresses, so tests dispatch against a fake
// public hostname and intercept at the transport instead of binding a socket.
type tokenEndpoint struct {
	calls    atomic.Int32
	status   int
	body     string
	delay    time.Duration
	lastForm string
}

func (s *tokenEndpoint) Do(req *http.Request) (*http.Response, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		s.lastForm = string(raw)
	}
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(s.body)),
	}, nil
}

func oauth2Config() models.AuthConfig {
	return models.AuthConfig{
		Type: models.AuthOAuth2,
		OAuth2: &models.OAuth2Config{
			Flow:               "client_credentials",
			TokenURL:           "https://auth.example.com/oauth/token",
			ClientIDSecret:     models.SecretRef{SecretName: "client-id"},
			ClientSecretSecret: models.SecretRef{SecretName: "client-secret"},
			Scopes:             []string{"read", "write"},
		},
	}
}

func oauth2Resolver() *stubResolver {
	return &stubResolver{values: map[string]string{
		"client-id":     "my-client",
		"client-secret": "my-secret",
	}}
}

func TestOAuth2AppliesFreshToken(t *testing.T) {
	endpoint := &tokenEndpoint{body: `{"access_token":"tok-1","expires_in":3600,"token_type":"Bearer"}`}
	factory := NewFactory(oauth2Resolver(), NewTokenCache(), WithHTTPClient(endpoint))

	applier, err := factory.Create(oauth2Config(), domain.APIID(uuid.New()), nil)
	require.NoError(t, err)

	req := newRequest(t, "https://api.example.com/me")
	require.NoError(t, applier.Apply(context.Background(), req))

	assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
	assert.Equal(t, int32(1), endpoint.calls.Load())

	// The exchange is the standard form-encoded client-credentials grant.
	assert.Contains(t, endpoint.lastForm, "grant_type=client_credentials")
	assert.Contains(t, endpoint.lastForm, "client_id=my-client")
	assert.Contains(t, endpoint.lastForm, "client_secret=my-secret")
	assert.Contains(t, endpoint.lastForm, "scope=read+write")
}

func TestOAuth2ReusesCachedTokenAcrossHandlers(t *testing.T) {
	endpoint := &tokenEndpoint{body: `{"access_token":"tok-1","expires_in":3600}`}
	factory := NewFactory(oauth2Resolver(), NewTokenCache(), WithHTTPClient(endpoint))
	apiID := domain.APIID(uuid.New())

	for i := 0; i < 3; i++ {
		applier, err := factory.Create(oauth2Config(), apiID, nil)
		require.NoError(t, err)
		req := newRequest(t, "https://api.example.com/me")
		require.NoError(t, applier.Apply(context.Background(), req))
		assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
	}

	assert.Equal(t, int32(1), endpoint.calls.Load(), "handlers for the same API must share one token")
}

func TestOAuth2ConcurrentAppliesTriggerOneRefresh(t *testing.T) {
	endpoint := &tokenEndpoint{
		body:  `{"access_token":"tok-1","expires_in":3600}`,
		delay: 20 * time.Millisecond,
	}
	factory := NewFactory(oauth2Resolver(), NewTokenCache(), WithHTTPClient(endpoint))
	apiID := domain.APIID(uuid.New())

	result := testutil.RunConcurrent(10, func(int) error {
		applier, err := factory.Create(oauth2Config(), apiID, nil)
		if err != nil {
			return err
		}
		return applier.Apply(context.Background(), newRequest(t, "https://api.example.com/me"))
	})

	assert.Equal(t, int32(10), result.Successes)
	assert.Equal(t, int32(1), endpoint.calls.Load(), "concurrent applies must coalesce into one token request")
}

func TestOAuth2ExpirySkewBoundary(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := base.Add(10 * time.Minute)

	tests := []struct {
		name        string
		now         time.Time
		wantRefresh bool
	}{
		{name: "31s before expiry is still usable", now: expiresAt.Add(-31 * time.Second), wantRefresh: false},
		{name: "29s before expiry refreshes", now: expiresAt.Add(-29 * time.Second), wantRefresh: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &tokenEndpoint{body: `{"access_token":"tok-new","expires_in":3600}`}
			cache := NewTokenCache()
			apiID := domain.APIID(uuid.New())

			state := cache.state(apiID, domain.TenantID{})
			state.current.Store(&token{accessToken: "tok-old", expiresAt: expiresAt})

			factory := NewFactory(oauth2Resolver(), cache,
				WithHTTPClient(endpoint),
				WithClock(func() time.Time { return tt.now }),
			)
			applier, err := factory.Create(oauth2Config(), apiID, nil)
			require.NoError(t, err)

			req := newRequest(t, "https://api.example.com/me")
			require.NoError(t, applier.Apply(context.Background(), req))

			if tt.wantRefresh {
				assert.Equal(t, "Bearer tok-new", req.Header.Get("Authorization"))
				assert.Equal(t, int32(1), endpoint.calls.Load())
			} else {
				assert.Equal(t, "Bearer tok-old", req.Header.Get("Authorization"))
				assert.Equal(t, int32(0), endpoint.calls.Load())
			}
		})
	}
}

func TestOAuth2FailedRefreshDoesNotWedgeLaterCalls(t *testing.T) {
	endpoint := &tokenEndpoint{status: http.StatusUnauthorized, body: `{"error":"invalid_client"}`}
	factory := NewFactory(oauth2Resolver(), NewTokenCache(), WithHTTPClient(endpoint))
	apiID := domain.APIID(uuid.New())

	applier, err := factory.Create(oauth2Config(), apiID, nil)
	require.NoError(t, err)

	err = applier.Apply(context.Background(), newRequest(t, "https://api.example.com/me"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeAuthenticationFailed))
	// The upstream error body must not leak into the error.
	assert.NotContains(t, err.Error(), "invalid_client")

	// The refresh mutex was released; a subsequent call succeeds once the
	// endpoint recovers.
	endpoint.status = http.StatusOK
	endpoint.body = `{"access_token":"tok-2","expires_in":3600}`

	req := newRequest(t, "https://api.example.com/me")
	require.NoError(t, applier.Apply(context.Background(), req))
	assert.Equal(t, "Bearer tok-2", req.Header.Get("Authorization"))
}

func TestOAuth2RejectsIncompleteTokenResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing access_token", body: `{"expires_in":3600}`},
		{name: "zero expires_in", body: `{"access_token":"tok","expires_in":0}`},
		{name: "negative expires_in", body: `{"access_token":"tok","expires_in":-10}`},
		{name: "not json", body: `<html>error</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := &tokenEndpoint{body: tt.body}
			factory := NewFactory(oauth2Resolver(), NewTokenCache(), WithHTTPClient(endpoint))
			applier, err := factory.Create(oauth2Config(), domain.APIID(uuid.New()), nil)
			require.NoError(t, err)

			err = applier.Apply(context.Background(), newRequest(t, "https://api.example.com/me"))
			assert.True(t, dErrors.HasCode(err, dErrors.CodeAuthenticationFailed), "got %v", err)
		})
	}
}

func TestOAuth2BlockedTokenURL(t *testing.T) {
	endpoint := &tokenEndpoint{body: `{"access_token":"tok","expires_in":3600}`}
	cfg := oauth2Config()
	cfg.OAuth2.TokenURL = "http://169.254.169.254/latest/meta-data/"

	factory := NewFactory(oauth2Resolver(), NewTokenCache(), WithHTTPClient(endpoint))
	applier, err := factory.Create(cfg, domain.APIID(uuid.New()), nil)
	require.NoError(t, err)

	err = applier.Apply(context.Background(), newRequest(t, "https://api.example.com/me"))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeURLNotAllowed))
	assert.Equal(t, int32(0), endpoint.calls.Load(), "a blocked token URL must never be dialed")
}

func TestTokenCacheIsolatesTenants(t *testing.T) {
	endpoint := &tokenEndpoint{body: `{"access_token":"tok","expires_in":3600}`}
	cache := NewTokenCache()
	factory := NewFactory(oauth2Resolver(), cache, WithHTTPClient(endpoint))
	apiID := domain.APIID(uuid.New())

	for _, tenantID := range []domain.TenantID{
		domain.TenantID(uuid.New()),
		domain.TenantID(uuid.New()),
	} {
		tc := &secrets.TenantContext{TenantID: tenantID, EncryptionSalt: []byte("salt")}
		applier, err := factory.Create(oauth2Config(), apiID, tc)
		require.NoError(t, err)
		require.NoError(t, applier.Apply(context.Background(), newRequest(t, "https://api.example.com/me")))
	}

	assert.Equal(t, int32(2), endpoint.calls.Load(), "distinct tenants must not share tokens")
}

func TestTokenCacheInvalidateAPI(t *testing.T) {
	endpoint := &tokenEndpoint{body: `{"access_token":"tok","expires_in":3600}`}
	cache := NewTokenCache()
	factory := NewFactory(oauth2Resolver(), cache, WithHTTPClient(endpoint))
	apiID := domain.APIID(uuid.New())

	applier, err := factory.Create(oauth2Config(), apiID, nil)
	require.NoError(t, err)
	require.NoError(t, applier.Apply(context.Background(), newRequest(t, "https://api.example.com/me")))
	require.Equal(t, int32(1), endpoint.calls.Load())

	// Simulates an auth-config change: cached tokens for the API are dropped
	// and the next apply fetches fresh.
	cache.InvalidateAPI(apiID)

	applier, err = factory.Create(oauth2Config(), apiID, nil)
	require.NoError(t, err)
	require.NoError(t, applier.Apply(context.Background(), newRequest(t, "https://api.example.com/me")))
	assert.Equal(t, int32(2), endpoint.calls.Load())
}
