package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"conduit/internal/invoke"
	invokemetrics "conduit/internal/invoke/metrics"
	"conduit/internal/registry/models"
	"conduit/internal/secrets"
	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
	"conduit/pkg/platform/ssrf"
	psync "conduit/pkg/platform/sync"
)

// expirySkew is subtracted from a token's expiry when deciding whether it is
// still usable, so a token is never presented within 30s of expiring.
const expirySkew = 30 * time.Second

// maxTokenResponseBytes caps token endpoint responses.
const maxTokenResponseBytes = 1 << 20

// token is an immutable snapshot of a cached access token. Stored behind an
// atomic pointer so the fast path takes no lock.
type token struct {
	accessToken string
	expiresAt   time.Time
}

// usable reports whether the token can still be presented at the given time.
func (t *token) usable(now time.Time) bool {
	return t != nil && now.Before(t.expiresAt.Add(-expirySkew))
}

// tokenState is the refresh coordination point for one (api, tenant) pair.
// The mutex serializes refreshes; at most one token request is in flight.
type tokenState struct {
	mu      sync.Mutex
	current atomic.Pointer[token]
}

// TokenCache holds OAuth2 token state keyed by (apiID, tenantID). Keeping the
// state here rather than on the per-call handler keeps tokens usable across
// calls, while an auth-config change invalidates the affected entries.
type TokenCache struct {
	states *psync.Map[*tokenState]
}

// NewTokenCache creates an empty token cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{states: psync.NewMap[*tokenState]()}
}

// state returns (creating on first use) the token state for the pair.
func (c *TokenCache) state(apiID domain.APIID, tenantID domain.TenantID) *tokenState {
	key := apiID.String() + "/" + tenantID.String()
	st, _ := c.states.GetOrSet(key, &tokenState{})
	return st
}

// InvalidateAPI drops all token state for an API, across tenants. Call this
// when the API's auth configuration changes.
func (c *TokenCache) InvalidateAPI(apiID domain.APIID) {
	prefix := apiID.String() + "/"
	c.states.DeleteFunc(func(key string, _ *tokenState) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// OAuth2 performs the client-credentials flow, caching the access token until
// it nears expiry.
type OAuth2 struct {
	cfg     *models.OAuth2Config
	state   *tokenState
	secrets SecretResolver
	tenant  *secrets.TenantContext
	http    invoke.HTTPDoer
	metrics *invokemetrics.Metrics
	now     func() time.Time
}

func (h *OAuth2) Apply(ctx context.Context, req *invoke.Request) error {
	accessToken, err := h.ensureTokenValid(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return nil
}

// ensureTokenValid returns a usable access token, refreshing if needed.
// Fast path: the current token is loaded without a lock. Slow path: the
// refresh mutex is taken, the condition re-checked (a racing caller may have
// refreshed first), and only then is a token request issued. The deferred
// unlock releases the mutex on every exit path, so a failed or canceled
// refresh never wedges later calls.
func (h *OAuth2) ensureTokenValid(ctx context.Context) (string, error) {
	if t := h.state.current.Load(); t.usable(h.now()) {
		return t.accessToken, nil
	}

	h.state.mu.Lock()
	defer h.state.mu.Unlock()

	if t := h.state.current.Load(); t.usable(h.now()) {
		return t.accessToken, nil
	}

	fresh, err := h.requestToken(ctx)
	if err != nil {
		// The previously cached token, if any, stays untouched: a failed
		// refresh must never clobber state with a partial result.
		h.metrics.IncrementTokenRefreshFailure()
		return "", err
	}

	h.state.current.Store(fresh)
	return fresh.accessToken, nil
}

// tokenResponse is the standard client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type,omitempty"`
}

// requestToken performs one client-credentials exchange against the token URL.
func (h *OAuth2) requestToken(ctx context.Context) (*token, error) {
	// The token endpoint is an outbound call like any other; the SSRF gate
	// applies to it too.
	if err := ssrf.Validate(h.cfg.TokenURL); err != nil {
		return nil, err
	}

	clientID, err := h.secrets.Resolve(ctx, h.cfg.ClientIDSecret.SecretName, h.tenant)
	if err != nil {
		return nil, err
	}
	clientSecret, err := h.secrets.Resolve(ctx, h.cfg.ClientSecretSecret.SecretName, h.tenant)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	if len(h.cfg.Scopes) > 0 {
		form.Set("scope", strings.Join(h.cfg.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeAuthenticationFailed, "failed to construct token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	h.metrics.IncrementTokenRefresh()
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeAuthenticationFailed, "token endpoint unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The response body is not included: token endpoints echo client IDs
		// and some echo credentials on error.
		return nil, dErrors.New(dErrors.CodeAuthenticationFailed,
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseBytes))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeAuthenticationFailed, "failed to read token response")
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, dErrors.New(dErrors.CodeAuthenticationFailed, "token endpoint returned malformed response")
	}
	if parsed.AccessToken == "" || parsed.ExpiresIn <= 0 {
		return nil, dErrors.New(dErrors.CodeAuthenticationFailed, "token response missing access_token or expires_in")
	}

	return &token{
		accessToken: parsed.AccessToken,
		expiresAt:   h.now().Add(time.Duration(parsed.ExpiresIn) * time.Second),
	}, nil
}

// defaultTokenHTTPClient builds the transport used for token requests.
func defaultTokenHTTPClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}
