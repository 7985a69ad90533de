// Package auth applies stored credential configurations to outbound requests.
// Each variant of the configuration union maps to one handler; the OAuth2
// handler owns token-refresh state shared across calls via an explicit cache.
package auth

import (
	"context"
	"time"

	"conduit/internal/invoke"
	invokemetrics "conduit/internal/invoke/metrics"
	"conduit/internal/registry/models"
	"conduit/internal/secrets"
	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
)

// SecretResolver is the resolution surface handlers need. *secrets.Resolver
// satisfies it.
type SecretResolver interface {
	Resolve(ctx context.Context, name string, tc *secrets.TenantContext) (string, error)
}

// Factory creates the handler for a stored auth configuration. Handlers are
// per-call, but OAuth2 token state outlives them through the token cache.
type Factory struct {
	secrets SecretResolver
	tokens  *TokenCache
	http    invoke.HTTPDoer
	metrics *invokemetrics.Metrics
	now     func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHTTPClient sets the transport used for token requests (for testing).
func WithHTTPClient(doer invoke.HTTPDoer) FactoryOption {
	return func(f *Factory) {
		if doer != nil {
			f.http = doer
		}
	}
}

// WithMetrics attaches invocation metrics for token refresh accounting.
func WithMetrics(m *invokemetrics.Metrics) FactoryOption {
	return func(f *Factory) {
		f.metrics = m
	}
}

// WithClock overrides the clock for tests.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFactory creates the handler factory.
func NewFactory(resolver SecretResolver, tokens *TokenCache, opts ...FactoryOption) *Factory {
	f := &Factory{
		secrets: resolver,
		tokens:  tokens,
		http:    defaultTokenHTTPClient(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Create dispatches on the configuration variant. Unrecognized variants fail
// with unsupported_auth_type; loading unknown variants from storage is handled
// earlier by the union's deserialization defaulting to none.
func (f *Factory) Create(cfg models.AuthConfig, apiID domain.APIID, tc *secrets.TenantContext) (invoke.AuthApplier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case models.AuthNone, "":
		return NoAuth{}, nil
	case models.AuthAPIKey:
		return &APIKey{cfg: cfg.APIKey, secrets: f.secrets, tenant: tc}, nil
	case models.AuthBearer:
		return &Bearer{cfg: cfg.Bearer, secrets: f.secrets, tenant: tc}, nil
	case models.AuthBasic:
		return &Basic{cfg: cfg.Basic, secrets: f.secrets, tenant: tc}, nil
	case models.AuthOAuth2:
		return &OAuth2{
			cfg:     cfg.OAuth2,
			state:   f.tokens.state(apiID, tenantOf(tc)),
			secrets: f.secrets,
			tenant:  tc,
			http:    f.http,
			metrics: f.metrics,
			now:     f.now,
		}, nil
	default:
		return nil, dErrors.New(dErrors.CodeUnsupportedAuthType, "unsupported auth type "+string(cfg.Type))
	}
}

func tenantOf(tc *secrets.TenantContext) domain.TenantID {
	if tc == nil {
		return domain.TenantID{}
	}
	return tc.TenantID
}

// Verify the factory satisfies the orchestrator's contract.
var _ invoke.AuthFactory = (*Factory)(nil)
