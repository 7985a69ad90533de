// Package servicetoken authenticates calling services to the invocation API.
// These tokens identify the platform's own callers and their tenant; they are
// unrelated to the OAuth2 tokens the engine obtains from third-party APIs.
package servicetoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
)

// Claims are the JWT claims carried by a service token.
type Claims struct {
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Service issues and validates service tokens.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

// NewService creates a service-token service. The signing key is injected
// configuration with no default.
func NewService(signingKey string, issuer string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// Issue mints a token binding the caller to a tenant.
func (s *Service) Issue(tenantID domain.TenantID) (string, error) {
	if tenantID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "tenant ID is required")
	}

	now := time.Now().UTC()
	claims := Claims{
		TenantID: tenantID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign service token")
	}
	return signed, nil
}

// Validate parses and verifies a token and returns the tenant it is bound to.
func (s *Service) Validate(tokenString string) (domain.TenantID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return domain.TenantID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid service token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.TenantID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid service token claims")
	}

	tenantID, err := domain.ParseTenantID(claims.TenantID)
	if err != nil {
		return domain.TenantID{}, dErrors.New(dErrors.CodeUnauthorized, "service token carries no tenant")
	}
	return tenantID, nil
}
