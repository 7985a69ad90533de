package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit/internal/registry/models"
	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
)

func TestFactoryDispatch(t *testing.T) {
	factory := NewFactory(&stubResolver{}, NewTokenCache())
	apiID := domain.APIID(uuid.New())

	tests := []struct {
		name string
		cfg  models.AuthConfig
		want any
	}{
		{name: "none", cfg: models.NoAuth(), want: NoAuth{}},
		{name: "empty type", cfg: models.AuthConfig{}, want: NoAuth{}},
		{
			name: "api key",
			cfg: models.AuthConfig{Type: models.AuthAPIKey, APIKey: &models.APIKeyConfig{
				Placement:     models.PlacementHeader,
				ParameterName: "X-Key",
				Secret:        models.SecretRef{SecretName: "k"},
			}},
			want: &APIKey{},
		},
		{
			name: "bearer",
			cfg: models.AuthConfig{Type: models.AuthBearer, Bearer: &models.BearerConfig{
				Secret: models.SecretRef{SecretName: "t"},
			}},
			want: &Bearer{},
		},
		{
			name: "basic",
			cfg: models.AuthConfig{Type: models.AuthBasic, Basic: &models.BasicConfig{
				UsernameSecret: models.SecretRef{SecretName: "u"},
				PasswordSecret: models.SecretRef{SecretName: "p"},
			}},
			want: &Basic{},
		},
		{name: "oauth2", cfg: oauth2Config(), want: &OAuth2{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applier, err := factory.Create(tt.cfg, apiID, nil)
			require.NoError(t, err)
			assert.IsType(t, tt.want, applier)
		})
	}
}

func TestFactoryUnsupportedType(t *testing.T) {
	factory := NewFactory(&stubResolver{}, NewTokenCache())

	_, err := factory.Create(models.AuthConfig{Type: models.AuthType("saml")}, domain.APIID(uuid.New()), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedAuthType))
}

func TestFactoryRejectsInvalidConfig(t *testing.T) {
	factory := NewFactory(&stubResolver{}, NewTokenCache())

	// Active variant missing its payload.
	_, err := factory.Create(models.AuthConfig{Type: models.AuthBearer}, domain.APIID(uuid.New()), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
