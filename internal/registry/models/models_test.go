package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
)

func TestAuthConfigUnmarshalKnownVariants(t *testing.T) {
	raw := `{
		"type": "api_key",
		"api_key": {
			"placement": "header",
			"parameter_name": "X-Api-Key",
			"secret": {"secret_name": "my-key"}
		}
	}`

	var cfg AuthConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	assert.Equal(t, AuthAPIKey, cfg.Type)
	require.NotNil(t, cfg.APIKey)
	assert.Equal(t, PlacementHeader, cfg.APIKey.Placement)
	assert.Equal(t, "my-key", cfg.APIKey.Secret.SecretName)
}

func TestAuthConfigUnknownDiscriminatorDefaultsToNone(t *testing.T) {
	// Configurations stored before a variant existed must keep loading.
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unknown type", raw: `{"type":"hmac_signature","api_key":{"parameter_name":"x"}}`},
		{name: "missing type", raw: `{}`},
		{name: "empty type", raw: `{"type":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg AuthConfig
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &cfg))
			assert.Equal(t, AuthNone, cfg.Type)
			assert.Nil(t, cfg.APIKey)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestAuthConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AuthConfig
		wantErr bool
	}{
		{name: "none", cfg: NoAuth()},
		{
			name: "api key complete",
			cfg: AuthConfig{Type: AuthAPIKey, APIKey: &APIKeyConfig{
				Placement: PlacementQuery, ParameterName: "key", Secret: SecretRef{SecretName: "s"},
			}},
		},
		{name: "api key missing payload", cfg: AuthConfig{Type: AuthAPIKey}, wantErr: true},
		{
			name: "api key missing parameter name",
			cfg: AuthConfig{Type: AuthAPIKey, APIKey: &APIKeyConfig{
				Placement: PlacementHeader, Secret: SecretRef{SecretName: "s"},
			}},
			wantErr: true,
		},
		{name: "bearer missing secret", cfg: AuthConfig{Type: AuthBearer, Bearer: &BearerConfig{}}, wantErr: true},
		{
			name: "basic missing password",
			cfg: AuthConfig{Type: AuthBasic, Basic: &BasicConfig{
				UsernameSecret: SecretRef{SecretName: "u"},
			}},
			wantErr: true,
		},
		{
			name: "oauth2 complete",
			cfg: AuthConfig{Type: AuthOAuth2, OAuth2: &OAuth2Config{
				TokenURL:           "https://auth.example.com/token",
				ClientIDSecret:     SecretRef{SecretName: "id"},
				ClientSecretSecret: SecretRef{SecretName: "secret"},
			}},
		},
		{
			name: "oauth2 missing token url",
			cfg: AuthConfig{Type: AuthOAuth2, OAuth2: &OAuth2Config{
				ClientIDSecret:     SecretRef{SecretName: "id"},
				ClientSecretSecret: SecretRef{SecretName: "secret"},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBearerPrefixDefault(t *testing.T) {
	b := &BearerConfig{Secret: SecretRef{SecretName: "t"}}
	assert.Equal(t, "Bearer", b.BearerPrefix())

	b.Prefix = "Token"
	assert.Equal(t, "Token", b.BearerPrefix())
}

func TestAPIEndpointLookup(t *testing.T) {
	api := &API{
		ID:      domain.APIID(uuid.New()),
		Name:    "example",
		BaseURL: "https://api.example.com",
		Endpoints: []Endpoint{
			{OperationID: "listUsers", Method: "GET", PathTemplate: "/users"},
			{OperationID: "getUser", Method: "GET", PathTemplate: "/users/{id}"},
		},
	}

	ep, err := api.Endpoint("getUser")
	require.NoError(t, err)
	assert.Equal(t, "/users/{id}", ep.PathTemplate)

	_, err = api.Endpoint("deleteUser")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestAPIValidate(t *testing.T) {
	valid := &API{
		ID:      domain.APIID(uuid.New()),
		Name:    "example",
		BaseURL: "https://api.example.com",
		Auth:    NoAuth(),
		Endpoints: []Endpoint{
			{OperationID: "me", Method: "GET", PathTemplate: "/me"},
		},
	}
	assert.NoError(t, valid.Validate())

	missingID := *valid
	missingID.ID = domain.APIID{}
	assert.Error(t, missingID.Validate())

	missingBase := *valid
	missingBase.BaseURL = "  "
	assert.Error(t, missingBase.Validate())

	badEndpoint := *valid
	badEndpoint.Endpoints = []Endpoint{{OperationID: "me", Method: "", PathTemplate: "/me"}}
	assert.Error(t, badEndpoint.Validate())

	badAuth := *valid
	badAuth.Auth = AuthConfig{Type: AuthBearer}
	assert.Error(t, badAuth.Validate())
}

func TestSecretRefNeverCarriesValue(t *testing.T) {
	// The reference marshals to the name only; resolved values must never be
	// serialized with registration records.
	data, err := json.Marshal(SecretRef{SecretName: "my-key"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"secret_name":"my-key"}`, string(data))
}
