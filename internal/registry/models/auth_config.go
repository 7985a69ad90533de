package models

import (
	"encoding/json"
	"strings"

	dErrors "conduit/pkg/domain-errors"
)

// AuthType discriminates the auth configuration variants.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthAPIKey AuthType = "api_key"
	AuthBearer AuthType = "bearer"
	AuthBasic  AuthType = "basic"
	AuthOAuth2 AuthType = "oauth2"
)

// APIKeyPlacement says where an API key credential is injected.
type APIKeyPlacement string

const (
	PlacementHeader APIKeyPlacement = "header"
	PlacementQuery  APIKeyPlacement = "query"
	PlacementCookie APIKeyPlacement = "cookie"
)

// SecretRef is an indirection to a secret by name. It never carries the
// resolved value; resolution happens per call through the secret resolver.
type SecretRef struct {
	SecretName string `json:"secret_name"`
}

// APIKeyConfig injects a resolved secret as a header, query parameter, or cookie.
type APIKeyConfig struct {
	Placement     APIKeyPlacement `json:"placement"`
	ParameterName string          `json:"parameter_name"`
	Secret        SecretRef       `json:"secret"`
}

// BearerConfig sets Authorization: {prefix} {secret}.
type BearerConfig struct {
	Secret SecretRef `json:"secret"`
	Prefix string    `json:"prefix,omitempty"`
}

// BasicConfig sets Authorization: Basic base64(username:password).
type BasicConfig struct {
	UsernameSecret SecretRef `json:"username_secret"`
	PasswordSecret SecretRef `json:"password_secret"`
}

// OAuth2Config drives the client-credentials token exchange.
type OAuth2Config struct {
	Flow               string     `json:"flow"`
	TokenURL           string     `json:"token_url"`
	ClientIDSecret     SecretRef  `json:"client_id_secret"`
	ClientSecretSecret SecretRef  `json:"client_secret_secret"`
	Scopes             []string   `json:"scopes,omitempty"`
	RefreshTokenSecret *SecretRef `json:"refresh_token_secret,omitempty"`
}

// AuthConfig is a tagged union: exactly one variant is active, selected by Type.
// Unknown or missing discriminators deserialize as AuthNone rather than failing,
// to stay compatible with previously stored configurations.
type AuthConfig struct {
	Type   AuthType      `json:"type"`
	APIKey *APIKeyConfig `json:"api_key,omitempty"`
	Bearer *BearerConfig `json:"bearer,omitempty"`
	Basic  *BasicConfig  `json:"basic,omitempty"`
	OAuth2 *OAuth2Config `json:"oauth2,omitempty"`
}

// NoAuth is the zero-value configuration.
func NoAuth() AuthConfig {
	return AuthConfig{Type: AuthNone}
}

// UnmarshalJSON decodes the union and normalizes unknown discriminators to
// AuthNone. Stored configurations predating a variant must keep loading.
func (c *AuthConfig) UnmarshalJSON(data []byte) error {
	type alias AuthConfig
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	switch decoded.Type {
	case AuthAPIKey, AuthBearer, AuthBasic, AuthOAuth2, AuthNone:
	default:
		decoded = alias{Type: AuthNone}
	}

	*c = AuthConfig(decoded)
	return nil
}

// Validate enforces that the active variant carries its required fields.
func (c AuthConfig) Validate() error {
	switch c.Type {
	case AuthNone, "":
		return nil
	case AuthAPIKey:
		if c.APIKey == nil {
			return dErrors.New(dErrors.CodeInvalidInput, "api_key configuration is missing")
		}
		if strings.TrimSpace(c.APIKey.ParameterName) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "api_key parameter name is required")
		}
		if c.APIKey.Secret.SecretName == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "api_key secret reference is required")
		}
		return nil
	case AuthBearer:
		if c.Bearer == nil || c.Bearer.Secret.SecretName == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "bearer secret reference is required")
		}
		return nil
	case AuthBasic:
		if c.Basic == nil || c.Basic.UsernameSecret.SecretName == "" || c.Basic.PasswordSecret.SecretName == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "basic auth secret references are required")
		}
		return nil
	case AuthOAuth2:
		if c.OAuth2 == nil {
			return dErrors.New(dErrors.CodeInvalidInput, "oauth2 configuration is missing")
		}
		if strings.TrimSpace(c.OAuth2.TokenURL) == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "oauth2 token URL is required")
		}
		if c.OAuth2.ClientIDSecret.SecretName == "" || c.OAuth2.ClientSecretSecret.SecretName == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "oauth2 client credential secret references are required")
		}
		return nil
	default:
		return dErrors.New(dErrors.CodeUnsupportedAuthType, "unsupported auth type "+string(c.Type))
	}
}

// BearerPrefix returns the configured prefix, defaulting to "Bearer".
func (b *BearerConfig) BearerPrefix() string {
	if b.Prefix == "" {
		return "Bearer"
	}
	return b.Prefix
}
