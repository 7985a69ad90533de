package auth

import (
	"context"
	"encoding/base64"

	"conduit/internal/invoke"
	"conduit/internal/registry/models"
	"conduit/internal/secrets"
	dErrors "conduit/pkg/domain-errors"
)

// NoAuth leaves the request untouched.
type NoAuth struct{}

func (NoAuth) Apply(context.Context, *invoke.Request) error {
	return nil
}

// APIKey injects a resolved secret as a header, query parameter, or cookie.
type APIKey struct {
	cfg     *models.APIKeyConfig
	secrets SecretResolver
	tenant  *secrets.TenantContext
}

func (h *APIKey) Apply(ctx context.Context, req *invoke.Request) error {
	value, err := h.secrets.Resolve(ctx, h.cfg.Secret.SecretName, h.tenant)
	if err != nil {
		return err
	}

	switch h.cfg.Placement {
	case models.PlacementHeader:
		req.Header.Set(h.cfg.ParameterName, value)
	case models.PlacementQuery:
		req.SetQueryParam(h.cfg.ParameterName, value)
	case models.PlacementCookie:
		req.AddCookie(h.cfg.ParameterName, value)
	default:
		return dErrors.New(dErrors.CodeUnsupportedAuthPlacement, "unsupported API key placement "+string(h.cfg.Placement))
	}
	return nil
}

// Bearer sets Authorization: {prefix} {secret}.
type Bearer struct {
	cfg     *models.BearerConfig
	secrets SecretResolver
	tenant  *secrets.TenantContext
}

func (h *Bearer) Apply(ctx context.Context, req *invoke.Request) error {
	token, err := h.secrets.Resolve(ctx, h.cfg.Secret.SecretName, h.tenant)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", h.cfg.BearerPrefix()+" "+token)
	return nil
}

// Basic sets Authorization: Basic base64(username:password). Encoding runs on
// the raw UTF-8 bytes, so credentials containing ':' , '@', or non-ASCII
// characters survive intact.
type Basic struct {
	cfg     *models.BasicConfig
	secrets SecretResolver
	tenant  *secrets.TenantContext
}

func (h *Basic) Apply(ctx context.Context, req *invoke.Request) error {
	username, err := h.secrets.Resolve(ctx, h.cfg.UsernameSecret.SecretName, h.tenant)
	if err != nil {
		return err
	}
	password, err := h.secrets.Resolve(ctx, h.cfg.PasswordSecret.SecretName, h.tenant)
	if err != nil {
		return err
	}

	credentials := make([]byte, 0, len(username)+len(password)+1)
	credentials = append(credentials, username...)
	credentials = append(credentials, ':')
	credentials = append(credentials, password...)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString(credentials))
	return nil
}
