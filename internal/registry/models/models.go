// Package models holds the canonical registration records consumed by the
// invocation engine. These records are produced by format-specific spec
// parsers (OpenAPI, Postman, GraphQL) and are read-only inputs here.
package models

import (
	"encoding/json"
	"strings"

	"conduit/pkg/domain"
	dErrors "conduit/pkg/domain-errors"
)

// ParameterLocation says where a parameter is placed on the outbound request.
type ParameterLocation string

const (
	LocationPath   ParameterLocation = "path"
	LocationQuery  ParameterLocation = "query"
	LocationHeader ParameterLocation = "header"
)

// ParameterDef describes one declared endpoint parameter.
type ParameterDef struct {
	Name     string            `json:"name"`
	Location ParameterLocation `json:"location"`
	Required bool              `json:"required"`
	Schema   json.RawMessage   `json:"schema,omitempty"`
}

// BodySchema describes the declared JSON request body of an endpoint.
type BodySchema struct {
	Properties map[string]json.RawMessage `json:"properties,omitempty"`
	Required   []string                   `json:"required,omitempty"`
}

// Endpoint is a read-only template for one operation of a registered API.
type Endpoint struct {
	OperationID       string         `json:"operation_id"`
	Method            string         `json:"method"`
	PathTemplate      string         `json:"path_template"`
	Parameters        []ParameterDef `json:"parameters,omitempty"`
	RequestBodySchema *BodySchema    `json:"request_body_schema,omitempty"`
}

// API is a registered third-party API together with its auth configuration.
type API struct {
	ID        domain.APIID `json:"id"`
	Name      string       `json:"name"`
	BaseURL   string       `json:"base_url"`
	Auth      AuthConfig   `json:"auth"`
	Endpoints []Endpoint   `json:"endpoints"`
}

// Endpoint finds an operation by ID.
func (a *API) Endpoint(operationID string) (*Endpoint, error) {
	for i := range a.Endpoints {
		if a.Endpoints[i].OperationID == operationID {
			return &a.Endpoints[i], nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "operation "+operationID+" is not registered")
}

// Validate checks structural invariants of a registration record.
func (a *API) Validate() error {
	if a.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "API ID is required")
	}
	if strings.TrimSpace(a.BaseURL) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "base URL is required")
	}
	if err := a.Auth.Validate(); err != nil {
		return err
	}
	for _, ep := range a.Endpoints {
		if ep.OperationID == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "endpoint operation ID is required")
		}
		if ep.Method == "" || ep.PathTemplate == "" {
			return dErrors.New(dErrors.CodeInvalidInput, "endpoint method and path template are required")
		}
	}
	return nil
}
