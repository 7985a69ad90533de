// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "conduit/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing APIID where TenantID is expected.
type (
	TenantID uuid.UUID
	APIID    uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseTenantID(s string) (TenantID, error) {
	id, err := parseUUID(s, "tenant ID")
	return TenantID(id), err
}

func ParseAPIID(s string) (APIID, error) {
	id, err := parseUUID(s, "API ID")
	return APIID(id), err
}

// String methods - for logging and debugging.

func (id TenantID) String() string { return uuid.UUID(id).String() }
func (id APIID) String() string    { return uuid.UUID(id).String() }

// IsNil checks for the zero value.

func (id TenantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id APIID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// Text marshaling - IDs appear as canonical UUID strings in JSON and seed files.

func (id TenantID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *TenantID) UnmarshalText(text []byte) error {
	parsed, err := ParseTenantID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id APIID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *APIID) UnmarshalText(text []byte) error {
	parsed, err := ParseAPIID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return id, nil
}
