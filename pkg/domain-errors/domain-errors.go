package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeInternal     Code = "internal_error"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeTimeout      Code = "timeout"

	// URL validation codes (SSRF gate).
	CodeEmptyURL      Code = "empty_url"
	CodeInvalidURL    Code = "invalid_url"
	CodeURLNotAllowed Code = "url_not_allowed"

	// Request construction codes.
	CodeMissingParameter Code = "missing_required_parameter"

	// Secret resolution codes.
	CodeSecretNotFound   Code = "secret_not_found"
	CodeDecryptionFailed Code = "decryption_failed"

	// Upstream authentication codes.
	CodeAuthenticationFailed     Code = "authentication_failed"
	CodeUnsupportedAuthType      Code = "unsupported_auth_type"
	CodeUnsupportedAuthPlacement Code = "unsupported_auth_placement"

	// Outbound transport codes. Any HTTP status returned by the target API is
	// a normal result, never a transport failure.
	CodeTransport Code = "transport_failure"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, store, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
