// Package requestcontext carries per-request values through context without
// leaking transport types into domain code.
package requestcontext

import (
	"context"

	"conduit/pkg/domain"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	tenantIDKey
	clientIPKey
)

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID, or "" when none was set.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithTenantID stores the authenticated caller's tenant in the context.
func WithTenantID(ctx context.Context, tenantID domain.TenantID) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantID returns the caller's tenant and whether one was set.
func TenantID(ctx context.Context) (domain.TenantID, bool) {
	v, ok := ctx.Value(tenantIDKey).(domain.TenantID)
	return v, ok
}

// WithClientIP stores the caller's IP address in the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the caller's IP address, or "" when none was set.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
