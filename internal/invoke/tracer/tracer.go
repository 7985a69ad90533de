// Package tracer abstracts span creation so the invocation engine does not
// depend on OpenTelemetry APIs throughout.
package tracer

import "context"

// Attribute is a key/value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an integer attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span represents an in-flight traced operation.
type Span interface {
	// End completes the span, recording any error.
	End(err error)
	// SetAttributes adds attributes to the span.
	SetAttributes(attrs ...Attribute)
}

// Tracer creates spans.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Noop is a Tracer that records nothing.
type Noop struct{}

func (Noop) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                  {}
func (noopSpan) SetAttributes(...Attribute) {}

// Verify interfaces are satisfied.
var (
	_ Tracer = Noop{}
	_ Span   = noopSpan{}
)
