package telemetry

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"plasma/internal/domain"
)

type invocationKey struct{}

// Invocation identifies one component call across log lines. TraceID and
// SpanID are set when the caller's context carries a valid span.
type Invocation struct {
	ID        string
	Kind      domain.Kind
	Component string
	TraceID   string
	SpanID    string
}

// WithInvocationID pins the ID the next StartInvocation under ctx will use.
func WithInvocationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, invocationKey{}, Invocation{ID: id})
}

func InvocationFromContext(ctx context.Context) (Invocation, bool) {
	if ctx == nil {
		return Invocation{}, false
	}
	inv, ok := ctx.Value(invocationKey{}).(Invocation)
	return inv, ok && inv.ID != ""
}

// StartInvocation tags ctx with a fresh invocation of component. An ID
// already on ctx is kept so nested calls share it.
func StartInvocation(ctx context.Context, kind domain.Kind, component string) (context.Context, Invocation) {
	if ctx == nil {
		ctx = context.Background()
	}
	inv := Invocation{Kind: kind, Component: component}
	if parent, ok := InvocationFromContext(ctx); ok {
		inv.ID = parent.ID
	} else {
		inv.ID = uuid.NewString()
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		inv.TraceID = sc.TraceID().String()
		inv.SpanID = sc.SpanID().String()
	}
	return context.WithValue(ctx, invocationKey{}, inv), inv
}

// Fields renders inv as log fields, skipping empty values.
func (inv Invocation) Fields() []zap.Field {
	fields := []zap.Field{RequestIDField(inv.ID)}
	if inv.Kind != "" {
		fields = append(fields, KindField(inv.Kind))
	}
	if inv.Component != "" {
		fields = append(fields, ComponentField(inv.Component))
	}
	if inv.TraceID != "" {
		fields = append(fields, TraceIDField(inv.TraceID), SpanIDField(inv.SpanID))
	}
	return fields
}

// InvocationLogger returns base annotated with the invocation on ctx.
func InvocationLogger(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	inv, ok := InvocationFromContext(ctx)
	if !ok {
		return base
	}
	return base.With(inv.Fields()...)
}
