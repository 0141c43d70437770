package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/component"
	"plasma/internal/infra/registry"
	"plasma/internal/infra/storage"
	"plasma/internal/infra/telemetry"
)

// Invocation is the outcome of running one component.
type Invocation struct {
	Entry    registry.Entry
	Value    any
	Params   domain.Params
	Duration time.Duration
}

// Invoke looks name up in the current snapshot and runs it.
func (s *Server) Invoke(ctx context.Context, kind domain.Kind, name string, input map[string]any) (Invocation, error) {
	entry, ok := s.store.Load().Lookup(kind, name)
	if !ok {
		return Invocation{}, fmt.Errorf("%s %q: %w", kind, name, domain.ErrComponentNotFound)
	}
	return s.invokeEntry(ctx, entry, input)
}

func (s *Server) invokeEntry(ctx context.Context, entry registry.Entry, input map[string]any) (Invocation, error) {
	name := entry.Metadata.Name
	ctx, _ = telemetry.StartInvocation(ctx, entry.Kind, name)
	if s.storage != nil {
		ctx = storage.WithStore(ctx, s.storage)
	}
	logger := telemetry.InvocationLogger(ctx, s.logger)

	start := time.Now()
	value, params, err := component.Invoke(ctx, entry.Declaration, entry.Handler, input)
	duration := time.Since(start)

	status := domain.InvocationStatusSuccess
	var panicErr *component.PanicError
	reason, invalidInput := component.InputFailure(err)
	switch {
	case err == nil:
		logger.Debug("component invoked", telemetry.EventField(telemetry.EventInvokeSuccess), telemetry.DurationField(duration))
	case invalidInput:
		status = domain.InvocationStatusInvalid
		s.metrics.ObserveCoercionFailure(entry.Kind, name, reason)
		logger.Info("component input rejected", telemetry.EventField(telemetry.EventInvokeInvalid), zap.Error(err))
	case errors.As(err, &panicErr):
		status = domain.InvocationStatusError
		logger.Error("component panicked", telemetry.EventField(telemetry.EventInvokePanic), zap.Any("panic", panicErr.Value))
	default:
		status = domain.InvocationStatusError
		logger.Warn("component failed", telemetry.EventField(telemetry.EventInvokeFailure), telemetry.DurationField(duration), zap.Error(err))
	}
	s.metrics.ObserveInvocation(domain.InvocationMetric{
		Kind:     entry.Kind,
		Name:     name,
		Status:   status,
		Duration: duration,
	})

	if err != nil {
		return Invocation{Entry: entry, Duration: duration}, err
	}
	return Invocation{Entry: entry, Value: value, Params: params, Duration: duration}, nil
}
