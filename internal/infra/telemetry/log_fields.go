package telemetry

import (
	"time"

	"go.uber.org/zap"

	"plasma/internal/domain"
)

const (
	FieldEvent      = "event"
	FieldKind       = "kind"
	FieldComponent  = "component"
	FieldRevision   = "revision"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

const (
	EventInvokeSuccess   = "invoke_success"
	EventInvokeInvalid   = "invoke_invalid"
	EventInvokeFailure   = "invoke_failure"
	EventInvokePanic     = "invoke_panic"
	EventReloadSuccess   = "reload_success"
	EventReloadFailure   = "reload_failure"
	EventReloadUnchanged = "reload_unchanged"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func KindField(kind domain.Kind) zap.Field {
	return zap.String(FieldKind, string(kind))
}

func ComponentField(name string) zap.Field {
	return zap.String(FieldComponent, name)
}

func RevisionField(revision uint64) zap.Field {
	return zap.Uint64(FieldRevision, revision)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}
