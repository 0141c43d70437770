package domain

import "time"

// InvocationStatus labels the outcome of a component invocation.
type InvocationStatus string

const (
	// InvocationStatusSuccess indicates the component ran and returned.
	InvocationStatusSuccess InvocationStatus = "success"
	// InvocationStatusInvalid indicates construction rejected the input.
	InvocationStatusInvalid InvocationStatus = "invalid"
	// InvocationStatusError indicates the component body failed.
	InvocationStatusError InvocationStatus = "error"
)

// InvocationMetric captures one invocation outcome.
type InvocationMetric struct {
	Kind     Kind
	Name     string
	Status   InvocationStatus
	Duration time.Duration
}

// Metrics records framework metrics.
type Metrics interface {
	ObserveInvocation(metric InvocationMetric)
	ObserveCoercionFailure(kind Kind, name string, reason string)
	SetRegistryComponents(kind Kind, count int)
	ObserveRegistryReload(err error)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) ObserveInvocation(InvocationMetric)         {}
func (NoopMetrics) ObserveCoercionFailure(Kind, string, string) {}
func (NoopMetrics) SetRegistryComponents(Kind, int)             {}
func (NoopMetrics) ObserveRegistryReload(error)                 {}

var _ Metrics = NoopMetrics{}
