package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"plasma/internal/domain"
)

type PrometheusMetrics struct {
	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	coercionFailures   *prometheus.CounterVec
	registryComponents *prometheus.GaugeVec
	registryReloads    *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plasma_invocations_total",
				Help: "Total number of component invocations",
			},
			[]string{"kind", "name", "status"},
		),
		invocationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plasma_invocation_duration_seconds",
				Help:    "Duration of component invocations in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind", "name", "status"},
		),
		coercionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plasma_coercion_failures_total",
				Help: "Total number of rejected invocation inputs",
			},
			[]string{"kind", "name", "reason"},
		),
		registryComponents: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "plasma_registry_components",
				Help: "Current number of published components",
			},
			[]string{"kind"},
		),
		registryReloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plasma_registry_reloads_total",
				Help: "Total number of registry reload attempts",
			},
			[]string{"status"},
		),
	}
}

func (p *PrometheusMetrics) ObserveInvocation(metric domain.InvocationMetric) {
	status := string(metric.Status)
	if status == "" {
		status = string(domain.InvocationStatusSuccess)
	}
	p.invocations.WithLabelValues(string(metric.Kind), metric.Name, status).Inc()
	p.invocationDuration.WithLabelValues(string(metric.Kind), metric.Name, status).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveCoercionFailure(kind domain.Kind, name string, reason string) {
	p.coercionFailures.WithLabelValues(string(kind), name, reason).Inc()
}

func (p *PrometheusMetrics) SetRegistryComponents(kind domain.Kind, count int) {
	p.registryComponents.WithLabelValues(string(kind)).Set(float64(count))
}

func (p *PrometheusMetrics) ObserveRegistryReload(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.registryReloads.WithLabelValues(status).Inc()
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
