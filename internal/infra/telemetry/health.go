package telemetry

import (
	"sort"
	"sync"
)

// HealthCheck returns nil while its subsystem is healthy.
type HealthCheck func() error

type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthTracker aggregates named checks into one report.
type HealthTracker struct {
	mu     sync.RWMutex
	checks map[string]HealthCheck
}

func NewHealthTracker() *HealthTracker {
	return &HealthTracker{checks: make(map[string]HealthCheck)}
}

// Register adds or replaces the check called name.
func (t *HealthTracker) Register(name string, check HealthCheck) {
	if t == nil || check == nil {
		return
	}
	t.mu.Lock()
	t.checks[name] = check
	t.mu.Unlock()
}

func (t *HealthTracker) Report() HealthReport {
	report := HealthReport{Status: "ok"}
	if t == nil {
		return report
	}
	t.mu.RLock()
	names := make([]string, 0, len(t.checks))
	for name := range t.checks {
		names = append(names, name)
	}
	checks := make(map[string]HealthCheck, len(t.checks))
	for name, check := range t.checks {
		checks[name] = check
	}
	t.mu.RUnlock()

	sort.Strings(names)
	report.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := checks[name](); err != nil {
			report.Status = "degraded"
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = "ok"
	}
	return report
}
