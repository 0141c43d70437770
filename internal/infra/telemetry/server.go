package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"plasma/internal/domain"
)

const shutdownGrace = 5 * time.Second

// Endpoints selects what the observability listener exposes.
type Endpoints struct {
	Addr    string
	Metrics prometheus.Gatherer
	Health  *HealthTracker
}

// Handler routes /metrics when Metrics is set and /healthz when Health is set.
func (e Endpoints) Handler() http.Handler {
	mux := http.NewServeMux()
	if e.Metrics != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(e.Metrics, promhttp.HandlerOpts{}))
	}
	if e.Health != nil {
		mux.HandleFunc("/healthz", e.serveHealth)
	}
	return mux
}

func (e Endpoints) serveHealth(w http.ResponseWriter, _ *http.Request) {
	report := e.Health.Report()
	code := http.StatusOK
	if report.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}

// Serve binds Addr and serves until ctx is done. With nothing to expose it
// returns nil without listening.
func (e Endpoints) Serve(ctx context.Context, logger *zap.Logger) error {
	if e.Metrics == nil && e.Health == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := e.Addr
	if addr == "" {
		addr = domain.DefaultObservabilityListenAddress
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("observability listen %s: %w", addr, err)
	}

	server := &http.Server{Handler: e.Handler(), ReadHeaderTimeout: 5 * time.Second}
	done := make(chan error, 1)
	go func() { done <- server.Serve(listener) }()
	logger.Info("observability endpoints up",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("metrics", e.Metrics != nil),
		zap.Bool("healthz", e.Health != nil),
	)

	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("observability shutdown: %w", err)
	}
	return nil
}
