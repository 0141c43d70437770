package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plasma/internal/domain"
)

func TestEndpointsHandler_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewPrometheusMetrics(registry).SetRegistryComponents(domain.KindTool, 2)

	rec := httptest.NewRecorder()
	Endpoints{Metrics: registry}.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `plasma_registry_components{kind="tool"} 2`)

	rec = httptest.NewRecorder()
	Endpoints{Metrics: registry}.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEndpointsHandler_Healthz(t *testing.T) {
	healthy := true
	tracker := NewHealthTracker()
	tracker.Register("registry", func() error {
		if healthy {
			return nil
		}
		return errors.New("no snapshot")
	})
	handler := Endpoints{Health: tracker}.Handler()

	probe := func() (int, HealthReport) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		var report HealthReport
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		return rec.Code, report
	}

	code, report := probe()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", report.Status)

	healthy = false
	code, report = probe()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "no snapshot", report.Checks["registry"])
}

func TestEndpointsServe(t *testing.T) {
	listener := mustListen(t)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Endpoints{Addr: addr, Metrics: prometheus.NewRegistry()}.Serve(ctx, zap.NewNop())
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 25*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

func TestEndpointsServe_NothingEnabled(t *testing.T) {
	require.NoError(t, Endpoints{}.Serve(context.Background(), nil))
}

func TestEndpointsServe_AddressInUse(t *testing.T) {
	listener := mustListen(t)
	defer listener.Close()

	err := Endpoints{Addr: listener.Addr().String(), Metrics: prometheus.NewRegistry()}.Serve(context.Background(), zap.NewNop())
	require.ErrorContains(t, err, "observability listen")
}

func TestHealthTracker_Report(t *testing.T) {
	var tracker *HealthTracker
	require.Equal(t, "ok", tracker.Report().Status)

	tracker = NewHealthTracker()
	tracker.Register("a", func() error { return nil })
	tracker.Register("b", func() error { return errors.New("down") })

	report := tracker.Report()
	require.Equal(t, "degraded", report.Status)
	require.Equal(t, map[string]string{"a": "ok", "b": "down"}, report.Checks)
}

func mustListen(t *testing.T) net.Listener {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skip test due to listen error: %v", err)
	}
	return listener
}
