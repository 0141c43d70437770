package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"plasma/internal/domain"
)

func writeProject(t *testing.T, dir string, config string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), dir)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	for _, kind := range domain.Kinds {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "app", kind.Dir()), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "application.yaml"), []byte(config), 0o600))
	return root
}

func newTestLoader(env map[string]string) *Loader {
	l := NewLoader(zap.NewNop())
	l.lookup = func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
	return l
}

func TestLoad_Defaults(t *testing.T) {
	root := writeProject(t, "testserver", "{}\n")

	cfg, err := newTestLoader(nil).Load(context.Background(), root)
	require.NoError(t, err)

	want := domain.ProjectConfig{
		Root:        root,
		Name:        "Testserver MCP Server",
		Version:     "1.0.0",
		EnableLog:   true,
		RequiredEnv: []string{},
		Env:         map[string]string{},
		Observability: domain.ObservabilityConfig{
			ListenAddress: domain.DefaultObservabilityListenAddress,
		},
		Watch: true,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FullConfigWithExpansion(t *testing.T) {
	root := writeProject(t, "demo", `
name: "${SERVER_NAME}"
version: 2.1.0
enableLog: false
requiredEnv: [API_TOKEN, " "]
env:
  GREETING: hello
storage:
  path: data/plasma.db
  persistent: true
observability:
  listenAddress: "127.0.0.1:${METRICS_PORT:-9500}"
  metrics: ${METRICS_ON}
watch: false
`)

	cfg, err := newTestLoader(map[string]string{
		"SERVER_NAME": "Demo Server",
		"METRICS_ON":  "true",
	}).Load(context.Background(), root)
	require.NoError(t, err)

	require.Equal(t, "Demo Server", cfg.Name)
	require.Equal(t, "2.1.0", cfg.Version)
	require.False(t, cfg.EnableLog)
	require.Equal(t, []string{"API_TOKEN"}, cfg.RequiredEnv)
	require.Equal(t, map[string]string{"GREETING": "hello"}, cfg.Env)
	require.Equal(t, filepath.Join(root, "data", "plasma.db"), cfg.Storage.Path)
	require.True(t, cfg.Storage.Persistent)
	require.Equal(t, "127.0.0.1:9500", cfg.Observability.ListenAddress)
	require.True(t, cfg.Observability.Metrics)
	require.False(t, cfg.Observability.Healthz)
	require.True(t, cfg.Observability.Enabled())
	require.False(t, cfg.Watch)
}

func TestLoad_MissingConfigIsNotProject(t *testing.T) {
	_, err := newTestLoader(nil).Load(context.Background(), t.TempDir())
	require.ErrorIs(t, err, domain.ErrNotProject)
}

func TestLoad_InvalidListenAddress(t *testing.T) {
	root := writeProject(t, "bad", "observability:\n  listenAddress: nope\n")
	_, err := newTestLoader(nil).Load(context.Background(), root)
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestLoad_MalformedYAML(t *testing.T) {
	root := writeProject(t, "broken", "name: [unterminated\n")
	_, err := newTestLoader(nil).Load(context.Background(), root)
	require.Error(t, err)
}

func TestExpandConfigEnv(t *testing.T) {
	lookup := func(key string) (string, bool) {
		switch key {
		case "PORT":
			return "8080", true
		case "EMPTY":
			return "", true
		}
		return "", false
	}

	out, missing, err := expandConfigEnv([]byte("port: ${PORT}\nquoted: \"${PORT}\"\nfallback: ${EMPTY:-x}\nunset: ${NOPE}\n${PORT}: key\n"), lookup)
	require.NoError(t, err)
	require.Equal(t, []string{"NOPE"}, missing)
	require.Contains(t, out, "port: 8080")
	require.Contains(t, out, `quoted: "8080"`)
	require.Contains(t, out, "fallback: x")
	require.Contains(t, out, "${PORT}: key")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PLASMA_TEST_PRESET", "1")

	err := ApplyEnv(domain.ProjectConfig{
		Env:         map[string]string{"PLASMA_TEST_EXPORTED": "yes"},
		RequiredEnv: []string{"PLASMA_TEST_PRESET", "PLASMA_TEST_EXPORTED"},
	})
	require.NoError(t, err)
	require.Equal(t, "yes", os.Getenv("PLASMA_TEST_EXPORTED"))
	t.Cleanup(func() { _ = os.Unsetenv("PLASMA_TEST_EXPORTED") })

	err = ApplyEnv(domain.ProjectConfig{RequiredEnv: []string{"PLASMA_TEST_ABSENT"}})
	require.ErrorIs(t, err, domain.ErrMissingEnv)
	require.ErrorContains(t, err, "PLASMA_TEST_ABSENT")
}

func TestCheckLayout(t *testing.T) {
	root := writeProject(t, "ok", "{}\n")
	require.NoError(t, CheckLayout(root))

	require.NoError(t, os.RemoveAll(filepath.Join(root, "app", "tools")))
	err := CheckLayout(root)
	require.ErrorIs(t, err, domain.ErrNotProject)
	require.ErrorContains(t, err, "app/tools")
}

func TestDefaultServerName(t *testing.T) {
	cases := map[string]string{
		"testserver":     "Testserver MCP Server",
		"/tmp/my-app":    "MyApp MCP Server",
		"weather_lookup": "WeatherLookup MCP Server",
		"/":              "Plasma MCP Server",
	}
	for root, want := range cases {
		require.Equal(t, want, DefaultServerName(root), root)
	}
}
