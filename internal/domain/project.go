package domain

// ProjectConfig is the decoded config/application.yaml of a project.
type ProjectConfig struct {
	Root          string
	Name          string
	Version       string
	EnableLog     bool
	RequiredEnv   []string
	Env           map[string]string
	Storage       StorageConfig
	Observability ObservabilityConfig
	Watch         bool
}

type StorageConfig struct {
	// Path is absolute once loaded; empty means ephemeral unless Persistent.
	Path       string
	Persistent bool
}

type ObservabilityConfig struct {
	ListenAddress string
	Metrics       bool
	Healthz       bool
}

// Enabled reports whether the observability HTTP server should run.
func (c ObservabilityConfig) Enabled() bool {
	return c.Metrics || c.Healthz
}
