package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/filecomponent"
	"plasma/internal/infra/gateway"
	"plasma/internal/infra/metadata"
	"plasma/internal/infra/notifications"
	"plasma/internal/infra/project"
	"plasma/internal/infra/registry"
	"plasma/internal/infra/storage"
	"plasma/internal/infra/telemetry"
)

func NewProjectLoader(logging LoggingConfig) *project.Loader {
	return project.NewLoader(logging.Logger)
}

// NewProjectConfig loads the project and exports its environment.
func NewProjectConfig(ctx context.Context, cfg ServeConfig, loader *project.Loader) (domain.ProjectConfig, error) {
	projectCfg, err := loader.Load(ctx, cfg.Root)
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	if err := project.ApplyEnv(projectCfg); err != nil {
		return domain.ProjectConfig{}, err
	}
	return projectCfg, nil
}

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewHealthTracker() *telemetry.HealthTracker {
	return telemetry.NewHealthTracker()
}

func NewListChangeHub() *notifications.ListChangeHub {
	return notifications.NewListChangeHub()
}

func NewSynthesizer(projectCfg domain.ProjectConfig, logger *zap.Logger) *metadata.Synthesizer {
	return metadata.NewSynthesizer(metadata.ProjectLocator{Root: projectCfg.Root}, logger)
}

func NewScanner(synth *metadata.Synthesizer, metrics domain.Metrics, logger *zap.Logger) *registry.Scanner {
	return registry.NewScanner(synth, metrics, logger)
}

func NewFileSource(projectCfg domain.ProjectConfig, logger *zap.Logger) *filecomponent.Source {
	return filecomponent.NewSource(projectCfg.Root, logger)
}

// NewSources lists compiled components first so they win name collisions.
func NewSources(cfg ServeConfig, files *filecomponent.Source) []registry.Source {
	compiled := cfg.Registrar
	if compiled == nil {
		compiled = registry.Default
	}
	return []registry.Source{compiled, files}
}

// NewRegistryStore performs the boot scan. Finding no component at all is fatal.
func NewRegistryStore(ctx context.Context, scanner *registry.Scanner, sources []registry.Source, hub *notifications.ListChangeHub, logger *zap.Logger) (*registry.Store, error) {
	snapshot, err := scanner.Scan(ctx, sources...)
	if err != nil {
		if errors.Is(err, domain.ErrNoComponents) {
			return nil, fmt.Errorf("boot: %w", err)
		}
		return nil, err
	}
	store := registry.NewStore(hub, logger)
	store.Swap(snapshot)
	return store, nil
}

func NewStorage(ctx context.Context, projectCfg domain.ProjectConfig, logger *zap.Logger) (*storage.Store, func(), error) {
	db, err := storage.Open(ctx, storage.Options{
		Path:       projectCfg.Storage.Path,
		Persistent: projectCfg.Storage.Persistent,
		Name:       ServerKey(projectCfg),
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("close storage failed", zap.Error(err))
		}
	}
	return db, cleanup, nil
}

// ServerKey is the identifier of the project in client configuration files
// and the name of its persistent database.
func ServerKey(projectCfg domain.ProjectConfig) string {
	name := metadata.Underscore(project.Camelize(projectCfg.Name))
	if name == "" {
		return "plasma"
	}
	return name
}

func NewGateway(projectCfg domain.ProjectConfig, store *registry.Store, hub *notifications.ListChangeHub, metrics domain.Metrics, db *storage.Store, logger *zap.Logger) *gateway.Server {
	return gateway.NewServer(gateway.Options{
		Name:    projectCfg.Name,
		Version: projectCfg.Version,
	}, store, hub, metrics, db, logger)
}

func NewReloader(scanner *registry.Scanner, sources []registry.Source, store *registry.Store, files *filecomponent.Source, server *gateway.Server, metrics domain.Metrics, logger *zap.Logger) *Reloader {
	return newReloader(ReloaderOptions{
		Scanner:  scanner,
		Sources:  sources,
		Store:    store,
		Dirs:     files.Dirs(),
		Notifier: server,
		Metrics:  metrics,
		Logger:   logger,
	})
}
