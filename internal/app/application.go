package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/gateway"
	"plasma/internal/infra/registry"
	"plasma/internal/infra/storage"
	"plasma/internal/infra/telemetry"
)

// ServeConfig selects the project and the compiled components to serve.
type ServeConfig struct {
	Root string
	// Registrar holds compiled components; nil means registry.Default.
	Registrar *registry.Registrar
}

// Application wires the registry, storage and protocol layer of one project.
type Application struct {
	project  domain.ProjectConfig
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  domain.Metrics
	health   *telemetry.HealthTracker
	store    *registry.Store
	storage  *storage.Store
	gateway  *gateway.Server
	reloader *Reloader
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Project  domain.ProjectConfig
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  domain.Metrics
	Health   *telemetry.HealthTracker
	Store    *registry.Store
	Storage  *storage.Store
	Gateway  *gateway.Server
	Reloader *Reloader
}

func NewApplication(opts ApplicationOptions) *Application {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Application{
		project:  opts.Project,
		logger:   logger,
		registry: opts.Registry,
		metrics:  opts.Metrics,
		health:   opts.Health,
		store:    opts.Store,
		storage:  opts.Storage,
		gateway:  opts.Gateway,
		reloader: opts.Reloader,
	}
	a.health.Register("registry", func() error {
		if a.store.Load().Total() == 0 {
			return domain.ErrNoComponents
		}
		return nil
	})
	if a.storage != nil {
		a.health.Register("storage", func() error {
			_, _, err := a.storage.GetVar("__healthz")
			return err
		})
	}
	return a
}

func (a *Application) Project() domain.ProjectConfig {
	return a.project
}

func (a *Application) Snapshot() *registry.Snapshot {
	return a.store.Load()
}

func (a *Application) Storage() *storage.Store {
	return a.storage
}

// Reload rescans component sources once.
func (a *Application) Reload(ctx context.Context) (registry.SwapResult, bool, error) {
	return a.reloader.Reload(ctx)
}

// Call runs one component outside of a protocol session.
func (a *Application) Call(ctx context.Context, kind domain.Kind, name string, input map[string]any) (gateway.Invocation, error) {
	return a.gateway.Invoke(ctx, kind, name, input)
}

// Serve runs the MCP server on stdio until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	return a.ServeTransport(ctx, &mcp.StdioTransport{})
}

// ServeTransport runs the MCP server on transport together with the file
// watcher and the observability endpoint when they are enabled.
func (a *Application) ServeTransport(ctx context.Context, transport mcp.Transport) error {
	a.logger.Info("project loaded",
		zap.String("root", a.project.Root),
		zap.String("name", a.project.Name),
		zap.String("version", a.project.Version),
		zap.Int("components", a.store.Load().Total()),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.project.Watch && a.reloader != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.reloader.Run(runCtx); err != nil {
				a.logger.Warn("component watcher stopped", zap.Error(err))
			}
		}()
	}
	if obs := a.project.Observability; obs.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			endpoints := telemetry.Endpoints{Addr: obs.ListenAddress}
			if obs.Metrics {
				endpoints.Metrics = a.registry
			}
			if obs.Healthz {
				endpoints.Health = a.health
			}
			if err := endpoints.Serve(runCtx, a.logger); err != nil {
				a.logger.Warn("observability server stopped", zap.Error(err))
			}
		}()
	}

	// The session ends when the client disconnects or ctx is cancelled;
	// either way the side services stop with it.
	err := a.gateway.Run(runCtx, transport)
	cancel()
	wg.Wait()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
