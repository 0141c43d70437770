package app

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/filecomponent"
	"plasma/internal/infra/registry"
	"plasma/internal/infra/telemetry"
)

// ResourceNotifier receives the URIs whose content changed in a reload.
type ResourceNotifier interface {
	NotifyResourcesUpdated(ctx context.Context, uris []string)
}

type ReloaderOptions struct {
	Scanner  *registry.Scanner
	Sources  []registry.Source
	Store    *registry.Store
	Dirs     []string
	Notifier ResourceNotifier
	Metrics  domain.Metrics
	Logger   *zap.Logger
	Debounce time.Duration
}

// Reloader rescans component sources when component files change and
// publishes the result.
type Reloader struct {
	scanner  *registry.Scanner
	sources  []registry.Source
	store    *registry.Store
	dirs     []string
	notifier ResourceNotifier
	metrics  domain.Metrics
	logger   *zap.Logger
	debounce time.Duration

	reloadMu sync.Mutex
}

func newReloader(opts ReloaderOptions) *Reloader {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = domain.DefaultReloadDebounce
	}
	return &Reloader{
		scanner:  opts.Scanner,
		sources:  opts.Sources,
		store:    opts.Store,
		dirs:     opts.Dirs,
		notifier: opts.Notifier,
		metrics:  metrics,
		logger:   logger.Named("reloader"),
		debounce: debounce,
	}
}

// Reload rescans every source. A failed scan keeps the current snapshot.
// The returned bool reports whether a new snapshot was published.
func (r *Reloader) Reload(ctx context.Context) (registry.SwapResult, bool, error) {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	start := time.Now()
	next, err := r.scanner.Scan(ctx, r.sources...)
	r.metrics.ObserveRegistryReload(err)
	if err != nil {
		r.logger.Warn("registry reload failed", telemetry.EventField(telemetry.EventReloadFailure), zap.Error(err))
		return registry.SwapResult{}, false, err
	}

	current := r.store.Load()
	if sameLists(current, next) {
		r.logger.Debug("registry unchanged", telemetry.EventField(telemetry.EventReloadUnchanged), telemetry.RevisionField(current.Revision()))
		return registry.SwapResult{Revision: current.Revision()}, false, nil
	}

	result := r.store.Swap(next)
	r.logger.Info("registry reloaded",
		telemetry.EventField(telemetry.EventReloadSuccess),
		telemetry.RevisionField(result.Revision),
		telemetry.DurationField(time.Since(start)),
		zap.Int("changed_kinds", len(result.Changed)),
		zap.Strings("updated_resources", result.UpdatedResources),
	)
	if r.notifier != nil && len(result.UpdatedResources) > 0 {
		r.notifier.NotifyResourcesUpdated(ctx, result.UpdatedResources)
	}
	return result, true, nil
}

func sameLists(current, next *registry.Snapshot) bool {
	if current == nil {
		return false
	}
	for _, kind := range domain.Kinds {
		if current.ETag(kind) != next.ETag(kind) {
			return false
		}
	}
	return true
}

// Run watches the component directories until ctx is done. Bursts of file
// events collapse into one reload after the debounce window.
func (r *Reloader) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := 0
	for _, dir := range r.dirs {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			r.logger.Debug("skip missing component dir", zap.String("dir", dir))
			continue
		}
		if err := watcher.Add(dir); err != nil {
			r.logger.Warn("component watcher add failed", zap.String("dir", dir), zap.Error(err))
			continue
		}
		watched++
	}
	r.logger.Info("watching component files", zap.Int("dirs", watched))

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				r.logger.Warn("component watcher error", zap.Error(err))
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !shouldReload(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(r.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(r.debounce)
		case <-timerChan(timer):
			timer = nil
			_, _, _ = r.Reload(ctx)
		}
	}
}

func shouldReload(event fsnotify.Event) bool {
	if event.Name == "" || !filecomponent.IsComponentFile(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
