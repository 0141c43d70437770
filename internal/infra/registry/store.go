package registry

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"plasma/internal/domain"
)

// Store holds the published snapshot.
type Store struct {
	current  atomic.Pointer[Snapshot]
	emitter  domain.ListChangeEmitter
	logger   *zap.Logger
	swapMu   sync.Mutex
	revision uint64
}

// SwapResult describes what a publication changed.
type SwapResult struct {
	Revision uint64
	Changed  []domain.Kind
	// UpdatedResources lists URIs present before and after whose content
	// version changed.
	UpdatedResources []string
}

func NewStore(emitter domain.ListChangeEmitter, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		emitter: emitter,
		logger:  logger.Named("registry_store"),
	}
}

func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Swap publishes next and emits a list change for every kind whose ETag moved.
func (s *Store) Swap(next *Snapshot) SwapResult {
	if next == nil {
		return SwapResult{}
	}
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	s.revision++
	published := next.withRevision(s.revision)
	prev := s.current.Swap(published)

	result := SwapResult{Revision: s.revision}
	for _, kind := range domain.Kinds {
		if prev != nil && prev.ETag(kind) == published.ETag(kind) {
			continue
		}
		result.Changed = append(result.Changed, kind)
		if s.emitter != nil {
			s.emitter.EmitListChange(domain.ListChange{
				Kind:     kind,
				Revision: s.revision,
				ETag:     published.ETag(kind),
			})
		}
	}
	result.UpdatedResources = updatedResources(prev, published)

	if len(result.Changed) > 0 {
		s.logger.Info("registry published",
			zap.Uint64("revision", s.revision),
			zap.Int("components", published.Total()),
			zap.Int("changed_kinds", len(result.Changed)),
		)
	}
	return result
}

func updatedResources(prev, next *Snapshot) []string {
	if prev == nil {
		return nil
	}
	before := make(map[string]string)
	for _, entry := range prev.Entries(domain.KindResource) {
		before[entry.Declaration.URI] = entry.Declaration.Identity.Version
	}
	var updated []string
	for _, entry := range next.Entries(domain.KindResource) {
		version, ok := before[entry.Declaration.URI]
		if ok && version != entry.Declaration.Identity.Version {
			updated = append(updated, entry.Declaration.URI)
		}
	}
	return updated
}
