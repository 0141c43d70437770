package registry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/hashutil"
	"plasma/internal/infra/metadata"
)

// Scanner turns registrations into snapshots.
type Scanner struct {
	synth   *metadata.Synthesizer
	metrics domain.Metrics
	logger  *zap.Logger
}

func NewScanner(synth *metadata.Synthesizer, metrics domain.Metrics, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	if synth == nil {
		synth = metadata.NewSynthesizer(nil, logger)
	}
	return &Scanner{
		synth:   synth,
		metrics: metrics,
		logger:  logger.Named("registry"),
	}
}

// Scan enumerates sources in order and builds a snapshot. Repeated identities
// are skipped, and so are later components reusing a name within a kind.
// A scan that finds nothing fails with ErrNoComponents.
func (s *Scanner) Scan(ctx context.Context, sources ...Source) (*Snapshot, error) {
	snapshot := newSnapshot()
	seen := make(map[domain.ComponentIdentity]struct{})

	for _, source := range sources {
		if source == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		regs, err := source.Registrations(ctx)
		if err != nil {
			return nil, fmt.Errorf("enumerate %s components: %w", source.Name(), err)
		}
		for _, reg := range regs {
			s.admit(snapshot, seen, source.Name(), reg)
		}
	}
	// Edited file components get a new identity on every scan.
	s.synth.Retain(seen)

	if snapshot.Total() == 0 {
		return nil, domain.ErrNoComponents
	}
	for _, kind := range domain.Kinds {
		snapshot.etags[kind] = listETag(s.logger, kind, snapshot.entries[kind])
		s.metrics.SetRegistryComponents(kind, snapshot.Count(kind))
	}
	return snapshot, nil
}

func (s *Scanner) admit(snapshot *Snapshot, seen map[domain.ComponentIdentity]struct{}, source string, reg Registration) {
	decl := reg.Declaration
	if _, ok := domain.ParseKind(string(decl.Kind)); !ok {
		s.logger.Warn("skip component with unknown kind",
			zap.String("source", source),
			zap.String("kind", string(decl.Kind)),
			zap.String("component", decl.QualifiedName),
		)
		return
	}
	if _, ok := seen[decl.Identity]; ok {
		dup := &domain.DuplicateRegistrationError{Kind: decl.Kind, Identity: decl.Identity.String()}
		s.logger.Info("duplicate component registration ignored", zap.String("source", source), zap.Error(dup))
		return
	}
	seen[decl.Identity] = struct{}{}

	if existing, ok := snapshot.Lookup(decl.Kind, decl.QualifiedName); ok {
		s.logger.Warn("component name already taken",
			zap.String("source", source),
			zap.String("kind", string(decl.Kind)),
			zap.String("component", decl.QualifiedName),
			zap.String("kept", existing.Declaration.Identity.String()),
			zap.String("skipped", decl.Identity.String()),
		)
		return
	}

	doc, err := s.synth.Synthesize(decl)
	if err != nil {
		s.logger.Warn("metadata synthesis failed",
			zap.String("kind", string(decl.Kind)),
			zap.String("component", decl.QualifiedName),
			zap.Error(err),
		)
		doc.Description = domain.PlaceholderDescription
	}

	snapshot.add(Entry{
		Kind:         decl.Kind,
		Declaration:  decl,
		Metadata:     doc,
		Capabilities: domain.CapabilitiesFor(decl.Kind),
		Handler:      reg.Handler,
	})
}

type publication struct {
	Metadata domain.MetadataDocument `json:"metadata"`
	URI      string                  `json:"uri,omitempty"`
	MIMEType string                  `json:"mimeType,omitempty"`
	Version  string                  `json:"version,omitempty"`
}

func listETag(logger *zap.Logger, kind domain.Kind, entries []Entry) string {
	items := make([]publication, 0, len(entries))
	for _, entry := range entries {
		items = append(items, publication{
			Metadata: entry.Metadata,
			URI:      entry.Declaration.URI,
			MIMEType: entry.Declaration.MIMEType,
			Version:  entry.Declaration.Identity.Version,
		})
	}
	return hashutil.ListETag(logger, string(kind), items)
}
