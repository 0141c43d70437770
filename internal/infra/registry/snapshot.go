package registry

import (
	"plasma/internal/domain"
	"plasma/internal/infra/component"
)

// Entry is one published component.
type Entry struct {
	Kind         domain.Kind
	Declaration  domain.ComponentDeclaration
	Metadata     domain.MetadataDocument
	Capabilities domain.CapabilityFlags
	Handler      component.Handler
}

// Snapshot is an immutable view of the registry. Readers load it once per
// request and never observe a partial reload.
type Snapshot struct {
	revision uint64
	entries  map[domain.Kind][]Entry
	index    map[domain.Kind]map[string]int
	etags    map[domain.Kind]string
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		entries: make(map[domain.Kind][]Entry),
		index:   make(map[domain.Kind]map[string]int),
		etags:   make(map[domain.Kind]string),
	}
}

func (s *Snapshot) add(entry Entry) {
	if s.index[entry.Kind] == nil {
		s.index[entry.Kind] = make(map[string]int)
	}
	s.index[entry.Kind][entry.Metadata.Name] = len(s.entries[entry.Kind])
	s.entries[entry.Kind] = append(s.entries[entry.Kind], entry)
}

func (s *Snapshot) withRevision(revision uint64) *Snapshot {
	out := *s
	out.revision = revision
	return &out
}

// Revision is assigned when the snapshot is published through a Store.
func (s *Snapshot) Revision() uint64 {
	if s == nil {
		return 0
	}
	return s.revision
}

// Entries returns the components of kind in discovery order.
func (s *Snapshot) Entries(kind domain.Kind) []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries[kind]...)
}

func (s *Snapshot) Lookup(kind domain.Kind, name string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	idx, ok := s.index[kind][name]
	if !ok {
		return Entry{}, false
	}
	return s.entries[kind][idx], true
}

func (s *Snapshot) Count(kind domain.Kind) int {
	if s == nil {
		return 0
	}
	return len(s.entries[kind])
}

func (s *Snapshot) Total() int {
	total := 0
	for _, kind := range domain.Kinds {
		total += s.Count(kind)
	}
	return total
}

// ETag fingerprints the published list of kind.
func (s *Snapshot) ETag(kind domain.Kind) string {
	if s == nil {
		return ""
	}
	return s.etags[kind]
}

// Capabilities announces every kind with its static flags. File components may
// appear after boot, so empty kinds are announced too.
func (s *Snapshot) Capabilities() domain.ServerCapabilities {
	tools := domain.CapabilitiesFor(domain.KindTool)
	prompts := domain.CapabilitiesFor(domain.KindPrompt)
	resources := domain.CapabilitiesFor(domain.KindResource)
	return domain.ServerCapabilities{
		Tools:     &domain.ToolsCapability{ListChanged: tools.ListChanged},
		Prompts:   &domain.PromptsCapability{ListChanged: prompts.ListChanged},
		Resources: &domain.ResourcesCapability{ListChanged: resources.ListChanged, Subscribe: resources.Subscribe},
	}
}

// Summary counts entries per kind.
func (s *Snapshot) Summary() map[domain.Kind]int {
	out := make(map[domain.Kind]int, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		out[kind] = s.Count(kind)
	}
	return out
}
