package app

import (
	"plasma/internal/domain"
	"plasma/internal/infra/registry"
)

// ListingEntry is the capability listing of one component.
type ListingEntry struct {
	Kind         domain.Kind            `json:"kind"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	InputSchema  domain.InputSchema     `json:"inputSchema"`
	URI          string                 `json:"uri,omitempty"`
	MIMEType     string                 `json:"mimeType,omitempty"`
	Capabilities domain.CapabilityFlags `json:"capabilities"`
	Source       string                 `json:"source,omitempty"`
}

// Listing is what a client would see after initialization.
type Listing struct {
	Name         string                    `json:"name"`
	Version      string                    `json:"version"`
	Revision     uint64                    `json:"revision"`
	Capabilities domain.ServerCapabilities `json:"capabilities"`
	Components   []ListingEntry            `json:"components"`
}

// BuildListing renders snapshot. An empty kind lists every kind.
func BuildListing(projectCfg domain.ProjectConfig, snapshot *registry.Snapshot, kind domain.Kind) Listing {
	listing := Listing{
		Name:         projectCfg.Name,
		Version:      projectCfg.Version,
		Revision:     snapshot.Revision(),
		Capabilities: snapshot.Capabilities(),
		Components:   []ListingEntry{},
	}
	for _, k := range domain.Kinds {
		if kind != "" && k != kind {
			continue
		}
		for _, entry := range snapshot.Entries(k) {
			listing.Components = append(listing.Components, ListingEntry{
				Kind:         entry.Kind,
				Name:         entry.Metadata.Name,
				Description:  entry.Metadata.Description,
				InputSchema:  entry.Metadata.InputSchema,
				URI:          entry.Declaration.URI,
				MIMEType:     entry.Declaration.MIMEType,
				Capabilities: entry.Capabilities,
				Source:       entry.Declaration.SourceLocation,
			})
		}
	}
	return listing
}

// Listing renders the current snapshot.
func (a *Application) Listing(kind domain.Kind) Listing {
	return BuildListing(a.project, a.store.Load(), kind)
}
