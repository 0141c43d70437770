package gateway

import (
	"net/url"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/yosida95/uritemplate/v3"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/registry"
)

// published is one resource on the server. A nil template means the URI is
// fixed.
type published struct {
	name     string
	template *uritemplate.Template
}

func (p published) sameShape(other published) bool {
	return (p.template == nil) == (other.template == nil)
}

// resourceCatalog publishes fixed URIs as resources and URIs with
// {variables} as resource templates. It is keyed by URI rather than name so
// subscriptions can be resolved.
type resourceCatalog struct {
	server  *mcp.Server
	handler func(name string) mcp.ResourceHandler
	logger  *zap.Logger

	syncMu sync.Mutex
	mu     sync.RWMutex
	etag   string
	byURI  map[string]published
}

func newResourceCatalog(server *mcp.Server, handler func(name string) mcp.ResourceHandler, logger *zap.Logger) *resourceCatalog {
	return &resourceCatalog{
		server:  server,
		handler: handler,
		logger:  logger.Named("resources"),
		byURI:   make(map[string]published),
	}
}

func (c *resourceCatalog) Sync(snapshot *registry.Snapshot) {
	if snapshot == nil {
		return
	}
	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	etag := snapshot.ETag(domain.KindResource)
	c.mu.RLock()
	prev, prevETag := c.byURI, c.etag
	c.mu.RUnlock()
	if etag != "" && etag == prevETag {
		return
	}

	live := make(map[string]published)
	for _, entry := range snapshot.Entries(domain.KindResource) {
		uri := entry.Declaration.URI
		skip := func(reason string, fields ...zap.Field) {
			c.logger.Warn(reason, append([]zap.Field{zap.String("uri", uri), zap.String("name", entry.Metadata.Name)}, fields...)...)
		}
		if _, dup := live[uri]; dup {
			skip("duplicate resource uri")
			continue
		}
		if !validResourceURI(uri) {
			skip("invalid resource uri")
			continue
		}
		p, err := c.publish(entry)
		if err != nil {
			skip("invalid resource uri template", zap.Error(err))
			continue
		}
		live[uri] = p
	}

	var fixed, templated []string
	for uri, old := range prev {
		if cur, ok := live[uri]; ok && cur.sameShape(old) {
			continue
		}
		if old.template != nil {
			templated = append(templated, uri)
		} else {
			fixed = append(fixed, uri)
		}
	}
	if len(fixed) > 0 {
		c.server.RemoveResources(fixed...)
	}
	if len(templated) > 0 {
		c.server.RemoveResourceTemplates(templated...)
	}

	c.mu.Lock()
	c.byURI, c.etag = live, etag
	c.mu.Unlock()
}

func (c *resourceCatalog) publish(entry registry.Entry) (published, error) {
	decl, meta := entry.Declaration, entry.Metadata
	p := published{name: meta.Name}
	if !isTemplateURI(decl.URI) {
		c.server.AddResource(&mcp.Resource{
			URI:         decl.URI,
			Name:        meta.Name,
			Description: meta.Description,
			MIMEType:    decl.MIMEType,
		}, c.handler(meta.Name))
		return p, nil
	}
	tmpl, err := uritemplate.New(decl.URI)
	if err != nil {
		return p, err
	}
	p.template = tmpl
	c.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: decl.URI,
		Name:        meta.Name,
		Description: meta.Description,
		MIMEType:    decl.MIMEType,
	}, c.handler(meta.Name))
	return p, nil
}

// Resolve names the resource serving uri, by exact URI first and then by
// template match.
func (c *resourceCatalog) Resolve(uri string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.byURI[uri]; ok && p.template == nil {
		return p.name, true
	}
	for _, p := range c.byURI {
		if p.template != nil && p.template.Match(uri) != nil {
			return p.name, true
		}
	}
	return "", false
}

func isTemplateURI(uri string) bool {
	return strings.Contains(uri, "{")
}

// templateArguments extracts the variables of tmpl from uri. A fixed URI
// yields no arguments.
func templateArguments(tmpl, uri string) (map[string]any, bool) {
	if !isTemplateURI(tmpl) {
		return map[string]any{}, tmpl == uri
	}
	parsed, err := uritemplate.New(tmpl)
	if err != nil {
		return nil, false
	}
	values := parsed.Match(uri)
	if values == nil {
		return nil, false
	}
	input := make(map[string]any, len(values))
	for name, value := range values {
		if value.T == uritemplate.ValueTypeList {
			items := make([]any, 0, len(value.V))
			for _, item := range value.List() {
				items = append(items, item)
			}
			input[name] = items
			continue
		}
		input[name] = value.String()
	}
	return input, true
}

func validResourceURI(raw string) bool {
	candidate := raw
	if isTemplateURI(raw) {
		// Expression braces are not valid URL characters.
		candidate = strings.NewReplacer("{", "", "}", "").Replace(raw)
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return parsed.Scheme != ""
}
