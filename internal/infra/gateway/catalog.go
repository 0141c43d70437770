package gateway

import (
	"encoding/json"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"plasma/internal/domain"
	"plasma/internal/infra/registry"
)

// catalog mirrors one kind of the registry snapshot onto the MCP server.
// Handlers look the live entry up by name on every call, so an entry whose
// name survives a swap is re-added in place rather than removed first.
type catalog struct {
	kind    domain.Kind
	logger  *zap.Logger
	publish func(registry.Entry) error
	retract func(names []string)

	mu    sync.Mutex
	etag  string
	names map[string]struct{}
}

func newToolCatalog(server *mcp.Server, handler func(name string) mcp.ToolHandler, logger *zap.Logger) *catalog {
	return &catalog{
		kind:   domain.KindTool,
		logger: logger.Named("tools"),
		publish: func(entry registry.Entry) error {
			tool, err := toolDefinition(entry)
			if err != nil {
				return err
			}
			server.AddTool(tool, handler(tool.Name))
			return nil
		},
		retract: func(names []string) { server.RemoveTools(names...) },
	}
}

func newPromptCatalog(server *mcp.Server, handler func(name string) mcp.PromptHandler, logger *zap.Logger) *catalog {
	return &catalog{
		kind:   domain.KindPrompt,
		logger: logger.Named("prompts"),
		publish: func(entry registry.Entry) error {
			prompt := promptDefinition(entry)
			server.AddPrompt(prompt, handler(prompt.Name))
			return nil
		},
		retract: func(names []string) { server.RemovePrompts(names...) },
	}
}

// Sync publishes the snapshot's entries and retracts names it no longer has.
// A snapshot whose etag for the kind is unchanged is skipped.
func (c *catalog) Sync(snapshot *registry.Snapshot) {
	if snapshot == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	etag := snapshot.ETag(c.kind)
	if etag != "" && etag == c.etag {
		return
	}

	live := make(map[string]struct{})
	for _, entry := range snapshot.Entries(c.kind) {
		name := entry.Metadata.Name
		if name == "" {
			continue
		}
		if err := c.publish(entry); err != nil {
			c.logger.Warn("publish failed", zap.String("name", name), zap.Error(err))
			continue
		}
		live[name] = struct{}{}
	}

	var stale []string
	for name := range c.names {
		if _, ok := live[name]; !ok {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		c.retract(stale)
		c.logger.Debug("retracted", zap.Strings("names", stale))
	}
	c.names = live
	c.etag = etag
}

func toolDefinition(entry registry.Entry) (*mcp.Tool, error) {
	// Raw JSON keeps the declared property order on the wire.
	schema, err := json.Marshal(entry.Metadata.InputSchema)
	if err != nil {
		return nil, err
	}
	return &mcp.Tool{
		Name:        entry.Metadata.Name,
		Description: entry.Metadata.Description,
		InputSchema: json.RawMessage(schema),
	}, nil
}

// promptDefinition lists arguments in declaration order. Prompt arguments
// travel as strings and are coerced to their declared types on invocation.
func promptDefinition(entry registry.Entry) *mcp.Prompt {
	prompt := &mcp.Prompt{
		Name:        entry.Metadata.Name,
		Description: entry.Metadata.Description,
	}
	for _, param := range entry.Declaration.Parameters {
		arg := &mcp.PromptArgument{
			Name:        param.Name,
			Description: param.Description,
			Required:    param.Required,
		}
		if prop, ok := entry.Metadata.InputSchema.Property(param.Name); ok && prop.Description != "" {
			arg.Description = prop.Description
		}
		prompt.Arguments = append(prompt.Arguments, arg)
	}
	return prompt
}
