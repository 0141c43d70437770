// Package gateway publishes the component registry over the Model Context
// Protocol.
package gateway

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plasma/internal/domain"
	"plasma/internal/infra/component"
	"plasma/internal/infra/notifications"
	"plasma/internal/infra/registry"
	"plasma/internal/infra/storage"
)

// Options describe the server advertised to clients.
type Options struct {
	Name    string
	Version string
	// ClientLogLevel gates the entries forwarded to clients as logging
	// notifications. Nil forwards warnings and above.
	ClientLogLevel zapcore.LevelEnabler
}

type Server struct {
	opts      Options
	store     *registry.Store
	hub       *notifications.ListChangeHub
	metrics   domain.Metrics
	storage   *storage.Store
	logger    *zap.Logger
	server    *mcp.Server
	bridge    *logBridge
	tools     *catalog
	prompts   *catalog
	resources *resourceCatalog

	subMu         sync.Mutex
	subscriptions map[string]int
}

// NewServer builds the MCP server for the snapshot currently held by store.
// Capabilities are announced from the registry's static flags.
func NewServer(opts Options, store *registry.Store, hub *notifications.ListChangeHub, metrics domain.Metrics, db *storage.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = domain.NoopMetrics{}
	}
	if opts.Name == "" {
		opts.Name = "Plasma " + domain.DefaultServerNameSuffix
	}
	if opts.Version == "" {
		opts.Version = domain.DefaultServerVersion
	}
	if opts.ClientLogLevel == nil {
		opts.ClientLogLevel = zapcore.WarnLevel
	}

	s := &Server{
		opts:          opts,
		store:         store,
		hub:           hub,
		metrics:       metrics,
		storage:       db,
		subscriptions: make(map[string]int),
	}

	caps := store.Load().Capabilities()
	serverOpts := &mcp.ServerOptions{
		HasTools:     caps.Tools != nil,
		HasPrompts:   caps.Prompts != nil,
		HasResources: caps.Resources != nil,
	}
	if caps.Resources != nil && caps.Resources.Subscribe {
		serverOpts.SubscribeHandler = s.subscribe
		serverOpts.UnsubscribeHandler = s.unsubscribe
	}
	s.server = mcp.NewServer(&mcp.Implementation{Name: opts.Name, Version: opts.Version}, serverOpts)

	s.bridge = newLogBridge(s.server, opts.ClientLogLevel)
	s.logger = teeLogger(logger.Named("gateway"), s.bridge)
	s.tools = newToolCatalog(s.server, s.toolHandler, s.logger)
	s.prompts = newPromptCatalog(s.server, s.promptHandler, s.logger)
	s.resources = newResourceCatalog(s.server, s.resourceHandler, s.logger)
	return s
}

// MCP exposes the underlying server, mainly for in-memory transports.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Sync applies the current snapshot to every list.
func (s *Server) Sync() {
	snapshot := s.store.Load()
	s.tools.Sync(snapshot)
	s.prompts.Sync(snapshot)
	s.resources.Sync(snapshot)
}

// Watch re-applies the snapshot whenever the registry publishes a list
// change. It returns when ctx is done.
func (s *Server) Watch(ctx context.Context) {
	s.watch(ctx).Wait()
}

// watch subscribes before returning so no publication after it is missed.
func (s *Server) watch(ctx context.Context) *sync.WaitGroup {
	changes := s.hub.Subscribe(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for change := range changes {
			s.apply(change.Kind)
		}
	}()
	return &wg
}

func (s *Server) apply(kind domain.Kind) {
	snapshot := s.store.Load()
	switch kind {
	case domain.KindTool:
		s.tools.Sync(snapshot)
	case domain.KindPrompt:
		s.prompts.Sync(snapshot)
	case domain.KindResource:
		s.resources.Sync(snapshot)
	}
}

// Run serves transport until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watching := s.watch(runCtx)
	s.Sync()
	go s.bridge.Run(runCtx)

	s.logger.Info("mcp server starting",
		zap.String("name", s.opts.Name),
		zap.String("version", s.opts.Version),
		zap.Any("components", s.store.Load().Summary()),
	)
	err := s.server.Run(runCtx, transport)
	cancel()
	watching.Wait()
	return err
}

// NotifyResourcesUpdated sends resources/updated for every subscribed URI in uris.
func (s *Server) NotifyResourcesUpdated(ctx context.Context, uris []string) {
	for _, uri := range uris {
		if !s.subscribed(uri) {
			continue
		}
		if err := s.server.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
			s.logger.Warn("resource update notification failed", zap.String("uri", uri), zap.Error(err))
		}
	}
}

func (s *Server) subscribe(_ context.Context, req *mcp.SubscribeRequest) error {
	uri := req.Params.URI
	if _, ok := s.resources.Resolve(uri); !ok {
		return mcp.ResourceNotFoundError(uri)
	}
	s.subMu.Lock()
	s.subscriptions[uri]++
	s.subMu.Unlock()
	s.logger.Debug("resource subscribed", zap.String("uri", uri))
	return nil
}

func (s *Server) unsubscribe(_ context.Context, req *mcp.UnsubscribeRequest) error {
	uri := req.Params.URI
	s.subMu.Lock()
	if s.subscriptions[uri] <= 1 {
		delete(s.subscriptions, uri)
	} else {
		s.subscriptions[uri]--
	}
	s.subMu.Unlock()
	return nil
}

func (s *Server) subscribed(uri string) bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.subscriptions[uri] > 0
}

func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		input, err := component.DecodeArguments(raw)
		if err != nil {
			return toolFailure(err), nil
		}
		inv, err := s.Invoke(ctx, domain.KindTool, name, input)
		if err != nil {
			return toolFailure(err), nil
		}
		return toolResult(inv.Value)
	}
}

func (s *Server) promptHandler(name string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var args map[string]string
		if req != nil && req.Params != nil {
			args = req.Params.Arguments
		}
		inv, err := s.Invoke(ctx, domain.KindPrompt, name, component.StringArguments(args))
		if err != nil {
			return nil, protocolError(err)
		}
		messages, err := promptMessages(inv.Value)
		if err != nil {
			return nil, err
		}
		return &mcp.GetPromptResult{
			Description: inv.Entry.Metadata.Description,
			Messages:    messages,
		}, nil
	}
}

func (s *Server) resourceHandler(name string) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		entry, ok := s.store.Load().Lookup(domain.KindResource, name)
		uri := entry.Declaration.URI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if !ok {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		input, ok := templateArguments(entry.Declaration.URI, uri)
		if !ok {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		inv, err := s.invokeEntry(ctx, entry, input)
		if err != nil {
			return nil, protocolError(err)
		}
		contents, err := resourceContents(uri, entry.Declaration.MIMEType, inv.Value)
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{contents}}, nil
	}
}
