package gateway

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plasma/internal/domain"
	"plasma/internal/infra/component"
)

func TestToolResult(t *testing.T) {
	res, err := toolResult(map[string]any{"sum": 3})
	require.NoError(t, err)
	require.JSONEq(t, `{"sum":3}`, res.Content[0].(*mcp.TextContent).Text)
	require.NotNil(t, res.StructuredContent)

	res, err = toolResult([]int{1, 2})
	require.NoError(t, err)
	require.Equal(t, "[1,2]", res.Content[0].(*mcp.TextContent).Text)
	require.Nil(t, res.StructuredContent)

	res, err = toolResult(nil)
	require.NoError(t, err)
	require.NotNil(t, res.Content)
	require.Empty(t, res.Content)

	_, err = toolResult(make(chan int))
	require.Error(t, err)
}

func TestProtocolError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int64
	}{
		{name: "missing", err: &domain.MissingParameterError{Name: "id"}, code: jsonrpc.CodeInvalidParams},
		{name: "coercion", err: &domain.CoercionError{Param: "id", Value: "x", Type: domain.TypeInteger}, code: jsonrpc.CodeInvalidParams},
		{name: "not found", err: domain.ErrComponentNotFound, code: jsonrpc.CodeInvalidParams},
		{name: "panic", err: &component.PanicError{Component: "x", Value: "boom"}, code: jsonrpc.CodeInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rpcErr *jsonrpc.Error
			require.ErrorAs(t, protocolError(tc.err), &rpcErr)
			assert.EqualValues(t, tc.code, rpcErr.Code)
		})
	}

	plain := errors.New("disk on fire")
	require.Same(t, plain, protocolError(plain))
	require.NoError(t, protocolError(nil))
}

func TestPromptMessages(t *testing.T) {
	msgs, err := promptMessages("hi")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, mcp.Role("user"), msgs[0].Role)

	msgs, err = promptMessages([]domain.PromptMessage{{Role: domain.RoleAssistant, Content: "ok"}, {Content: "next"}})
	require.NoError(t, err)
	require.Equal(t, mcp.Role("assistant"), msgs[0].Role)
	require.Equal(t, mcp.Role("user"), msgs[1].Role)

	_, err = promptMessages(42)
	require.Error(t, err)
}

func TestResourceContents(t *testing.T) {
	c, err := resourceContents("a://b", "", []byte{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, c.Blob)

	c, err = resourceContents("a://b", "", map[string]int{"n": 1})
	require.NoError(t, err)
	require.Equal(t, "application/json", c.MIMEType)
	require.Equal(t, `{"n":1}`, c.Text)

	c, err = resourceContents("a://b", "text/plain", "body")
	require.NoError(t, err)
	require.Equal(t, "text/plain", c.MIMEType)
	require.Equal(t, "body", c.Text)
}

func TestTemplateArguments(t *testing.T) {
	args, ok := templateArguments("widgets://{id}", "widgets://42")
	require.True(t, ok)
	require.Equal(t, map[string]any{"id": "42"}, args)

	_, ok = templateArguments("widgets://{id}", "gadgets://42")
	require.False(t, ok)

	args, ok = templateArguments("docs://readme", "docs://readme")
	require.True(t, ok)
	require.Empty(t, args)

	require.True(t, validResourceURI("widgets://{id}"))
	require.False(t, validResourceURI("no-scheme"))
}

func TestLogBridge_FiltersAndDrops(t *testing.T) {
	bridge := newLogBridge(mcp.NewServer(&mcp.Implementation{Name: "t", Version: "0"}, nil), zapcore.WarnLevel)
	logger := teeLogger(zap.NewNop(), bridge).Named("gateway").With(zap.String("component", "calc"))

	logger.Info("quiet")
	logger.Warn("loud", zap.Int("n", 1))
	require.Len(t, bridge.queue, 1)

	msg := <-bridge.queue
	require.Equal(t, "gateway", msg.Logger)
	require.Equal(t, mcp.LoggingLevel("warning"), msg.Level)
	raw, ok := msg.Data.(json.RawMessage)
	require.True(t, ok, "data is %T", msg.Data)
	require.JSONEq(t, `{"message":"loud","component":"calc","n":1}`, string(raw))

	for i := 0; i < clientLogQueue+5; i++ {
		logger.Error("flood")
	}
	require.Len(t, bridge.queue, clientLogQueue)
}

func TestClientLogLevel(t *testing.T) {
	cases := map[zapcore.Level]mcp.LoggingLevel{
		zapcore.DebugLevel:   "debug",
		zapcore.InfoLevel:    "info",
		zapcore.WarnLevel:    "warning",
		zapcore.ErrorLevel:   "error",
		zapcore.PanicLevel:   "critical",
		zapcore.FatalLevel:   "emergency",
		zapcore.InvalidLevel: "debug",
	}
	for level, want := range cases {
		assert.Equal(t, want, clientLogLevel(level), level.String())
	}
}
