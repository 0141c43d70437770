package gateway

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const clientLogQueue = 64

var clientLogLevels = map[zapcore.Level]mcp.LoggingLevel{
	zapcore.DebugLevel:  "debug",
	zapcore.InfoLevel:   "info",
	zapcore.WarnLevel:   "warning",
	zapcore.ErrorLevel:  "error",
	zapcore.DPanicLevel: "critical",
	zapcore.PanicLevel:  "critical",
	zapcore.FatalLevel:  "emergency",
}

func clientLogLevel(level zapcore.Level) mcp.LoggingLevel {
	if mapped, ok := clientLogLevels[level]; ok {
		return mapped
	}
	return "debug"
}

// logBridge is a zap core that queues gateway log entries as MCP
// notifications/message payloads. Run drains the queue to every session;
// entries arriving while the queue is full are lost.
type logBridge struct {
	zapcore.LevelEnabler
	server  *mcp.Server
	context []zapcore.Field
	queue   chan *mcp.LoggingMessageParams
}

func newLogBridge(server *mcp.Server, level zapcore.LevelEnabler) *logBridge {
	return &logBridge{
		LevelEnabler: level,
		server:       server,
		queue:        make(chan *mcp.LoggingMessageParams, clientLogQueue),
	}
}

func (b *logBridge) With(fields []zapcore.Field) zapcore.Core {
	child := *b
	child.context = append(append([]zapcore.Field(nil), b.context...), fields...)
	return &child
}

func (b *logBridge) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !b.Enabled(entry.Level) {
		return checked
	}
	return checked.AddCore(entry, b)
}

func (b *logBridge) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, group := range [][]zapcore.Field{b.context, fields} {
		for _, field := range group {
			field.AddTo(enc)
		}
	}
	enc.Fields["message"] = entry.Message
	data, err := json.Marshal(enc.Fields)
	if err != nil {
		return err
	}
	msg := &mcp.LoggingMessageParams{
		Logger: entry.LoggerName,
		Level:  clientLogLevel(entry.Level),
		Data:   json.RawMessage(data),
	}
	select {
	case b.queue <- msg:
	default:
	}
	return nil
}

func (b *logBridge) Sync() error { return nil }

func (b *logBridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.queue:
			for session := range b.server.Sessions() {
				_ = session.Log(ctx, msg)
			}
		}
	}
}

// teeLogger sends everything logger writes to the bridge as well.
func teeLogger(logger *zap.Logger, bridge *logBridge) *zap.Logger {
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, bridge)
	}))
}
