package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"plasma/internal/domain"
	"plasma/internal/infra/component"
)

const internalErrorMessage = "Internal error"

func toolResult(value any) (*mcp.CallToolResult, error) {
	switch v := value.(type) {
	case nil:
		return &mcp.CallToolResult{Content: []mcp.Content{}}, nil
	case string:
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: v}}}, nil
	case []byte:
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(v)}}}, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	result := &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}}}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		result.StructuredContent = json.RawMessage(raw)
	}
	return result, nil
}

// toolFailure reports err inside the result so the model can see it.
func toolFailure(err error) *mcp.CallToolResult {
	message := err.Error()
	var panicErr *component.PanicError
	if errors.As(err, &panicErr) {
		message = internalErrorMessage
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
	}
}

// protocolError maps invocation failures of prompts and resources onto
// JSON-RPC errors.
func protocolError(err error) error {
	if err == nil {
		return nil
	}
	var panicErr *component.PanicError
	if errors.As(err, &panicErr) {
		return &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: internalErrorMessage}
	}
	switch class, _ := domain.Classify(err); class {
	case domain.ClassInvalidInput, domain.ClassNotFound:
		return &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
	default:
		return err
	}
}

func promptMessages(value any) ([]*mcp.PromptMessage, error) {
	var messages []domain.PromptMessage
	switch v := value.(type) {
	case []domain.PromptMessage:
		messages = v
	case domain.PromptMessage:
		messages = []domain.PromptMessage{v}
	case string:
		messages = []domain.PromptMessage{{Role: domain.RoleUser, Content: v}}
	case nil:
	default:
		return nil, fmt.Errorf("prompt returned %T, want messages", value)
	}

	out := make([]*mcp.PromptMessage, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		if role == "" {
			role = domain.RoleUser
		}
		out = append(out, &mcp.PromptMessage{
			Role:    mcp.Role(role),
			Content: &mcp.TextContent{Text: msg.Content},
		})
	}
	return out, nil
}

func resourceContents(uri, mimeType string, value any) (*mcp.ResourceContents, error) {
	contents := &mcp.ResourceContents{URI: uri, MIMEType: mimeType}
	switch v := value.(type) {
	case nil:
	case string:
		contents.Text = v
	case []byte:
		contents.Blob = v
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode resource %s: %w", uri, err)
		}
		contents.Text = string(raw)
		if contents.MIMEType == "" {
			contents.MIMEType = "application/json"
		}
	}
	return contents, nil
}
