package domain

type PromptRole string

const (
	RoleUser      PromptRole = "user"
	RoleAssistant PromptRole = "assistant"
)

// PromptMessage is one message rendered by a prompt component.
type PromptMessage struct {
	Role    PromptRole `json:"role"`
	Content string     `json:"content"`
}
