package prompts

// Greets someone by name in the configured greeting.

import (
	"context"
	"fmt"
	"os"

	"plasma/pkg/plasma"
)

type GreetingPrompt struct {
	plasma.Base
}

func init() {
	plasma.RegisterPrompt[GreetingPrompt](plasma.Declare().
		Param("name", plasma.String, plasma.Required(), plasma.Description("Who to greet")).
		Param("formal", plasma.Boolean))
}

func (p *GreetingPrompt) Messages(context.Context) ([]plasma.Message, error) {
	greeting := os.Getenv("DEMO_GREETING")
	if greeting == "" {
		greeting = "Hello"
	}
	name := p.String("name")
	if p.Bool("formal") {
		name = "dear " + name
	}
	return []plasma.Message{
		plasma.UserMessage(fmt.Sprintf("%s, %s!", greeting, name)),
		plasma.AssistantMessage("How can I help you today?"),
	}, nil
}
