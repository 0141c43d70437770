// Package plasma is the SDK for writing MCP components.
//
// A component is a struct embedding Base that implements the execution
// method of its kind:
//
//	type CalculatorTool struct{ plasma.Base }
//
//	func (t *CalculatorTool) Call(ctx context.Context) (any, error) {
//		return t.Float("number1") + t.Float("number2"), nil
//	}
//
//	func init() {
//		plasma.RegisterTool[CalculatorTool](plasma.Declare().
//			Param("number1", plasma.Float, plasma.Required()).
//			Param("number2", plasma.Float, plasma.Required()))
//	}
//
// A fresh value is constructed for every invocation with its parameters
// already coerced to the declared types.
package plasma

import "plasma/internal/domain"

// TypeTag names the declared type of a parameter.
type TypeTag = domain.TypeTag

const (
	Integer TypeTag = domain.TypeInteger
	Float   TypeTag = domain.TypeFloat
	Boolean TypeTag = domain.TypeBoolean
	String  TypeTag = domain.TypeString
	Array   TypeTag = domain.TypeArray
)

// Params is the coerced parameter set of one invocation.
type Params = domain.Params

// Message is one message returned by a prompt.
type Message = domain.PromptMessage

// Role is the author of a prompt message.
type Role = domain.PromptRole

const (
	User      Role = domain.RoleUser
	Assistant Role = domain.RoleAssistant
)

// UserMessage is shorthand for a message authored by the user.
func UserMessage(content string) Message {
	return Message{Role: User, Content: content}
}

// AssistantMessage is shorthand for a message authored by the assistant.
func AssistantMessage(content string) Message {
	return Message{Role: Assistant, Content: content}
}

// Base carries the parameters a component was constructed with. Absent
// optional parameters read as zero values; use Has to tell them apart.
type Base struct {
	params domain.Params
}

func (b *Base) bind(params domain.Params) {
	b.params = params
}

// Params returns the whole parameter set.
func (b *Base) Params() Params {
	return b.params
}

func (b *Base) Has(name string) bool {
	return b.params.Has(name)
}

func (b *Base) Param(name string) (any, bool) {
	return b.params.Get(name)
}

func (b *Base) Int(name string) int64 {
	return b.params.Int(name)
}

func (b *Base) Float(name string) float64 {
	return b.params.Float(name)
}

func (b *Base) Bool(name string) bool {
	return b.params.Bool(name)
}

func (b *Base) String(name string) string {
	return b.params.String(name)
}

func (b *Base) Array(name string) []any {
	return b.params.Array(name)
}

type binder interface {
	bind(domain.Params)
}
