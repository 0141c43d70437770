package tools

// A calculator tool

import (
	"context"
	"fmt"
	"strings"

	"plasma/pkg/plasma"
)

type CalculatorTool struct {
	plasma.Base
}

func init() {
	plasma.RegisterTool[CalculatorTool](plasma.Declare().
		Param("number1", plasma.Float, plasma.Required(), plasma.Description("First operand")).
		Param("number2", plasma.Float, plasma.Required(), plasma.Description("Second operand")).
		Param("operation", plasma.String, plasma.Required(), plasma.Description("One of add, subtract, multiply, divide")))
}

func (t *CalculatorTool) Call(context.Context) (any, error) {
	a, b := t.Float("number1"), t.Float("number2")
	switch strings.ToLower(t.String("operation")) {
	case "add", "+":
		return a + b, nil
	case "subtract", "-":
		return a - b, nil
	case "multiply", "*":
		return a * b, nil
	case "divide", "/":
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return a / b, nil
	default:
		return nil, fmt.Errorf("unsupported operation %q", t.String("operation"))
	}
}
