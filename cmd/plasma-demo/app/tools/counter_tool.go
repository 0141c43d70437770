package tools

// Counts how often it was called. Pass step to count by more than one.

import (
	"context"

	"plasma/pkg/plasma"
)

var calls = plasma.DeclareVariable("counter_calls", 0)

type CounterTool struct {
	plasma.Base
}

func init() {
	plasma.RegisterTool[CounterTool](plasma.Declare().
		Param("step", plasma.Integer))
}

func (t *CounterTool) Call(ctx context.Context) (any, error) {
	step := int64(1)
	if t.Has("step") {
		step = t.Int("step")
	}
	return calls.Add(ctx, step)
}
