package tools

// Stores a note and returns every note saved under the same topic.

import (
	"context"

	"plasma/pkg/plasma"
)

type RememberTool struct {
	plasma.Base
}

func init() {
	plasma.RegisterTool[RememberTool](plasma.Declare().
		Param("note", plasma.String, plasma.Required()).
		Param("topic", plasma.String, plasma.Description("Defaults to general")))
}

func (t *RememberTool) Call(ctx context.Context) (any, error) {
	store, err := plasma.StorageFrom(ctx)
	if err != nil {
		return nil, err
	}
	topic := "general"
	if t.Has("topic") {
		topic = t.String("topic")
	}
	record, err := store.AddRecord(map[string]any{"note": t.String("note"), "topic": topic})
	if err != nil {
		return nil, err
	}
	notes, err := store.FindRecordsByField("topic", topic)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":    record.ID,
		"topic": topic,
		"notes": notes,
	}, nil
}
