package resources

// Looks up a widget by id.

import (
	"context"
	"fmt"

	"plasma/pkg/plasma"
)

type WidgetResource struct {
	plasma.Base
}

func init() {
	plasma.RegisterResource[WidgetResource](plasma.Declare().
		URI("widgets://{id}").
		MIME("application/json").
		Param("id", plasma.Integer, plasma.Required()))
}

func (r *WidgetResource) Read(context.Context) (any, error) {
	id := r.Int("id")
	if id <= 0 {
		return nil, fmt.Errorf("widget %d does not exist", id)
	}
	return map[string]any{
		"id":    id,
		"name":  fmt.Sprintf("Widget #%d", id),
		"color": []string{"red", "green", "blue"}[id%3],
	}, nil
}
