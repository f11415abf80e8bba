package feed

import (
	"context"

	"github.com/samvad-hq/recipe-client/pkg/publishers"
)

// EventPublisher publishes recipe events downstream and reports how many sinks accepted them.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper remembers recipes already published for a feed.
type Deduper interface {
	SeenRecipe(feedID, recipeID string) (bool, error)
	MarkRecipe(feedID, recipeID string) error
}
