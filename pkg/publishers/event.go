package publishers

import (
	"encoding/json"
	"time"

	"github.com/samvad-hq/recipe-client/internal/domain"
)

// Event represents a newly seen recipe published downstream.
type Event struct {
	FeedID      string          `json:"feed_id"`
	FeedName    string          `json:"feed_name"`
	Recipe      domain.Recipe   `json:"recipe"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent constructs an Event for the given feed + recipe.
func NewEvent(feedID, feedName string, recipe domain.Recipe) Event {
	return Event{
		FeedID:      feedID,
		FeedName:    feedName,
		Recipe:      recipe,
		Payload:     recipe.Raw,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are attached as message metadata by queue-style publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"feed_id":   e.FeedID,
		"recipe_id": e.Recipe.ID,
	}
}
