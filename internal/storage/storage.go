package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store remembers which recipes have already been published, per feed.
type Store interface {
	Close() error
	SeenRecipe(feedID, recipeID string) (bool, error)
	MarkRecipe(feedID, recipeID string) error
}

// Options controls retention for concrete store implementations.
type Options struct {
	RecipeTTL       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRecipeTTL       = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return newMemoryStore(opts), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.RecipeTTL <= 0 {
		opts.RecipeTTL = defaultRecipeTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// recipeKey scopes a recipe id to its feed so the same recipe can surface in
// several feeds.
func recipeKey(feedID, recipeID string) string {
	return feedID + "\x00" + recipeID
}

type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) SeenRecipe(string, string) (bool, error) { return false, nil }
func (noopStore) MarkRecipe(string, string) error         { return nil }
