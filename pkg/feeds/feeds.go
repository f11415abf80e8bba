package feeds

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/recipe-client/internal/configfile"
	"github.com/samvad-hq/recipe-client/pkg/recipeapi"
)

// Supported feed kinds, one per list operation of the recipes API.
const (
	KindAll     = "all"
	KindSearch  = "search"
	KindCuisine = "cuisine"
	KindTop     = "top"
)

// Feed is a recurring recipes API query watched for new recipes.
type Feed struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Query string `json:"query" yaml:"query"`
	Limit int    `json:"limit" yaml:"limit"`
}

type configFile struct {
	Feeds []Feed `json:"feeds" yaml:"feeds"`
}

// Registry holds the feeds loaded from a config file.
type Registry struct {
	mu    sync.RWMutex
	feeds []Feed
	idx   map[string]Feed
}

// LoadRegistry loads feed definitions from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	var cfg configFile
	if err := configfile.Read(path, "feeds", &cfg); err != nil {
		return nil, err
	}
	return NewRegistry(cfg.Feeds)
}

// NewRegistry validates feeds and indexes them by id.
func NewRegistry(feeds []Feed) (*Registry, error) {
	if len(feeds) == 0 {
		return nil, errors.New("feeds file contains no feeds entries")
	}

	reg := &Registry{
		feeds: make([]Feed, len(feeds)),
		idx:   make(map[string]Feed, len(feeds)),
	}
	for i := range feeds {
		f := sanitizeFeed(feeds[i])
		if err := validateFeed(f); err != nil {
			return nil, fmt.Errorf("feeds[%d]: %w", i, err)
		}
		if _, exists := reg.idx[f.ID]; exists {
			return nil, fmt.Errorf("duplicate feed id %q", f.ID)
		}
		reg.feeds[i] = f
		reg.idx[f.ID] = f
	}
	return reg, nil
}

func sanitizeFeed(f Feed) Feed {
	f.ID = strings.TrimSpace(f.ID)
	f.Name = strings.TrimSpace(f.Name)
	f.Kind = strings.ToLower(strings.TrimSpace(f.Kind))
	f.Query = strings.TrimSpace(f.Query)
	if f.Name == "" {
		f.Name = f.ID
	}
	if f.Kind == KindTop && f.Limit == 0 {
		f.Limit = recipeapi.DefaultTopLimit
	}
	return f
}

func validateFeed(f Feed) error {
	if f.ID == "" {
		return errors.New("id is required")
	}
	switch f.Kind {
	case KindAll, KindTop:
	case KindSearch, KindCuisine:
		if f.Query == "" {
			return fmt.Errorf("query is required for %s feed %q", f.Kind, f.ID)
		}
	case "":
		return fmt.Errorf("kind is required for feed %q", f.ID)
	default:
		return fmt.Errorf("unknown kind %q for feed %q", f.Kind, f.ID)
	}
	return nil
}

// All returns a copy of the configured feeds in file order.
func (r *Registry) All() []Feed {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Feed, len(r.feeds))
	copy(out, r.feeds)
	return out
}

// ByID returns the feed with the given id.
func (r *Registry) ByID(id string) (Feed, bool) {
	if r == nil {
		return Feed{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Feed{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.idx[id]
	return f, ok
}
