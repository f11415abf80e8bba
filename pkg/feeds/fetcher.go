package feeds

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samvad-hq/recipe-client/pkg/recipeapi"
)

// Fetcher runs the API query behind a feed.
type Fetcher interface {
	Kind() string
	Fetch(ctx context.Context, f Feed) recipeapi.Result
}

// FetcherRegistry resolves the fetcher for a feed.
type FetcherRegistry interface {
	FetcherFor(f Feed) (Fetcher, error)
}

type fetcherFunc struct {
	kind string
	fn   func(ctx context.Context, f Feed) recipeapi.Result
}

func (f fetcherFunc) Kind() string { return f.kind }

func (f fetcherFunc) Fetch(ctx context.Context, feed Feed) recipeapi.Result {
	return f.fn(ctx, feed)
}

// fetcherRegistry implements FetcherRegistry keyed by feed kind.
type fetcherRegistry struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

// NewFetcherRegistry builds a registry from fetchers keyed by their Kind.
func NewFetcherRegistry(fetchers ...Fetcher) FetcherRegistry {
	reg := &fetcherRegistry{fetchers: make(map[string]Fetcher, len(fetchers))}
	for _, f := range fetchers {
		if f == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(f.Kind()))
		if key == "" {
			continue
		}
		reg.mu.Lock()
		reg.fetchers[key] = f
		reg.mu.Unlock()
	}
	return reg
}

// FetcherFor selects the fetcher for the feed's kind.
func (r *fetcherRegistry) FetcherFor(f Feed) (Fetcher, error) {
	if r == nil {
		return nil, fmt.Errorf("fetcher registry is nil")
	}
	key := strings.ToLower(strings.TrimSpace(f.Kind))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if fetcher, ok := r.fetchers[key]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("no fetcher registered for feed %q (kind %q)", f.ID, f.Kind)
}

// DefaultFetcherRegistry wires every feed kind to the matching API operation.
func DefaultFetcherRegistry(api recipeapi.RecipeAPI) FetcherRegistry {
	return NewFetcherRegistry(
		fetcherFunc{kind: KindAll, fn: func(ctx context.Context, _ Feed) recipeapi.Result {
			return api.LoadAllRecipes(ctx)
		}},
		fetcherFunc{kind: KindSearch, fn: func(ctx context.Context, f Feed) recipeapi.Result {
			return api.SearchRecipes(ctx, f.Query)
		}},
		fetcherFunc{kind: KindCuisine, fn: func(ctx context.Context, f Feed) recipeapi.Result {
			return api.GetRecipesByCuisine(ctx, f.Query)
		}},
		fetcherFunc{kind: KindTop, fn: func(ctx context.Context, f Feed) recipeapi.Result {
			return api.GetTopRatedRecipes(ctx, f.Limit)
		}},
	)
}
