package feed

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/samvad-hq/recipe-client/pkg/feeds"
	"github.com/samvad-hq/recipe-client/pkg/publishers"
	"github.com/samvad-hq/recipe-client/pkg/recipeapi"
)

// fakePublisher records published events and can reject a recipe id.
type fakePublisher struct {
	mu      sync.Mutex
	events  []publishers.Event
	errOnID string
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.Recipe.ID == f.errOnID {
		return 0, errors.New("boom")
	}
	return 1, nil
}

// fakeDeduper tracks seen ids per feed.
type fakeDeduper struct {
	mu      sync.Mutex
	seen    map[string]bool
	failID  string
	failErr error
}

func (f *fakeDeduper) SeenRecipe(feedID, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == f.failID && f.failErr != nil {
		return false, f.failErr
	}
	return f.seen[feedID+"/"+id], nil
}

func (f *fakeDeduper) MarkRecipe(feedID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[feedID+"/"+id] = true
	return nil
}

// newAPI serves fixed bodies keyed by escaped request path.
func newAPI(t *testing.T, routes map[string]string) recipeapi.RecipeAPI {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[strings.TrimPrefix(r.URL.EscapedPath(), "/api/recipes")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := recipeapi.New(recipeapi.Options{BaseURL: srv.URL + "/api/recipes"})
	if err != nil {
		t.Fatalf("recipeapi.New: %v", err)
	}
	return client
}

func TestServicePublishesFreshRecipesOnly(t *testing.T) {
	api := newAPI(t, map[string]string{
		"/top/6": `[{"id":"r1","name":"old"},{"id":"r2","name":"new"}]`,
	})
	deduper := &fakeDeduper{seen: map[string]bool{"top/r1": true}}
	pub := &fakePublisher{}

	svc := NewService(feeds.DefaultFetcherRegistry(api), pub, nil, deduper)
	if err := svc.Run(context.Background(), []feeds.Feed{{ID: "top", Name: "Top", Kind: feeds.KindTop, Limit: 6}}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.Recipe.ID != "r2" || evt.FeedID != "top" || evt.FeedName != "Top" {
		t.Fatalf("unexpected event %+v", evt)
	}
	if !deduper.seen["top/r2"] {
		t.Fatalf("MarkRecipe not called for new recipe")
	}

	// A second pass finds nothing new.
	if err := svc.Run(context.Background(), []feeds.Feed{{ID: "top", Kind: feeds.KindTop, Limit: 6}}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected no new events, got %d", len(pub.events))
	}
}

func TestServiceAggregatesFeedFailures(t *testing.T) {
	api := newAPI(t, map[string]string{
		"/cuisine/thai": `[{"id":"t1"}]`,
		"/search/bad":   `{"not":"a list"}`,
	})
	pub := &fakePublisher{}
	svc := NewService(feeds.DefaultFetcherRegistry(api), pub, nil, nil)

	err := svc.Run(context.Background(), []feeds.Feed{
		{ID: "missing", Kind: feeds.KindAll},
		{ID: "thai", Kind: feeds.KindCuisine, Query: "thai"},
		{ID: "bad", Kind: feeds.KindSearch, Query: "bad"},
	})
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	if !errors.Is(err, recipeapi.ErrStatus) {
		t.Fatalf("expected status failure for missing feed, got %v", err)
	}
	if !strings.Contains(err.Error(), "decode feed bad") {
		t.Fatalf("expected decode failure for bad feed, got %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Recipe.ID != "t1" {
		t.Fatalf("healthy feed should still publish, got %#v", pub.events)
	}
}

func TestServiceKeepsUnmarkedOnPublishFailure(t *testing.T) {
	api := newAPI(t, map[string]string{"/": `[{"id":"bad"},{"id":"good"}]`})
	deduper := &fakeDeduper{}
	svc := NewService(feeds.DefaultFetcherRegistry(api), &fakePublisher{errOnID: "bad"}, nil, deduper)

	err := svc.Run(context.Background(), []feeds.Feed{{ID: "all", Kind: feeds.KindAll}})
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected error mentioning bad recipe, got %v", err)
	}
	if deduper.seen["all/bad"] {
		t.Fatalf("failed recipe must not be marked seen")
	}
	if !deduper.seen["all/good"] {
		t.Fatalf("delivered recipe must be marked seen")
	}
}

func TestFilterNewRecipesHandlesDeduperErrors(t *testing.T) {
	api := newAPI(t, map[string]string{"/": `[{"id":"keep"},{"id":"skip"},{"id":"error"}]`})
	deduper := &fakeDeduper{
		seen:    map[string]bool{"all/skip": true},
		failID:  "error",
		failErr: errors.New("lookup failed"),
	}
	svc := NewService(feeds.DefaultFetcherRegistry(api), nil, nil, deduper)

	recipes, err := recipeapi.Recipes(api.LoadAllRecipes(context.Background()))
	if err != nil {
		t.Fatalf("Recipes: %v", err)
	}
	filtered := svc.filterNewRecipes(feeds.Feed{ID: "all"}, recipes)
	if len(filtered) != 2 || filtered[0].ID != "keep" || filtered[1].ID != "error" {
		t.Fatalf("unexpected filter result %#v", filtered)
	}
}

func TestServiceRunAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(feeds.NewFetcherRegistry(), nil, nil, nil)
	if errs := svc.runAll(ctx, []feeds.Feed{{ID: "all", Kind: feeds.KindAll}}); len(errs) != 0 {
		t.Fatalf("expected no errors on cancelled context, got %v", errs)
	}
}

func TestServiceRunRejectsEmptyFeeds(t *testing.T) {
	svc := NewService(feeds.NewFetcherRegistry(), nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when feeds list empty")
	}
}
