package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/recipe-client/internal/domain"
	"github.com/samvad-hq/recipe-client/internal/logger"
	"github.com/samvad-hq/recipe-client/pkg/feeds"
	"github.com/samvad-hq/recipe-client/pkg/publishers"
	"github.com/samvad-hq/recipe-client/pkg/recipeapi"
)

// Service polls feeds and publishes recipes it has not seen before.
type Service struct {
	registry  feeds.FetcherRegistry
	publisher EventPublisher
	store     Deduper
	log       logger.Logger
}

// NewService wires a feed poller. A nil store publishes every recipe on every pass.
func NewService(reg feeds.FetcherRegistry, pub EventPublisher, log logger.Logger, store Deduper) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		registry:  reg,
		publisher: pub,
		store:     store,
		log:       log,
	}
}

// Run executes one polling pass over every feed. Per-feed failures are logged and
// returned joined; one failing feed does not stop the others.
func (s *Service) Run(ctx context.Context, list []feeds.Feed) error {
	if s == nil || s.registry == nil {
		return fmt.Errorf("feed service is not initialized")
	}
	if len(list) == 0 {
		return fmt.Errorf("no feeds configured for polling")
	}

	if errs := s.runAll(ctx, list); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, list []feeds.Feed) []error {
	errs := make([]error, 0, len(list))

	for _, f := range list {
		if ctx.Err() != nil {
			break
		}
		if err := s.runFeed(ctx, f); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("feed poll failed", "feed_error", map[string]any{
				"feed_id": f.ID,
				"error":   err.Error(),
			})
		}
	}

	return errs
}

func (s *Service) runFeed(ctx context.Context, f feeds.Feed) error {
	fetcher, err := s.registry.FetcherFor(f)
	if err != nil {
		return fmt.Errorf("resolve fetcher for feed %s: %w", f.ID, err)
	}

	res := fetcher.Fetch(ctx, f)
	if !res.OK() {
		return fmt.Errorf("fetch feed %s: %w", f.ID, res.Err())
	}

	recipes, err := recipeapi.Recipes(res)
	if err != nil {
		return fmt.Errorf("decode feed %s: %w", f.ID, err)
	}

	fresh := s.filterNewRecipes(f, recipes)
	published, err := s.publishRecipes(ctx, f, fresh)

	s.log.InfoObj("feed poll completed", "feed_result", map[string]any{
		"feed_id":           f.ID,
		"recipes_fetched":   len(recipes),
		"recipes_new":       len(fresh),
		"recipes_published": published,
	})
	return err
}

// filterNewRecipes drops recipes already marked for the feed. Lookup errors keep
// the recipe so a broken store never hides new data.
func (s *Service) filterNewRecipes(f feeds.Feed, recipes []domain.Recipe) []domain.Recipe {
	if s.store == nil {
		return recipes
	}

	out := make([]domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		seen, err := s.store.SeenRecipe(f.ID, r.ID)
		if err != nil {
			s.log.WarnObj("seen lookup failed", "store_error", map[string]any{
				"feed_id":   f.ID,
				"recipe_id": r.ID,
				"error":     err.Error(),
			})
			out = append(out, r)
			continue
		}
		if !seen {
			out = append(out, r)
		}
	}
	return out
}

// publishRecipes sends each recipe and marks it seen once at least one sink took it.
func (s *Service) publishRecipes(ctx context.Context, f feeds.Feed, recipes []domain.Recipe) (int, error) {
	if s.publisher == nil || len(recipes) == 0 {
		return 0, nil
	}

	var errs []error
	published := 0
	for _, r := range recipes {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		delivered, err := s.publisher.Publish(ctx, publishers.NewEvent(f.ID, f.Name, r))
		if err != nil {
			errs = append(errs, fmt.Errorf("publish recipe %s: %w", r.ID, err))
		}
		if delivered == 0 {
			continue
		}
		published++
		if s.store != nil {
			if err := s.store.MarkRecipe(f.ID, r.ID); err != nil {
				errs = append(errs, fmt.Errorf("mark recipe %s: %w", r.ID, err))
			}
		}
	}
	return published, errors.Join(errs...)
}
