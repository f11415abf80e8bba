package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/recipe-client/internal/config"
	"github.com/samvad-hq/recipe-client/internal/feed"
	"github.com/samvad-hq/recipe-client/internal/logger"
	"github.com/samvad-hq/recipe-client/internal/storage"
	"github.com/samvad-hq/recipe-client/pkg/feeds"
	"github.com/samvad-hq/recipe-client/pkg/publishers"
	"github.com/samvad-hq/recipe-client/pkg/recipeapi"
)

// Watcher polls the configured recipe feeds and publishes newly seen recipes. It
// owns the seen-recipe store and the publishers and releases both on exit.
type Watcher struct {
	cfg          *config.Config
	feedReg      *feeds.Registry
	fanout       *publishers.Fanout
	feedService  *feed.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	api, err := NewAPIClient(cfg, log)
	if err != nil {
		return nil, err
	}

	feedReg, err := feeds.LoadRegistry(cfg.FeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load feeds registry: %w", err)
	}
	feedList := feedReg.All()
	feedIDs := make([]string, 0, len(feedList))
	for _, f := range feedList {
		feedIDs = append(feedIDs, f.ID)
	}
	log.InfoObj("feeds registry loaded", "feeds_meta", map[string]any{
		"count": len(feedIDs),
		"ids":   feedIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		RecipeTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"recipe_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Watcher{
		cfg:          cfg,
		feedReg:      feedReg,
		fanout:       fanout,
		feedService:  feed.NewService(feeds.DefaultFetcherRegistry(api), fanout, log, store),
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run polls immediately and then on every interval until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.feedService == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	feedList := w.feedReg.All()
	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"feeds_count":      len(feedList),
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
		"api_base_url":     w.cfg.APIBaseURL,
	})

	if err := w.runOnce(ctx, feedList); err != nil {
		w.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx, feedList); err != nil {
				w.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

// runOnce performs a single polling pass across all feeds.
func (w *Watcher) runOnce(ctx context.Context, feedList []feeds.Feed) error {
	start := time.Now()
	w.log.InfoObj("poll started", "poll_meta", map[string]any{
		"feeds_count": len(feedList),
		"started_at":  start.UTC(),
	})
	if err := w.feedService.Run(ctx, feedList); err != nil {
		return err
	}
	w.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"feeds_count": len(feedList),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the store and publishers, logging any errors encountered.
func (w *Watcher) close() {
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publishers close failed", "error", err)
	}
}

// NewAPIClient builds the recipes API client from config.
func NewAPIClient(cfg *config.Config, log logger.Logger) (*recipeapi.Client, error) {
	api, err := recipeapi.New(recipeapi.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.RequestTimeout,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("init recipe api client: %w", err)
	}
	return api, nil
}
