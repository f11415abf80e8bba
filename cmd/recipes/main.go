package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samvad-hq/recipe-client/internal/app"
	"github.com/samvad-hq/recipe-client/internal/config"
	"github.com/samvad-hq/recipe-client/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	baseURL := flag.String("base-url", "", "recipes API base URL (overrides API_BASE_URL)")
	timeout := flag.Duration("timeout", 0, "request timeout, e.g. 5s (overrides REQUEST_TIMEOUT_SECONDS)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: recipes [flags] <command> [args]\n\n%s\n\nflags:\n", app.QueryUsage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "recipes: load config: %v\n", err)
		return app.ExitFailure
	}
	if *baseURL != "" {
		cfg.APIBaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.RequestTimeout = *timeout
	}

	log, err := logger.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recipes: init logger: %v\n", err)
		return app.ExitFailure
	}
	defer logger.Close()

	api, err := app.NewAPIClient(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "recipes: %v\n", err)
		return app.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	code := app.RunQuery(ctx, api, flag.Args(), os.Stdout, os.Stderr)
	logger.DebugObj("recipes command finished", "command_meta", map[string]any{
		"args":       flag.Args(),
		"exit_code":  code,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return code
}
