package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/getahuddle/huddle/internal/availability"
	"github.com/getahuddle/huddle/internal/cache"
	"github.com/getahuddle/huddle/internal/config"
	"github.com/getahuddle/huddle/internal/llm"
	"github.com/getahuddle/huddle/internal/scheduler"
	"github.com/getahuddle/huddle/internal/venues"
)

// app bundles the wired pipeline with everything that needs closing at exit.
type app struct {
	sched *scheduler.Scheduler
	cache cache.Store
	close []func() error
}

// Close waits for background enrichment and releases resources.
func (a *app) Close() {
	a.sched.Background().Wait()
	for _, fn := range a.close {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}
}

// buildApp wires a Scheduler from configuration: completion service, cache
// backend, availability source, and venue search.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	llmCfg := llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	}
	if !cfg.Anthropic.UseAWSBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		if err := config.ValidateAPIKey(key); err != nil {
			return nil, fmt.Errorf("anthropic api key: %w", err)
		}
		llmCfg.APIKey = key
	}
	apiClient, err := llm.NewClient(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create completion client: %w", err)
	}

	store, err := openCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.cache = store
	a.close = append(a.close, store.Close)

	source, err := openAvailability(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var searcher venues.Searcher
	if key := config.GetPlacesAPIKey(cfg); key != "" {
		gs, err := venues.NewGoogleSearcher(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("create venue searcher: %w", err)
		}
		searcher = gs
	}

	policy := scheduler.DefaultPolicy()
	if cfg.Scheduler.PolicyPath != "" {
		policy, err = scheduler.LoadPolicy(cfg.Scheduler.PolicyPath)
		if err != nil {
			return nil, fmt.Errorf("load scheduling policy: %w", err)
		}
	}

	logger := scheduler.NopLogger()
	if cfg.Scheduler.DebugLogPath != "" {
		logger, err = scheduler.NewDebugLogger(cfg.Scheduler.DebugLogPath)
		if err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
		a.close = append(a.close, logger.Close)
	}

	sched, err := scheduler.New(scheduler.Config{
		LLM:          apiClient,
		Availability: source,
		Venues:       searcher,
		Cache:        store,
		Policy:       policy,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}
	a.sched = sched
	return a, nil
}

// openCache selects the cache backend from configuration.
func openCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemoryStore(), nil
	case "sqlite":
		store, err := cache.OpenSQLite(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return store, nil
	case "postgres":
		store, err := cache.OpenPostgres(ctx, cfg.Cache.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres cache: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// openAvailability picks the first configured calendar provider; with none
// configured both parties are treated as fully free over the horizon.
func openAvailability(ctx context.Context, cfg *config.Config) (availability.Source, error) {
	switch {
	case cfg.Google.CalendarClientID != "":
		source, err := availability.NewGoogleSource(ctx,
			cfg.Google.CalendarClientID,
			cfg.Google.CalendarClientSecret,
			cfg.Google.CalendarTokenFile)
		if err != nil {
			return nil, fmt.Errorf("connect google calendar: %w", err)
		}
		source.HorizonDays = cfg.Scheduler.HorizonDays
		return source, nil
	case cfg.CalDAV.Endpoint != "":
		source, err := availability.NewCalDAVSource(ctx,
			cfg.CalDAV.Endpoint,
			cfg.CalDAV.Username,
			cfg.CalDAV.Password)
		if err != nil {
			return nil, fmt.Errorf("connect caldav: %w", err)
		}
		source.HorizonDays = cfg.Scheduler.HorizonDays
		return source, nil
	default:
		return &availability.StaticSource{HorizonDays: cfg.Scheduler.HorizonDays}, nil
	}
}
