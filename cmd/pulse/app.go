package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"PortfolioPulse/internal/analyzer"
	"PortfolioPulse/internal/cache"
	"PortfolioPulse/internal/collector"
	"PortfolioPulse/internal/config"
	"PortfolioPulse/internal/metrics"
	"PortfolioPulse/internal/narrative"
	"PortfolioPulse/internal/recorder"
)

// app owns every long-lived resource built from the config.
type app struct {
	svc    *analyzer.Service
	closer []func() error
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	src, err := openSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closer = append(a.closer, src.Close)
	log.Printf("[INFO] investor source: %s", src.Name())

	store, err := openCacheStore(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	c := cache.New(store, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	a.closer = append(a.closer, c.Close)
	log.Printf("[INFO] summary cache: %s (ttl %s)", cfg.Cache.Backend, c.TTL())

	rec, err := openRecorder(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closer = append(a.closer, rec.Close)

	gen, err := openGenerator(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	narr := narrative.NewService(gen, c, time.Duration(cfg.Narrative.TimeoutSeconds)*time.Second)

	a.svc = analyzer.NewService(src, eng, narr, c, rec, cfg.Bulk.Concurrency)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		if err := a.closer[i](); err != nil {
			log.Printf("[WARN] close: %v", err)
		}
	}
	a.closer = nil
}

// newEngine applies the configured cutoff overrides and forecaster to the default metric engine.
func newEngine(cfg *config.Config) (*metrics.Engine, error) {
	th := metrics.DefaultThresholds()
	if v := cfg.Metrics.ForecastMonths; v > 0 {
		th.ForecastMonths = v
	}
	if v := cfg.Metrics.AMCConcentration; v > 0 {
		th.AMCConcentration = v
	}
	if v := cfg.Metrics.MissedSIPDays; v > 0 {
		th.MissedSIPDays = v
	}
	f, err := metrics.NewForecaster(cfg.Metrics.Forecaster, th, cfg.Metrics.ForecastSeed, cfg.Metrics.FixedGrowthPct)
	if err != nil {
		return nil, fmt.Errorf("init metric engine: %w", err)
	}
	log.Printf("[INFO] growth forecaster: %s", cfg.Metrics.Forecaster)
	return metrics.NewEngine(metrics.WithThresholds(th), metrics.WithForecaster(f)), nil
}

// openSource picks the document store: Mongo, then Postgres, then the JSON file.
func openSource(ctx context.Context, cfg *config.Config) (collector.Source, error) {
	switch {
	case cfg.Source.MongoURL != "":
		src, err := collector.NewMongoSource(ctx, cfg.Source.MongoURL, cfg.Source.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo source: %w", err)
		}
		return src, nil
	case cfg.Source.PostgresURL != "":
		src, err := collector.NewPostgresSource(ctx, cfg.Source.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres source: %w", err)
		}
		return src, nil
	default:
		return collector.NewFileSource(cfg.Source.InvestorsFile), nil
	}
}

func openCacheStore(cfg *config.Config) (cache.Store, error) {
	var (
		store cache.Store
		err   error
	)
	switch cfg.Cache.Backend {
	case config.BackendMemory:
		store = cache.NewMemoryStore()
	case config.BackendFile:
		store, err = cache.NewFileStore(cfg.Cache.Dir)
	case config.BackendBadger:
		store, err = cache.NewBadgerStore(filepath.Join(cfg.Cache.Dir, "badger"), time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	default:
		if err = ensureDir(cfg.Database.SQLitePath); err == nil {
			store, err = cache.NewSQLiteStore(cfg.Database.SQLitePath)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	return store, nil
}

func openRecorder(cfg *config.Config) (recorder.Recorder, error) {
	if err := ensureDir(cfg.Database.SQLitePath); err != nil {
		return nil, err
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, results kept in memory: %v", err)
		return recorder.NewMemoryRecorder(), nil
	}
	return rec, nil
}

// openGenerator returns a nil Generator when no credential is configured.
func openGenerator(ctx context.Context, cfg *config.Config) (narrative.Generator, error) {
	if cfg.Narrative.APIKey == "" {
		log.Println("[WARN] no narrative API key set, summaries will use the fallback text")
		return nil, nil
	}
	if cfg.Narrative.Provider == config.ProviderGemini {
		gen, err := narrative.NewGeminiGenerator(ctx, cfg.Narrative.APIKey, cfg.Narrative.Model)
		if err != nil {
			return nil, fmt.Errorf("init gemini generator: %w", err)
		}
		return gen, nil
	}
	gen, err := narrative.NewOpenAIGenerator(cfg.Narrative.APIKey,
		narrative.WithBaseURL(cfg.Narrative.BaseURL),
		narrative.WithModel(cfg.Narrative.Model),
		narrative.WithProxy(cfg.Proxy),
		narrative.WithRetry(cfg.Narrative.MaxRetries, time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("init openai generator: %w", err)
	}
	return gen, nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
