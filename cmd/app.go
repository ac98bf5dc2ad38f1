package cmd

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/matheuskafuri/techpulse/internal/ai"
	"github.com/matheuskafuri/techpulse/internal/cache"
	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/fetch"
	"github.com/matheuskafuri/techpulse/internal/logging"
)

// app bundles what every command needs: config, logger, cache and the
// orchestrator on top of them.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   cache.Store
	fetcher *fetch.Orchestrator
}

// setup loads config and opens the cache and AI gateway. When logFile is
// set the logger writes there instead of stderr.
func setup(ctx context.Context, logFile string) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Verbose: flagVerbose, File: logFile})
	if err != nil {
		return nil, err
	}

	store, err := cache.Open(ctx, cfg.Cache.Backend, cfg.CacheTarget(), cfg.Cache.MemorySize,
		cache.WithSchemaVersion(cfg.Cache.SchemaVersion),
		cache.WithLogger(logger.Named("cache")),
	)
	if err != nil {
		_ = logger.Sync()
		return nil, errors.Wrap(err, "opening cache")
	}

	gateway, err := ai.New(ctx, &cfg.AI, cfg.AIKey(), logger.Named("ai"))
	if err != nil {
		_ = store.Close()
		_ = logger.Sync()
		return nil, errors.Wrap(err, "configuring AI backend")
	}
	if !cfg.AIEnabled() {
		logger.Warn("no AI API key configured; only cached data can be shown")
	}

	fetcher := fetch.New(gateway, store,
		fetch.WithTTL(cfg.TTL()),
		fetch.WithSchemaVersion(cfg.Cache.SchemaVersion),
		fetch.WithLogger(logger.Named("fetch")),
	)

	return &app{cfg: cfg, logger: logger, store: store, fetcher: fetcher}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing cache", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// withTimeout applies --timeout to ctx.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if flagTimeout > 0 {
		return context.WithTimeout(ctx, flagTimeout)
	}
	return context.WithCancel(ctx)
}
