package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/rushteam/vitrine/api"
	"github.com/rushteam/vitrine/config"
	"github.com/rushteam/vitrine/core"
	"github.com/rushteam/vitrine/engine"
	"github.com/rushteam/vitrine/filter"
	"github.com/rushteam/vitrine/ledger"
	"github.com/rushteam/vitrine/likes"
	"github.com/rushteam/vitrine/logging"
	"github.com/rushteam/vitrine/metrics"
	"github.com/rushteam/vitrine/pkg/utils"
	"github.com/rushteam/vitrine/preference"
	"github.com/rushteam/vitrine/price"
	"github.com/rushteam/vitrine/recall"
	"github.com/rushteam/vitrine/search"
	"github.com/rushteam/vitrine/store"
)

type serveCommand struct{}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Caller: cfg.Log.Caller})
}

// openKV 按配置打开交互流水与喜欢列表使用的 KV。
func openKV(ctx context.Context, cfg config.StoreConfig) (core.KeyValueStore, error) {
	if cfg.KV != "redis" {
		return store.NewMemoryStore(), nil
	}
	rs, err := store.NewRedisStore(ctx, store.RedisOptions{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// catalogStores 按配置为目录加熔断。
func catalogStores(cfg *config.Config, sqlite *store.SQLiteCatalog) (core.CatalogStore, core.ListingStore) {
	if !cfg.Breaker.Enabled {
		return sqlite, sqlite
	}
	b := store.NewBreakerCatalog(sqlite, sqlite, store.BreakerSettings{
		Name:          "catalog",
		MaxRequests:   cfg.Breaker.MaxRequests,
		Interval:      cfg.Breaker.Interval,
		Timeout:       cfg.Breaker.Timeout,
		MinRequests:   cfg.Breaker.MinRequests,
		FailureRatio:  cfg.Breaker.FailureRatio,
		OnStateChange: metrics.ObserveBreakerTransition,
	})
	return b, b
}

func (c *serveCommand) Execute(_ []string) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feeds, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("load feeds: %w", err)
	}

	sqlite, err := store.OpenSQLiteCatalog(ctx, cfg.Store.Catalog)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer sqlite.Close()
	catalog, listings := catalogStores(cfg, sqlite)

	kv, err := openKV(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open kv: %w", err)
	}
	defer kv.Close()

	l := ledger.New(kv)
	recorder := ledger.NewRecorder(l, cfg.Recorder.Buffer, cfg.Recorder.Timeout, log)
	defer recorder.Close()

	gate := filter.NewTaxonomyGate(cfg.Taxonomy.Allow)
	admission, err := filter.NewExprFilter(cfg.Admission.Rule)
	if err != nil {
		return fmt.Errorf("compile admission rule: %w", err)
	}

	e, err := engine.New(engine.Deps{
		Catalog:    catalog,
		Listings:   listings,
		Ledger:     l,
		Recorder:   recorder,
		Likes:      likes.New(kv),
		Gate:       gate,
		Admission:  admission,
		Aggregator: preference.NewAggregator(l, catalog, gate, preference.WithWindow(cfg.Preference.Window)),
		Deriver:    price.NewDeriver(cfg.Currency.Rate, cfg.Pricing.RentalFraction),
		Rand:       utils.NewTimeRand(),
		Logger:     log,
	}, engine.Options{
		Warm:           recall.Window{Multiplier: cfg.Overfetch.WarmMultiplier, Jitter: cfg.Overfetch.WarmJitter},
		Cold:           recall.Window{Multiplier: cfg.Overfetch.ColdMultiplier, Jitter: cfg.Overfetch.ColdJitter},
		Plain:          recall.Window{Multiplier: cfg.Overfetch.PlainMultiplier},
		ShuffleHead:    cfg.Engine.ShuffleHead,
		TopPurchases:   cfg.Preference.TopPurchases,
		PurchaseWindow: cfg.Preference.Window,
		Timeout:        cfg.Engine.Timeout,
	})
	if err != nil {
		return err
	}
	searcher := search.New(catalog, listings, gate, e.Decorator(), log)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.New(e, searcher, feeds, cfg.Server.MaxPageSize, log).Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Strs("feeds", feeds.Names()).Str("kv", cfg.Store.KV).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server error")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}
