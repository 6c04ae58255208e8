package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketcrawler/config"
	"marketcrawler/internal/catalog"
	"marketcrawler/internal/memorystore"
	"marketcrawler/pkg/binance"
	"marketcrawler/pkg/market"
	"marketcrawler/pkg/storage/postgres"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// reportInterval is how often Start logs event counts.
var reportInterval = 5 * time.Second

// Start runs the Binance market-data pipeline until ctx is done. It loads the
// market catalog via REST, validates the crawl against it, then streams
// canonical events into memory (and klines optionally to Postgres).
func Start(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	opts, err := cfg.Crawl.Parse()
	if err != nil {
		return err
	}

	// Load the market catalog
	restClient := binance.NewRESTClient(cfg.Binance.REST.SpotBaseURL, cfg.Binance.REST.SwapBaseURL, cfg.Binance.REST.Timeout)
	store := catalog.NewStore()
	loader := &catalog.Loader{
		Client:  restClient,
		Store:   store,
		Timeout: cfg.Binance.REST.Timeout,
		Logger:  logger,
	}
	if err := loader.Load(ctx, opts.MarketType); err != nil {
		return fmt.Errorf("failed to load market catalog: %w", err)
	}

	// Sinks
	eventStore := memorystore.NewEventStore()
	sinks := []market.Sink{eventStore.Add}

	var klineSink *postgres.KlineSink
	if cfg.Postgres.Enabled {
		pg, err := postgres.InitializeAndMigrateKlineRecord(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		defer pg.Close()

		klineSink = postgres.NewKlineSink(pg, cfg.Postgres.BufferSize, logger)
		sinks = append(sinks, klineSink.Add)
	}

	c, err := New(Options{
		MarketType:   opts.MarketType,
		ChannelTypes: opts.ChannelTypes,
		Pairs:        opts.Pairs,
		TradeStream:  opts.TradeStream,
		Endpoint:     cfg.Binance.WS.URL(opts.MarketType),
	}, store.ByType(opts.MarketType), Fanout(sinks...), logger)
	if err != nil {
		return err
	}

	wsClient := binance.NewWSClient(cfg.Binance.WS.HandshakeTimeout, cfg.Binance.WS.MaxReconnectInterval, logger)

	workerCtx, cancel := context.WithCancel(ctx)
	var wg conc.WaitGroup

	if cfg.Crawl.CatalogRefresh {
		refresher := &catalog.MidnightRefresher{Loader: loader, MarketType: opts.MarketType, Pairs: opts.Pairs}
		wg.Go(func() { refresher.Start(workerCtx) })
	}
	if klineSink != nil {
		wg.Go(func() { klineSink.Run(workerCtx) })
	}

	// Periodically print stored event counts for visibility
	wg.Go(func() {
		ticker := time.NewTicker(reportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				logger.Info("current received events",
					zap.Int("count", eventStore.CountAll()),
					zap.Any("by_channel", eventStore.Counts()),
					zap.Uint64("dropped", c.Dispatcher().Dropped()),
				)
			}
		}
	})

	err = c.Run(ctx, wsClient)
	cancel()
	wg.Wait()

	if errors.Is(err, context.Canceled) {
		logger.Info("crawler stopped")
		return nil
	}
	return err
}
