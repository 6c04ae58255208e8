package catalog

import (
	"context"
	"fmt"
	"time"

	"marketcrawler/pkg/market"

	"go.uber.org/zap"
)

// MarketFetcher fetches the markets of one market type, e.g. *binance.RESTClient.
type MarketFetcher interface {
	GetMarkets(ctx context.Context, marketType market.MarketType) ([]market.Market, error)
}

type Loader struct {
	Client  MarketFetcher
	Store   *Store
	Timeout time.Duration
	Logger  *zap.Logger
}

// Load fetches the markets of marketType into the store.
// The request is bounded by Timeout when it is positive.
func (l *Loader) Load(ctx context.Context, marketType market.MarketType) error {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	markets, err := l.Client.GetMarkets(ctx, marketType)
	if err != nil {
		l.Logger.Error("failed to load markets", zap.String("market_type", string(marketType)), zap.Error(err))
		return fmt.Errorf("load %s markets: %w", marketType, err)
	}
	if len(markets) == 0 {
		return fmt.Errorf("load %s markets: empty catalog", marketType)
	}

	l.Store.Replace(marketType, markets)
	l.Logger.Info("loaded markets", zap.String("market_type", string(marketType)), zap.Int("count", len(markets)))
	return nil
}
