package catalog

import (
	"context"
	"time"

	"marketcrawler/pkg/market"

	"go.uber.org/zap"
)

// MidnightRefresher reloads the catalog at every UTC midnight. It only updates
// the Store; a running crawl keeps the index it was built with and is warned
// when one of its pairs disappears.
type MidnightRefresher struct {
	Loader     *Loader
	MarketType market.MarketType
	Pairs      []string
}

// Start blocks until ctx is done.
func (m *MidnightRefresher) Start(ctx context.Context) {
	for {
		wait := time.Until(nextMidnight(time.Now()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		m.runOnce(ctx)
	}
}

func (m *MidnightRefresher) runOnce(ctx context.Context) {
	if err := m.Loader.Load(ctx, m.MarketType); err != nil {
		m.Loader.Logger.Warn("catalog refresh failed, keeping previous snapshot", zap.Error(err))
		return
	}
	if missing := m.Loader.Store.Missing(m.MarketType, m.Pairs); len(missing) > 0 {
		m.Loader.Logger.Warn("subscribed pairs no longer listed in catalog",
			zap.String("market_type", string(m.MarketType)), zap.Strings("pairs", missing))
	}
}

// nextMidnight returns the first UTC midnight strictly after now.
func nextMidnight(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}
