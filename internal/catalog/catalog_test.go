package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketcrawler/pkg/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeFetcher struct {
	markets map[market.MarketType][]market.Market
	err     error
	calls   int
}

func (f *fakeFetcher) GetMarkets(ctx context.Context, mt market.MarketType) ([]market.Market, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.markets[mt], nil
}

var (
	btcSpot = market.Market{Exchange: "Binance", Type: market.Spot, Pair: "BTC_USDT", ID: "BTCUSDT"}
	ethSpot = market.Market{Exchange: "Binance", Type: market.Spot, Pair: "ETH_USDT", ID: "ETHUSDT"}
	btcSwap = market.Market{Exchange: "Binance", Type: market.Swap, Pair: "BTC_USDT", ID: "BTCUSDT"}
)

func TestStore(t *testing.T) {
	s := NewStore()
	s.Replace(market.Spot, []market.Market{btcSpot, ethSpot})
	s.Replace(market.Swap, []market.Market{btcSwap})

	assert.Equal(t, []market.Market{btcSpot, ethSpot}, s.ByType(market.Spot))
	assert.Len(t, s.All(), 3)
	assert.Empty(t, s.ByType(market.MarketType("Option")))

	got := s.ByType(market.Spot)
	got[0].Pair = "changed"
	assert.Equal(t, "BTC_USDT", s.ByType(market.Spot)[0].Pair)

	assert.Equal(t, []string{"SOL_USDT"}, s.Missing(market.Spot, []string{"BTC_USDT", "SOL_USDT"}))
	assert.Empty(t, s.Missing(market.Swap, []string{"BTC_USDT"}))
}

// go test -v --run TestLoader
func TestLoaderLoad(t *testing.T) {
	fetcher := &fakeFetcher{markets: map[market.MarketType][]market.Market{
		market.Spot: {btcSpot, ethSpot},
	}}
	l := &Loader{Client: fetcher, Store: NewStore(), Timeout: time.Second, Logger: zap.NewNop()}

	require.NoError(t, l.Load(context.Background(), market.Spot))
	assert.Len(t, l.Store.ByType(market.Spot), 2)
}

func TestLoaderEmptyCatalog(t *testing.T) {
	l := &Loader{Client: &fakeFetcher{}, Store: NewStore(), Logger: zap.NewNop()}
	assert.Error(t, l.Load(context.Background(), market.Swap))
}

func TestLoaderFetchError(t *testing.T) {
	boom := errors.New("boom")
	l := &Loader{Client: &fakeFetcher{err: boom}, Store: NewStore(), Logger: zap.NewNop()}
	assert.ErrorIs(t, l.Load(context.Background(), market.Spot), boom)
}

func TestRefresherWarnsOnMissingPairs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fetcher := &fakeFetcher{markets: map[market.MarketType][]market.Market{
		market.Spot: {btcSpot},
	}}
	r := &MidnightRefresher{
		Loader:     &Loader{Client: fetcher, Store: NewStore(), Logger: zap.New(core)},
		MarketType: market.Spot,
		Pairs:      []string{"BTC_USDT", "ETH_USDT"},
	}

	r.runOnce(context.Background())

	entries := logs.FilterMessage("subscribed pairs no longer listed in catalog").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestRefresherKeepsSnapshotOnFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := NewStore()
	store.Replace(market.Spot, []market.Market{btcSpot})
	r := &MidnightRefresher{
		Loader:     &Loader{Client: &fakeFetcher{err: errors.New("down")}, Store: store, Logger: zap.New(core)},
		MarketType: market.Spot,
	}

	r.runOnce(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("catalog refresh failed, keeping previous snapshot").Len())
	assert.Equal(t, []market.Market{btcSpot}, store.ByType(market.Spot))
}

func TestRefresherStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &MidnightRefresher{Loader: &Loader{Client: &fakeFetcher{}, Store: NewStore(), Logger: zap.NewNop()}}

	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop")
	}
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), nextMidnight(now))

	midnight := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), nextMidnight(midnight))

	seoul := time.FixedZone("KST", 9*60*60)
	local := time.Date(2024, 3, 11, 8, 0, 0, 0, seoul) // 23:00 UTC on the 10th
	assert.True(t, nextMidnight(local).Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
}
