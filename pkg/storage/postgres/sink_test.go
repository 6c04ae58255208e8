package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marketcrawler/pkg/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeUpserter struct {
	mu      sync.Mutex
	records []*KlineRecord
	err     error
}

func (f *fakeUpserter) UpsertKline(ctx context.Context, rec *KlineRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return f.err
}

func (f *fakeUpserter) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func kline(pair string, start int64) *market.Kline {
	return &market.Kline{
		Meta:   market.Meta{Exchange: "Binance", MarketType: market.Spot, Pair: pair, Timestamp: start},
		Period: "1m",
	}
}

func TestKlineSinkIgnoresOtherEvents(t *testing.T) {
	s := NewKlineSink(&fakeUpserter{}, 4, zap.NewNop())
	s.Add(&market.Trade{})
	s.Add(&market.BBO{})
	assert.Empty(t, s.queue)
}

func TestKlineSinkDropsWhenFull(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewKlineSink(&fakeUpserter{}, 2, zap.New(core))

	for i := range 3 {
		s.Add(kline("BTC_USDT", int64(i)))
	}

	assert.Len(t, s.queue, 2)
	assert.Equal(t, uint64(1), s.Dropped())
	assert.Equal(t, 1, logs.FilterMessage("kline sink queue full, kline dropped").Len())
}

func TestKlineSinkRunWritesAndFlushes(t *testing.T) {
	db := &fakeUpserter{}
	s := NewKlineSink(db, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	s.Add(kline("BTC_USDT", 1))
	s.Add(kline("ETH_USDT", 2))
	require.Eventually(t, func() bool { return db.len() == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, "BTC_USDT", db.records[0].Pair)
	assert.Equal(t, "ETH_USDT", db.records[1].Pair)
}

func TestKlineSinkFlushOnStop(t *testing.T) {
	db := &fakeUpserter{}
	s := NewKlineSink(db, 8, zap.NewNop())
	s.Add(kline("BTC_USDT", 1))
	s.Add(kline("BTC_USDT", 2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	assert.Equal(t, 2, db.len())
}

func TestKlineSinkLogsUpsertFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewKlineSink(&fakeUpserter{err: errors.New("db down")}, 8, zap.New(core))
	s.Add(kline("BTC_USDT", 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	assert.Equal(t, 1, logs.FilterMessage("failed to upsert kline").Len())
}
