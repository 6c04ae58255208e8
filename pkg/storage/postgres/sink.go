package postgres

import (
	"context"
	"sync/atomic"
	"time"

	"marketcrawler/pkg/market"

	"go.uber.org/zap"
)

const (
	defaultSinkBuffer = 1024
	upsertTimeout     = 2 * time.Second
)

// KlineUpserter persists one candle, e.g. *PostgresClient.
type KlineUpserter interface {
	UpsertKline(ctx context.Context, record *KlineRecord) error
}

// KlineSink queues canonical klines and writes them from a single goroutine,
// so the websocket read loop never waits on the database.
type KlineSink struct {
	db      KlineUpserter
	queue   chan *KlineRecord
	logger  *zap.Logger
	dropped atomic.Uint64
}

// NewKlineSink creates a sink with a queue of bufferSize records. A
// non-positive bufferSize selects 1024.
func NewKlineSink(db KlineUpserter, bufferSize int, logger *zap.Logger) *KlineSink {
	if bufferSize <= 0 {
		bufferSize = defaultSinkBuffer
	}
	return &KlineSink{
		db:     db,
		queue:  make(chan *KlineRecord, bufferSize),
		logger: logger,
	}
}

// Add is a market.Sink. Non-kline events are ignored. When the queue is full
// the kline is dropped with a warning.
func (s *KlineSink) Add(ev market.Event) {
	k, ok := ev.(*market.Kline)
	if !ok {
		return
	}

	select {
	case s.queue <- ToKlineRecord(k):
	default:
		s.dropped.Add(1)
		s.logger.Warn("kline sink queue full, kline dropped",
			zap.String("pair", k.Pair), zap.String("period", k.Period), zap.Int64("start", k.Timestamp))
	}
}

// Dropped returns the number of klines dropped on a full queue.
func (s *KlineSink) Dropped() uint64 {
	return s.dropped.Load()
}

// Run writes queued klines until ctx is done, then flushes what is left.
func (s *KlineSink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			s.flush()
			return
		case rec := <-s.queue:
			s.write(ctx, rec)
		}
	}
}

func (s *KlineSink) flush() {
	for {
		select {
		case rec := <-s.queue:
			s.write(context.Background(), rec)
		default:
			return
		}
	}
}

func (s *KlineSink) write(ctx context.Context, rec *KlineRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), upsertTimeout)
	defer cancel()

	if err := s.db.UpsertKline(ctx, rec); err != nil {
		s.logger.Warn("failed to upsert kline",
			zap.String("pair", rec.Pair), zap.String("period", rec.Period), zap.Time("start", rec.Start), zap.Error(err))
	}
}
