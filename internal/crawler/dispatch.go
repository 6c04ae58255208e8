package crawler

import (
	"errors"
	"sync/atomic"
	"time"

	"marketcrawler/internal/symbol"
	"marketcrawler/pkg/binance"
	"marketcrawler/pkg/market"

	"go.uber.org/zap"
)

// Dispatcher turns combined-stream frames into canonical events. It keeps no
// per-message state, so one Dispatcher may serve several connections.
type Dispatcher struct {
	marketType market.MarketType
	index      *symbol.Index
	sink       market.Sink
	logger     *zap.Logger
	now        func() time.Time

	dropped atomic.Uint64
}

// NewDispatcher creates a dispatcher. A nil sink logs every event at debug level.
func NewDispatcher(index *symbol.Index, sink market.Sink, logger *zap.Logger) *Dispatcher {
	if sink == nil {
		sink = logSink(logger)
	}
	return &Dispatcher{
		marketType: index.MarketType(),
		index:      index,
		sink:       sink,
		logger:     logger,
		now:        time.Now,
	}
}

// Dispatch normalizes one frame and invokes the sink with the result.
//
// Frames on unrecognized channels are logged, counted and dropped with a nil
// error. Structural violations are returned as *market.PayloadError and the
// sink is not called.
func (d *Dispatcher) Dispatch(frame []byte) error {
	receivedAt := d.now().UnixMilli()

	env, err := binance.DecodeEnvelope(frame)
	if err != nil {
		if errors.Is(err, market.ErrUnknownChannel) {
			d.drop("", frame, err)
			return nil
		}
		return &market.PayloadError{Raw: frame, Err: err}
	}

	stream, err := binance.ParseStream(env.Stream)
	if err != nil {
		d.drop(env.Stream, frame, err)
		return nil
	}

	meta := market.Meta{
		Exchange:   binance.ExchangeName,
		MarketType: d.marketType,
		Channel:    env.Stream,
		Timestamp:  receivedAt,
		Raw:        frame,
	}

	var ev market.Event
	switch stream.Kind {
	case binance.StreamBookTicker:
		ev, err = normalize(d, stream, env.Data, meta, binance.NormalizeBBO)
	case binance.StreamDepth:
		ev, err = normalize(d, stream, env.Data, meta, binance.NormalizeOrderBook)
	case binance.StreamKline:
		ev, err = normalize(d, stream, env.Data, meta, binance.NormalizeKline)
	case binance.StreamTrade:
		ev, err = normalize(d, stream, env.Data, meta, binance.NormalizeTrade[binance.RawTrade])
	case binance.StreamAggTrade:
		ev, err = normalize(d, stream, env.Data, meta, binance.NormalizeTrade[binance.AggTrade])
	default:
		d.drop(env.Stream, frame, market.ErrUnknownChannel)
		return nil
	}
	if err != nil {
		return &market.PayloadError{Channel: env.Stream, Raw: frame, Err: err}
	}

	d.sink(ev)
	return nil
}

// Dropped returns the number of frames dropped on unrecognized channels.
func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

func (d *Dispatcher) drop(channel string, frame []byte, err error) {
	d.dropped.Add(1)
	d.logger.Warn("unrecognized channel, message dropped",
		zap.String("channel", channel),
		zap.ByteString("raw", frame),
		zap.Error(err),
	)
}

// normalize decodes the payload, checks it against its stream, resolves its
// symbol and applies fn.
func normalize[P binance.Payload, E market.Event](d *Dispatcher, stream binance.Stream, data []byte, meta market.Meta,
	fn func(P, market.Meta) (E, error)) (market.Event, error) {
	p, err := binance.Unmarshal[P](data)
	if err != nil {
		return nil, err
	}
	if err := stream.Matches(p); err != nil {
		return nil, err
	}
	m, err := d.index.Resolve(p.NativeSymbol())
	if err != nil {
		return nil, err
	}
	meta.Pair = m.Pair
	meta.RawPair = p.NativeSymbol()

	ev, err := fn(p, meta)
	if err != nil {
		return nil, err
	}
	return ev, nil
}
