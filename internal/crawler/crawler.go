package crawler

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"marketcrawler/internal/symbol"
	"marketcrawler/pkg/binance"
	"marketcrawler/pkg/market"

	"go.uber.org/zap"
)

// Transport delivers raw frames of one subscription in order.
type Transport interface {
	Listen(ctx context.Context, url string, handle func(frame []byte)) error
}

// Options selects what to crawl.
type Options struct {
	MarketType   market.MarketType
	ChannelTypes []market.ChannelType
	Pairs        []string

	// TradeStream selects trade or aggTrade for the Trade category.
	TradeStream binance.StreamKind

	// Endpoint overrides the default websocket endpoint of MarketType.
	Endpoint string
}

// Crawler holds everything built before the first frame arrives: the symbol
// index, the channel list and the dispatcher.
type Crawler struct {
	index      *symbol.Index
	channels   []string
	url        string
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// New validates opts against the market catalog and prepares the
// subscription. All failures wrap market.ErrInvalidConfig. A nil sink logs
// every event at debug level.
func New(opts Options, markets []market.Market, sink market.Sink, logger *zap.Logger) (*Crawler, error) {
	if opts.MarketType != market.Spot && opts.MarketType != market.Swap {
		return nil, fmt.Errorf("%w: %s has only Spot and Swap markets, got %q",
			market.ErrInvalidConfig, binance.ExchangeName, opts.MarketType)
	}
	if len(opts.ChannelTypes) == 0 {
		return nil, fmt.Errorf("%w: no channel types requested", market.ErrInvalidConfig)
	}

	logger = logger.With(zap.String("exchange", binance.ExchangeName), zap.String("market_type", string(opts.MarketType)))

	index, err := symbol.NewIndex(binance.ExchangeName, opts.MarketType, markets, opts.Pairs)
	if err != nil {
		return nil, err
	}

	channelTypes := dedupe(opts.ChannelTypes)
	codec := binance.Codec{TradeStream: opts.TradeStream}
	var channels []string
	for _, ct := range channelTypes {
		for _, pair := range index.Pairs() {
			m, _ := index.Market(pair)
			chs, err := codec.BuildChannels(ct, m.ID)
			if err != nil {
				return nil, err
			}
			channels = append(channels, chs...)
		}
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: no channels to subscribe", market.ErrInvalidConfig)
	}
	if !slices.Contains(channelTypes, market.ChannelKline) && len(channels) != len(channelTypes)*len(index.Pairs()) {
		return nil, fmt.Errorf("%w: built %d channels for %d channel types and %d pairs",
			market.ErrInvalidConfig, len(channels), len(channelTypes), len(index.Pairs()))
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		if endpoint, err = binance.WebsocketEndpoint(opts.MarketType); err != nil {
			return nil, err
		}
	}

	return &Crawler{
		index:      index,
		channels:   channels,
		url:        binance.SubscriptionURL(endpoint, channels),
		dispatcher: NewDispatcher(index, sink, logger),
		logger:     logger,
	}, nil
}

// Channels returns the subscribed channel names.
func (c *Crawler) Channels() []string {
	return slices.Clone(c.channels)
}

// SubscriptionURL returns the combined-stream URL carrying every channel.
func (c *Crawler) SubscriptionURL() string {
	return c.url
}

func (c *Crawler) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// Handle dispatches one frame. A structural violation is fatal to that frame
// only: it is logged with its channel and raw payload and processing goes on.
func (c *Crawler) Handle(frame []byte) {
	err := c.dispatcher.Dispatch(frame)
	if err == nil {
		return
	}

	var perr *market.PayloadError
	if errors.As(err, &perr) {
		c.logger.Error("malformed message",
			zap.String("channel", perr.Channel),
			zap.ByteString("raw", perr.Raw),
			zap.Error(perr.Err),
		)
		return
	}
	c.logger.Error("failed to dispatch message", zap.ByteString("raw", frame), zap.Error(err))
}

// Run subscribes through t and dispatches frames until ctx is done.
func (c *Crawler) Run(ctx context.Context, t Transport) error {
	c.logger.Info("subscribing", zap.Int("channels", len(c.channels)), zap.Strings("pairs", c.index.Pairs()))
	return t.Listen(ctx, c.url, c.Handle)
}

// Fanout returns a sink calling every non-nil sink in order.
func Fanout(sinks ...market.Sink) market.Sink {
	active := make([]market.Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	return func(ev market.Event) {
		for _, s := range active {
			s(ev)
		}
	}
}

func logSink(logger *zap.Logger) market.Sink {
	return func(ev market.Event) {
		h := ev.Header()
		logger.Debug("event",
			zap.String("channel", h.Channel),
			zap.String("channel_type", string(h.ChannelType)),
			zap.String("pair", h.Pair),
			zap.Int64("timestamp", h.Timestamp),
			zap.Any("event", ev),
		)
	}
}

func dedupe[T comparable](in []T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
