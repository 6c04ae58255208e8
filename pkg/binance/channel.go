package binance

import (
	"fmt"
	"strings"

	"marketcrawler/pkg/market"
)

const (
	channelSeparator = "@"
	streamSeparator  = "/"

	suffixBookTicker = "bookTicker"
	suffixDepth      = "depth"
	suffixTrade      = "trade"
	suffixAggTrade   = "aggTrade"
	prefixKline      = "kline_"
)

// StreamKind identifies the wire stream behind a channel. Trade and AggTrade
// both back the Trade category but carry different payload shapes.
type StreamKind int

const (
	StreamUnknown StreamKind = iota
	StreamBookTicker
	StreamDepth
	StreamKline
	StreamTrade
	StreamAggTrade
)

func (k StreamKind) String() string {
	switch k {
	case StreamBookTicker:
		return suffixBookTicker
	case StreamDepth:
		return suffixDepth
	case StreamKline:
		return "kline"
	case StreamTrade:
		return suffixTrade
	case StreamAggTrade:
		return suffixAggTrade
	default:
		return "unknown"
	}
}

// ChannelType maps the stream kind to its canonical category. StreamUnknown
// maps to the empty category.
func (k StreamKind) ChannelType() market.ChannelType {
	switch k {
	case StreamBookTicker:
		return market.ChannelBBO
	case StreamDepth:
		return market.ChannelOrderBook
	case StreamKline:
		return market.ChannelKline
	case StreamTrade, StreamAggTrade:
		return market.ChannelTrade
	default:
		return ""
	}
}

// ParseTradeStream parses the configured trade stream name. An empty name
// selects aggTrade.
func ParseTradeStream(name string) (StreamKind, error) {
	switch name {
	case "", suffixAggTrade:
		return StreamAggTrade, nil
	case suffixTrade:
		return StreamTrade, nil
	default:
		return StreamUnknown, fmt.Errorf("%w: unsupported trade stream %q", market.ErrInvalidConfig, name)
	}
}

// Stream is a classified channel string.
type Stream struct {
	Symbol   string // lower-case native symbol as it appears in the channel
	Kind     StreamKind
	Interval KlineInterval // set for StreamKline only
}

// ParseStream classifies a channel string such as "btcusdt@kline_5m".
func ParseStream(channel string) (Stream, error) {
	symbol, suffix, ok := strings.Cut(channel, channelSeparator)
	if !ok || symbol == "" {
		return Stream{}, fmt.Errorf("%w: %q", market.ErrUnknownChannel, channel)
	}
	// "btcusdt@depth@100ms" carries an update speed after a second separator
	suffix, _, _ = strings.Cut(suffix, channelSeparator)

	if interval, ok := strings.CutPrefix(suffix, prefixKline); ok {
		if !KlineInterval(interval).IsValid() {
			return Stream{}, fmt.Errorf("%w: %q", market.ErrUnknownChannel, channel)
		}
		return Stream{Symbol: symbol, Kind: StreamKline, Interval: KlineInterval(interval)}, nil
	}

	var kind StreamKind
	switch suffix {
	case suffixBookTicker:
		kind = StreamBookTicker
	case suffixDepth:
		kind = StreamDepth
	case suffixTrade:
		kind = StreamTrade
	case suffixAggTrade:
		kind = StreamAggTrade
	default:
		return Stream{}, fmt.Errorf("%w: %q", market.ErrUnknownChannel, channel)
	}
	return Stream{Symbol: symbol, Kind: kind}, nil
}

// Matches checks that a payload belongs to the stream it arrived on: same
// symbol and, for klines, same interval. A mismatch is ErrMalformedPayload.
func (s Stream) Matches(p Payload) error {
	if strings.ToLower(p.NativeSymbol()) != s.Symbol {
		return fmt.Errorf("%w: payload symbol %q on %s stream of %q",
			market.ErrMalformedPayload, p.NativeSymbol(), s.Kind, s.Symbol)
	}
	if k, ok := p.(KlineEvent); ok && KlineInterval(k.Kline.Interval) != s.Interval {
		return fmt.Errorf("%w: kline interval %q on %s channel",
			market.ErrMalformedPayload, k.Kline.Interval, s.Interval)
	}
	return nil
}

// ClassifyChannel returns the canonical category of a channel string.
func ClassifyChannel(channel string) (market.ChannelType, error) {
	s, err := ParseStream(channel)
	if err != nil {
		return "", err
	}
	return s.Kind.ChannelType(), nil
}

// Codec builds subscription channel names. It is the inverse of ParseStream.
type Codec struct {
	// TradeStream selects the wire shape backing the Trade category. The zero
	// value selects StreamAggTrade.
	TradeStream StreamKind
}

// BuildChannels returns the channel names for one category of one market.
// Kline fans out to one channel per supported interval.
func (c Codec) BuildChannels(ct market.ChannelType, nativeSymbol string) ([]string, error) {
	if nativeSymbol == "" {
		return nil, fmt.Errorf("%w: empty native symbol", market.ErrInvalidConfig)
	}
	raw := strings.ToLower(nativeSymbol) + channelSeparator

	switch ct {
	case market.ChannelBBO:
		return []string{raw + suffixBookTicker}, nil
	case market.ChannelOrderBook:
		return []string{raw + suffixDepth}, nil
	case market.ChannelKline:
		channels := make([]string, 0, len(klineIntervals))
		for _, interval := range klineIntervals {
			channels = append(channels, raw+prefixKline+string(interval))
		}
		return channels, nil
	case market.ChannelTrade:
		switch c.TradeStream {
		case StreamTrade:
			return []string{raw + suffixTrade}, nil
		case StreamUnknown, StreamAggTrade:
			return []string{raw + suffixAggTrade}, nil
		default:
			return nil, fmt.Errorf("%w: %s cannot back the Trade channel", market.ErrInvalidConfig, c.TradeStream)
		}
	default:
		return nil, fmt.Errorf("%w: channel type %q is not supported for %s yet", market.ErrInvalidConfig, ct, ExchangeName)
	}
}

// SubscriptionURL joins channels into one combined-stream URL.
func SubscriptionURL(endpoint string, channels []string) string {
	return strings.TrimRight(endpoint, "/") + "/stream?streams=" + strings.Join(channels, streamSeparator)
}
