package market

import (
	"fmt"
	"strings"
)

// MarketType classifies an instrument, e.g. "Spot" or "Swap" (perpetual swap).
type MarketType string

const (
	Spot MarketType = "Spot"
	Swap MarketType = "Swap"
)

// ParseMarketType parses a market type name case-insensitively.
func ParseMarketType(s string) (MarketType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spot":
		return Spot, nil
	case "swap":
		return Swap, nil
	default:
		return "", fmt.Errorf("%w: unsupported market type %q", ErrInvalidConfig, s)
	}
}

// ChannelType is the exchange-agnostic event category.
type ChannelType string

const (
	ChannelBBO       ChannelType = "BBO"
	ChannelOrderBook ChannelType = "OrderBook"
	ChannelKline     ChannelType = "Kline"
	ChannelTrade     ChannelType = "Trade"
)

var channelTypes = map[string]ChannelType{
	"bbo":       ChannelBBO,
	"orderbook": ChannelOrderBook,
	"kline":     ChannelKline,
	"trade":     ChannelTrade,
}

// ParseChannelType parses a category name case-insensitively.
func ParseChannelType(s string) (ChannelType, error) {
	ct, ok := channelTypes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unsupported channel type %q", ErrInvalidConfig, s)
	}
	return ct, nil
}

// Market describes one tradable instrument on one exchange, as supplied by the
// market catalog.
type Market struct {
	Exchange string     `json:"exchange"`
	Type     MarketType `json:"type"`
	Pair     string     `json:"pair"` // canonical pair, e.g. "BTC_USDT"
	ID       string     `json:"id"`   // exchange-native symbol, e.g. "BTCUSDT"
	Base     string     `json:"base"`
	Quote    string     `json:"quote"`
}

// CanonicalPair joins base and quote assets into the canonical pair form.
func CanonicalPair(base, quote string) string {
	return strings.ToUpper(base) + "_" + strings.ToUpper(quote)
}
