package binance

import (
	"fmt"

	"marketcrawler/pkg/market"
)

// ExchangeName is the exchange name carried by every canonical event and
// expected on every catalog entry.
const ExchangeName = "Binance"

// KlineInterval is the native interval token used in kline channel names
type KlineInterval string

// KlineIntervalMeta holds the canonical period label of a native token
type KlineIntervalMeta struct {
	Period string
}

const (
	Interval1Min   KlineInterval = "1m"
	Interval3Min   KlineInterval = "3m"
	Interval5Min   KlineInterval = "5m"
	Interval15Min  KlineInterval = "15m"
	Interval30Min  KlineInterval = "30m"
	Interval1Hour  KlineInterval = "1h"
	Interval2Hour  KlineInterval = "2h"
	Interval4Hour  KlineInterval = "4h"
	Interval6Hour  KlineInterval = "6h"
	Interval8Hour  KlineInterval = "8h"
	Interval12Hour KlineInterval = "12h"
	Interval1Day   KlineInterval = "1d"
	Interval3Day   KlineInterval = "3d"
	Interval1Week  KlineInterval = "1w"
	Interval1Month KlineInterval = "1M"
)

// klineIntervals lists every subscribable interval in channel order.
var klineIntervals = []KlineInterval{
	Interval1Min, Interval3Min, Interval5Min, Interval15Min, Interval30Min,
	Interval1Hour, Interval2Hour, Interval4Hour, Interval6Hour, Interval8Hour, Interval12Hour,
	Interval1Day, Interval3Day, Interval1Week, Interval1Month,
}

// validKlineIntervals maps the native token to its canonical period label.
// Tokens differ only by case ("1m" vs "1M"), so this must stay a lookup table.
var validKlineIntervals = map[KlineInterval]KlineIntervalMeta{
	Interval1Min:   {Period: "1m"},
	Interval3Min:   {Period: "3m"},
	Interval5Min:   {Period: "5m"},
	Interval15Min:  {Period: "15m"},
	Interval30Min:  {Period: "30m"},
	Interval1Hour:  {Period: "1H"},
	Interval2Hour:  {Period: "2H"},
	Interval4Hour:  {Period: "4H"},
	Interval6Hour:  {Period: "6H"},
	Interval8Hour:  {Period: "8H"},
	Interval12Hour: {Period: "12H"},
	Interval1Day:   {Period: "1D"},
	Interval3Day:   {Period: "3D"},
	Interval1Week:  {Period: "1W"},
	Interval1Month: {Period: "1M"},
}

// IsValid checks if the KlineInterval is a supported interval
func (k KlineInterval) IsValid() bool {
	_, ok := validKlineIntervals[k]
	return ok
}

// KlineIntervals returns the supported intervals in subscription order.
func KlineIntervals() []KlineInterval {
	out := make([]KlineInterval, len(klineIntervals))
	copy(out, klineIntervals)
	return out
}

// ParseKlineInterval looks up a native interval token.
func ParseKlineInterval(s string) (KlineIntervalMeta, error) {
	meta, ok := validKlineIntervals[KlineInterval(s)]
	if !ok {
		return KlineIntervalMeta{}, fmt.Errorf("%w: invalid kline interval %q", market.ErrMalformedPayload, s)
	}
	return meta, nil
}

var websocketEndpoints = map[market.MarketType]string{
	market.Spot: "wss://stream.binance.com:9443",
	market.Swap: "wss://fstream.binance.com",
}

var restEndpoints = map[market.MarketType]string{
	market.Spot: "https://api.binance.com",
	market.Swap: "https://fapi.binance.com",
}

// WebsocketEndpoint returns the default combined-stream base URL for a market type.
func WebsocketEndpoint(mt market.MarketType) (string, error) {
	url, ok := websocketEndpoints[mt]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s market", market.ErrInvalidConfig, ExchangeName, mt)
	}
	return url, nil
}

// RESTEndpoint returns the default REST base URL for a market type.
func RESTEndpoint(mt market.MarketType) (string, error) {
	url, ok := restEndpoints[mt]
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s market", market.ErrInvalidConfig, ExchangeName, mt)
	}
	return url, nil
}
