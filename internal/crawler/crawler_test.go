package crawler

import (
	"context"
	"strings"
	"testing"

	"marketcrawler/pkg/binance"
	"marketcrawler/pkg/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeTransport replays frames to the handler and records the URL.
type fakeTransport struct {
	url    string
	frames []string
}

func (f *fakeTransport) Listen(ctx context.Context, url string, handle func([]byte)) error {
	f.url = url
	for _, fr := range f.frames {
		handle([]byte(fr))
	}
	return nil
}

func spotOptions(cts ...market.ChannelType) Options {
	return Options{
		MarketType:   market.Spot,
		ChannelTypes: cts,
		Pairs:        []string{"BTC_USDT", "ETH_USDT"},
	}
}

// go test -v --run TestNew
func TestNewBuildsChannels(t *testing.T) {
	c, err := New(spotOptions(market.ChannelBBO, market.ChannelTrade), testMarkets, nil, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"btcusdt@bookTicker", "ethusdt@bookTicker",
		"btcusdt@aggTrade", "ethusdt@aggTrade",
	}, c.Channels())
	assert.Equal(t,
		"wss://stream.binance.com:9443/stream?streams=btcusdt@bookTicker/ethusdt@bookTicker/btcusdt@aggTrade/ethusdt@aggTrade",
		c.SubscriptionURL())
}

func TestNewKlineFanOut(t *testing.T) {
	c, err := New(spotOptions(market.ChannelKline, market.ChannelBBO), testMarkets, nil, zap.NewNop())
	require.NoError(t, err)

	intervals := len(binance.KlineIntervals())
	assert.Len(t, c.Channels(), 2*intervals+2)
}

func TestNewEndpointOverride(t *testing.T) {
	opts := spotOptions(market.ChannelOrderBook, market.ChannelTrade)
	opts.Endpoint = "ws://localhost:9000"
	opts.TradeStream = binance.StreamTrade

	c, err := New(opts, testMarkets, nil, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.SubscriptionURL(), "ws://localhost:9000/stream?streams="))
	assert.Contains(t, c.Channels(), "btcusdt@trade")
}

func TestNewDedupesChannelTypes(t *testing.T) {
	c, err := New(spotOptions(market.ChannelBBO, market.ChannelBBO), testMarkets, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, c.Channels(), 2)
}

func TestNewInvalidConfig(t *testing.T) {
	tests := map[string]Options{
		"unsupported market type": {MarketType: "Option", ChannelTypes: []market.ChannelType{market.ChannelBBO}, Pairs: []string{"BTC_USDT"}},
		"no channel types":        {MarketType: market.Spot, Pairs: []string{"BTC_USDT"}},
		"no pairs":                {MarketType: market.Spot, ChannelTypes: []market.ChannelType{market.ChannelBBO}},
		"unknown pair":            {MarketType: market.Spot, ChannelTypes: []market.ChannelType{market.ChannelBBO}, Pairs: []string{"DOGE_USDT"}},
		"pair of other market":    {MarketType: market.Swap, ChannelTypes: []market.ChannelType{market.ChannelBBO}, Pairs: []string{"BTC_USDT"}},
		"unsupported channel":     {MarketType: market.Spot, ChannelTypes: []market.ChannelType{"Ticker"}, Pairs: []string{"BTC_USDT"}},
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(opts, testMarkets, nil, zap.NewNop())
			assert.ErrorIs(t, err, market.ErrInvalidConfig)
		})
	}
}

func TestRunDispatchesAndLogsMalformed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &recorder{}

	c, err := New(spotOptions(market.ChannelTrade), testMarkets, rec.sink, zap.New(core))
	require.NoError(t, err)

	bad := `{"stream":"btcusdt@aggTrade","data":{"e":"aggTrade","s":"BTCUSDT","a":1,"p":"x","q":"1","T":1}}`
	transport := &fakeTransport{frames: []string{
		`{"stream":"btcusdt@aggTrade","data":{"e":"aggTrade","s":"BTCUSDT","a":1,"p":"1","q":"1","T":1}}`,
		bad,
		`{"stream":"btcusdt@miniTicker","data":{}}`,
		`{"stream":"ethusdt@aggTrade","data":{"e":"aggTrade","s":"ETHUSDT","a":2,"p":"2","q":"1","T":2}}`,
	}}

	require.NoError(t, c.Run(context.Background(), transport))
	assert.Equal(t, c.SubscriptionURL(), transport.url)

	// a bad frame does not stop the stream
	require.Len(t, rec.events, 2)
	assert.Equal(t, "BTC_USDT", rec.events[0].Header().Pair)
	assert.Equal(t, "ETH_USDT", rec.events[1].Header().Pair)
	assert.Equal(t, uint64(1), c.Dispatcher().Dropped())

	malformed := logs.FilterMessage("malformed message").All()
	require.Len(t, malformed, 1)
	assert.Equal(t, zapcore.ErrorLevel, malformed[0].Level)
	fields := malformed[0].ContextMap()
	assert.Equal(t, "btcusdt@aggTrade", fields["channel"])
	assert.Equal(t, bad, fields["raw"])
	assert.Equal(t, "Binance", fields["exchange"])
}

func TestNilSinkLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := New(spotOptions(market.ChannelTrade), testMarkets, nil, zap.New(core))
	require.NoError(t, err)

	c.Handle([]byte(`{"stream":"btcusdt@aggTrade","data":{"e":"aggTrade","s":"BTCUSDT","a":1,"p":"1","q":"1","T":1}}`))
	assert.Equal(t, 1, logs.FilterMessage("event").Len())
}

func TestFanout(t *testing.T) {
	var a, b []market.Event
	sink := Fanout(
		func(ev market.Event) { a = append(a, ev) },
		nil,
		func(ev market.Event) { b = append(b, ev) },
	)

	ev := &market.Trade{TradeID: "1"}
	sink(ev)

	assert.Equal(t, []market.Event{ev}, a)
	assert.Equal(t, []market.Event{ev}, b)
}
