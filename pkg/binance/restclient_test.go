package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketcrawler/pkg/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spotExchangeInfo = `{
	"timezone": "UTC",
	"serverTime": 1700000000000,
	"symbols": [
		{"symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT"},
		{"symbol": "ETHBTC", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "BTC"},
		{"symbol": "LUNAUSDT", "status": "BREAK", "baseAsset": "LUNA", "quoteAsset": "USDT"}
	]
}`

const swapExchangeInfo = `{
	"timezone": "UTC",
	"serverTime": 1700000000000,
	"symbols": [
		{"symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT", "contractType": "PERPETUAL"},
		{"symbol": "BTCUSDT_250328", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT", "contractType": "CURRENT_QUARTER"}
	]
}`

func newExchangeInfoServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(spotExchangeInfo))
	})
	mux.HandleFunc("/fapi/v1/exchangeInfo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(swapExchangeInfo))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// go test -v --run TestGetMarkets
func TestGetMarketsSpot(t *testing.T) {
	srv := newExchangeInfoServer(t)
	client := NewRESTClient(srv.URL, srv.URL, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	markets, err := client.GetMarkets(ctx, market.Spot)
	require.NoError(t, err)
	require.Len(t, markets, 2, "non-trading symbols are skipped")

	assert.Equal(t, market.Market{
		Exchange: ExchangeName,
		Type:     market.Spot,
		Pair:     "BTC_USDT",
		ID:       "BTCUSDT",
		Base:     "BTC",
		Quote:    "USDT",
	}, markets[0])
	assert.Equal(t, "ETH_BTC", markets[1].Pair)
}

func TestGetMarketsSwapPerpetualOnly(t *testing.T) {
	srv := newExchangeInfoServer(t)
	client := NewRESTClient(srv.URL, srv.URL, 5*time.Second)

	markets, err := client.GetMarkets(context.Background(), market.Swap)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "BTCUSDT", markets[0].ID)
	assert.Equal(t, market.Swap, markets[0].Type)
}

func TestGetMarketsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"code":-1003,"msg":"Too many requests"}`))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, srv.URL, 5*time.Second)
	_, err := client.GetMarkets(context.Background(), market.Spot)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-1003")
	assert.Contains(t, err.Error(), "Too many requests")
}

func TestGetMarketsUnknownMarketType(t *testing.T) {
	client := NewRESTClient("", "", time.Second)
	_, err := client.GetMarkets(context.Background(), market.MarketType("Option"))
	assert.ErrorIs(t, err, market.ErrInvalidConfig)
}
