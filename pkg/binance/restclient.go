package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"marketcrawler/pkg/market"
)

const (
	statusTrading     = "TRADING"
	contractPerpetual = "PERPETUAL"
)

var exchangeInfoPaths = map[market.MarketType]string{
	market.Spot: "/api/v3/exchangeInfo",
	market.Swap: "/fapi/v1/exchangeInfo",
}

type RESTClient struct {
	baseURLs   map[market.MarketType]string
	httpClient *http.Client
}

// NewRESTClient creates a client for the catalog endpoints. Empty base URLs
// fall back to the production endpoints.
func NewRESTClient(spotBaseURL, swapBaseURL string, timeout time.Duration) *RESTClient {
	baseURLs := make(map[market.MarketType]string, len(restEndpoints))
	for mt, url := range restEndpoints {
		baseURLs[mt] = url
	}
	if spotBaseURL != "" {
		baseURLs[market.Spot] = spotBaseURL
	}
	if swapBaseURL != "" {
		baseURLs[market.Swap] = swapBaseURL
	}

	return &RESTClient{
		baseURLs:   baseURLs,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetMarkets fetches the tradable markets of one market type. Swap keeps
// perpetual contracts only.
func (c *RESTClient) GetMarkets(ctx context.Context, marketType market.MarketType) ([]market.Market, error) {
	path, ok := exchangeInfoPaths[marketType]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s market", market.ErrInvalidConfig, ExchangeName, marketType)
	}
	endpoint := c.baseURLs[marketType] + path

	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var apiErr ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Msg != "" {
			return nil, fmt.Errorf("binance error %d: %s", apiErr.Code, apiErr.Msg)
		}
		return nil, fmt.Errorf("binance error: status %d: %s", resp.StatusCode, body)
	}

	var info ExchangeInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	markets := make([]market.Market, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != statusTrading {
			continue
		}
		if marketType == market.Swap && s.ContractType != contractPerpetual {
			continue
		}
		markets = append(markets, market.Market{
			Exchange: ExchangeName,
			Type:     marketType,
			Pair:     market.CanonicalPair(s.BaseAsset, s.QuoteAsset),
			ID:       s.Symbol,
			Base:     s.BaseAsset,
			Quote:    s.QuoteAsset,
		})
	}

	return markets, nil
}
