package binance

// ErrorResponse is the error body returned by Binance's REST API.
type ErrorResponse struct {
	Code int    `json:"code"` // negative exchange error code, e.g. -1121
	Msg  string `json:"msg"`  // human-readable message
}

// ExchangeInfoResponse is the subset of GET /api/v3/exchangeInfo (spot) and
// GET /fapi/v1/exchangeInfo (USDⓈ-M futures) used to build the market catalog.
type ExchangeInfoResponse struct {
	Timezone   string         `json:"timezone"`
	ServerTime int64          `json:"serverTime"` // milliseconds since epoch
	Symbols    []SymbolDetail `json:"symbols"`
}

type SymbolDetail struct {
	Symbol       string `json:"symbol"`       // e.g., "BTCUSDT"
	Status       string `json:"status"`       // e.g., "TRADING", "BREAK"
	BaseAsset    string `json:"baseAsset"`    // e.g., "BTC"
	QuoteAsset   string `json:"quoteAsset"`   // e.g., "USDT"
	ContractType string `json:"contractType"` // futures only, e.g., "PERPETUAL"
}
