package market

import "encoding/json"

// Event is a normalized market-data message. It is implemented by *BBO,
// *OrderBook, *Kline and *Trade only.
type Event interface {
	Header() *Meta
	event()
}

// Meta holds the fields shared by every canonical event.
type Meta struct {
	Exchange    string          `json:"exchange"`
	MarketType  MarketType      `json:"marketType"`
	Pair        string          `json:"pair"`
	RawPair     string          `json:"rawPair"`
	Channel     string          `json:"channel"`
	ChannelType ChannelType     `json:"channelType"`
	Timestamp   int64           `json:"timestamp"` // unix milliseconds, see each event type for its source
	Raw         json.RawMessage `json:"raw"`
}

func (m *Meta) Header() *Meta { return m }

// BBO is the best bid and offer of one pair.
//
// Timestamp is ingestion time, not exchange time: the bookTicker stream carries
// no event time. Do not compare it against other categories' timestamps.
type BBO struct {
	Meta
	BidPrice    float64 `json:"bidPrice"`
	BidQuantity float64 `json:"bidQuantity"`
	AskPrice    float64 `json:"askPrice"`
	AskQuantity float64 `json:"askQuantity"`
}

// OrderItem is one price level of an order book update.
type OrderItem struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost"` // Price * Quantity
}

// OrderBook is an order book update. Timestamp is the exchange event time.
type OrderBook struct {
	Meta
	Asks []OrderItem `json:"asks"`
	Bids []OrderItem `json:"bids"`
	Full bool        `json:"full"` // false for incremental updates
}

// Kline is a candlestick. Timestamp is the candle start time.
type Kline struct {
	Meta
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	QuoteVolume float64 `json:"quoteVolume"`
	Period      string  `json:"period"`
}

// Trade is a single (or aggregated) trade. Timestamp is the trade time.
type Trade struct {
	Meta
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Side     bool    `json:"side"`     // true when the taker is the buyer
	TradeID  string  `json:"trade_id"` // decimal string, ids may exceed 2^53
}

func (*BBO) event()       {}
func (*OrderBook) event() {}
func (*Kline) event()     {}
func (*Trade) event()     {}

// Sink receives normalized events. It is invoked synchronously on the
// goroutine that delivered the message.
type Sink func(Event)
