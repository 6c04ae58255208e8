package binance

import (
	"fmt"

	json "github.com/goccy/go-json"

	"marketcrawler/pkg/market"
)

// Envelope is a combined-stream frame: {"stream":"btcusdt@depth","data":{...}}
type Envelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// DecodeEnvelope decodes a combined-stream frame. A frame without a stream name
// (e.g. a control response) is reported as ErrUnknownChannel.
func DecodeEnvelope(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: decode envelope: %v", market.ErrMalformedPayload, err)
	}
	if env.Stream == "" {
		return Envelope{}, fmt.Errorf("%w: frame has no stream name", market.ErrUnknownChannel)
	}
	if len(env.Data) == 0 {
		return Envelope{}, fmt.Errorf("%w: stream %s has no data", market.ErrMalformedPayload, env.Stream)
	}
	return env, nil
}

// Payload is a decoded wire message.
type Payload interface {
	NativeSymbol() string
}

// Unmarshal decodes a stream payload, reporting failures as ErrMalformedPayload.
func Unmarshal[P Payload](data []byte) (P, error) {
	var p P
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: decode %T: %v", market.ErrMalformedPayload, p, err)
	}
	return p, nil
}

// BookTicker is the <symbol>@bookTicker payload.
type BookTicker struct {
	UpdateID int64  `json:"u"`
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

// DepthUpdate is the <symbol>@depth payload.
type DepthUpdate struct {
	EventType     string     `json:"e"`
	EventTime     int64      `json:"E"`
	Symbol        string     `json:"s"`
	FirstUpdateID int64      `json:"U"`
	FinalUpdateID int64      `json:"u"`
	Bids          [][]string `json:"b"`
	Asks          [][]string `json:"a"`
}

// KlineEvent is the <symbol>@kline_<interval> payload.
type KlineEvent struct {
	EventType string    `json:"e"`
	EventTime int64     `json:"E"`
	Symbol    string    `json:"s"`
	Kline     KlineData `json:"k"`
}

type KlineData struct {
	StartTime           int64  `json:"t"`
	CloseTime           int64  `json:"T"`
	Symbol              string `json:"s"`
	Interval            string `json:"i"`
	FirstTradeID        int64  `json:"f"`
	LastTradeID         int64  `json:"L"`
	Open                string `json:"o"`
	Close               string `json:"c"`
	High                string `json:"h"`
	Low                 string `json:"l"`
	Volume              string `json:"v"`
	TradeCount          int64  `json:"n"`
	IsClosed            bool   `json:"x"`
	QuoteVolume         string `json:"q"`
	TakerBuyBaseVolume  string `json:"V"`
	TakerBuyQuoteVolume string `json:"Q"`
}

// RawTrade is the <symbol>@trade payload.
type RawTrade struct {
	EventType     string `json:"e"`
	EventTime     int64  `json:"E"`
	Symbol        string `json:"s"`
	TradeID       uint64 `json:"t"`
	Price         string `json:"p"`
	Quantity      string `json:"q"`
	BuyerOrderID  int64  `json:"b"`
	SellerOrderID int64  `json:"a"`
	TradeTime     int64  `json:"T"`
	BuyerIsMaker  bool   `json:"m"`
	Ignore        bool   `json:"M"`
}

// AggTrade is the <symbol>@aggTrade payload.
type AggTrade struct {
	EventType    string `json:"e"`
	EventTime    int64  `json:"E"`
	Symbol       string `json:"s"`
	AggTradeID   uint64 `json:"a"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	FirstTradeID int64  `json:"f"`
	LastTradeID  int64  `json:"l"`
	TradeTime    int64  `json:"T"`
	BuyerIsMaker bool   `json:"m"`
	Ignore       bool   `json:"M"`
}

func (p BookTicker) NativeSymbol() string  { return p.Symbol }
func (p DepthUpdate) NativeSymbol() string { return p.Symbol }
func (p KlineEvent) NativeSymbol() string  { return p.Symbol }
func (p RawTrade) NativeSymbol() string    { return p.Symbol }
func (p AggTrade) NativeSymbol() string    { return p.Symbol }
