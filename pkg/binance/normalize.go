package binance

import (
	"fmt"
	"math"
	"strconv"

	"marketcrawler/pkg/market"
)

const (
	eventDepthUpdate = "depthUpdate"
	eventKline       = "kline"
	eventTrade       = "trade"
	eventAggTrade    = "aggTrade"
)

// NormalizeBBO converts a bookTicker payload. meta.Timestamp must already hold
// the ingestion time and is kept as is, since the payload has no event time.
func NormalizeBBO(p BookTicker, meta market.Meta) (*market.BBO, error) {
	bidPrice, err := parseFloat("b", p.BidPrice)
	if err != nil {
		return nil, err
	}
	bidQty, err := parseFloat("B", p.BidQty)
	if err != nil {
		return nil, err
	}
	askPrice, err := parseFloat("a", p.AskPrice)
	if err != nil {
		return nil, err
	}
	askQty, err := parseFloat("A", p.AskQty)
	if err != nil {
		return nil, err
	}

	meta.ChannelType = market.ChannelBBO
	return &market.BBO{
		Meta:        meta,
		BidPrice:    bidPrice,
		BidQuantity: bidQty,
		AskPrice:    askPrice,
		AskQuantity: askQty,
	}, nil
}

// NormalizeOrderBook converts a depthUpdate payload into an incremental update
// stamped with the exchange event time.
func NormalizeOrderBook(p DepthUpdate, meta market.Meta) (*market.OrderBook, error) {
	if p.EventType != eventDepthUpdate {
		return nil, fmt.Errorf("%w: event type %q, want %q", market.ErrMalformedPayload, p.EventType, eventDepthUpdate)
	}
	asks, err := parseOrderItems("a", p.Asks)
	if err != nil {
		return nil, err
	}
	bids, err := parseOrderItems("b", p.Bids)
	if err != nil {
		return nil, err
	}

	meta.ChannelType = market.ChannelOrderBook
	meta.Timestamp = p.EventTime
	return &market.OrderBook{
		Meta: meta,
		Asks: asks,
		Bids: bids,
		Full: false,
	}, nil
}

// NormalizeKline converts a kline payload. The timestamp is the candle start
// time, not the event time.
func NormalizeKline(p KlineEvent, meta market.Meta) (*market.Kline, error) {
	if p.EventType != eventKline {
		return nil, fmt.Errorf("%w: event type %q, want %q", market.ErrMalformedPayload, p.EventType, eventKline)
	}
	interval, err := ParseKlineInterval(p.Kline.Interval)
	if err != nil {
		return nil, err
	}

	k := p.Kline
	open, err := parseFloat("k.o", k.Open)
	if err != nil {
		return nil, err
	}
	high, err := parseFloat("k.h", k.High)
	if err != nil {
		return nil, err
	}
	low, err := parseFloat("k.l", k.Low)
	if err != nil {
		return nil, err
	}
	closePrice, err := parseFloat("k.c", k.Close)
	if err != nil {
		return nil, err
	}
	volume, err := parseFloat("k.v", k.Volume)
	if err != nil {
		return nil, err
	}
	quoteVolume, err := parseFloat("k.q", k.QuoteVolume)
	if err != nil {
		return nil, err
	}

	meta.ChannelType = market.ChannelKline
	meta.Timestamp = k.StartTime
	return &market.Kline{
		Meta:        meta,
		Open:        open,
		High:        high,
		Low:         low,
		Close:       closePrice,
		Volume:      volume,
		QuoteVolume: quoteVolume,
		Period:      interval.Period,
	}, nil
}

// TradePayload is satisfied by the two trade wire shapes.
type TradePayload interface {
	RawTrade | AggTrade
	Payload
	tradeFields() tradeFields
}

type tradeFields struct {
	eventType    string
	wantEvent    string
	id           uint64
	price        string
	quantity     string
	tradeTime    int64
	buyerIsMaker bool
}

func (p RawTrade) tradeFields() tradeFields {
	return tradeFields{
		eventType:    p.EventType,
		wantEvent:    eventTrade,
		id:           p.TradeID,
		price:        p.Price,
		quantity:     p.Quantity,
		tradeTime:    p.TradeTime,
		buyerIsMaker: p.BuyerIsMaker,
	}
}

func (p AggTrade) tradeFields() tradeFields {
	return tradeFields{
		eventType:    p.EventType,
		wantEvent:    eventAggTrade,
		id:           p.AggTradeID,
		price:        p.Price,
		quantity:     p.Quantity,
		tradeTime:    p.TradeTime,
		buyerIsMaker: p.BuyerIsMaker,
	}
}

// NormalizeTrade converts either trade shape. Side is true when the taker is
// the buyer, i.e. the buyer is not the maker.
func NormalizeTrade[P TradePayload](p P, meta market.Meta) (*market.Trade, error) {
	f := p.tradeFields()
	if f.eventType != f.wantEvent {
		return nil, fmt.Errorf("%w: event type %q, want %q", market.ErrMalformedPayload, f.eventType, f.wantEvent)
	}
	price, err := parseFloat("p", f.price)
	if err != nil {
		return nil, err
	}
	qty, err := parseFloat("q", f.quantity)
	if err != nil {
		return nil, err
	}

	meta.ChannelType = market.ChannelTrade
	meta.Timestamp = f.tradeTime
	return &market.Trade{
		Meta:     meta,
		Price:    price,
		Quantity: qty,
		Side:     !f.buyerIsMaker,
		TradeID:  strconv.FormatUint(f.id, 10),
	}, nil
}

func parseOrderItems(field string, levels [][]string) ([]market.OrderItem, error) {
	items := make([]market.OrderItem, 0, len(levels))
	for i, level := range levels {
		if len(level) != 2 {
			return nil, fmt.Errorf("%w: %s[%d] has %d elements, want 2", market.ErrMalformedPayload, field, i, len(level))
		}
		price, err := parseFloat(field, level[0])
		if err != nil {
			return nil, err
		}
		qty, err := parseFloat(field, level[1])
		if err != nil {
			return nil, err
		}
		items = append(items, market.OrderItem{Price: price, Quantity: qty, Cost: price * qty})
	}
	return items, nil
}

func parseFloat(field, text string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: field %s is not a decimal: %q", market.ErrMalformedPayload, field, text)
	}
	return v, nil
}
