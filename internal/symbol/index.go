// Package symbol maps exchange-native symbols to canonical pairs.
package symbol

import (
	"fmt"

	"marketcrawler/pkg/market"
)

// Index is a read-only view of the catalog restricted to one exchange, one
// market type and the requested pairs. It is never mutated after NewIndex and
// is safe for concurrent use.
type Index struct {
	exchange   string
	marketType market.MarketType
	pairs      []string
	byID       map[string]market.Market
	byPair     map[string]market.Market
}

// NewIndex builds the index. Every requested pair must exist in markets for
// marketType, otherwise ErrInvalidConfig is returned.
func NewIndex(exchange string, marketType market.MarketType, markets []market.Market, pairs []string) (*Index, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no pairs requested", market.ErrInvalidConfig)
	}

	available := make(map[string]market.Market)
	for _, m := range markets {
		if m.Type == marketType {
			available[m.Pair] = m
		}
	}

	x := &Index{
		exchange:   exchange,
		marketType: marketType,
		pairs:      make([]string, 0, len(pairs)),
		byID:       make(map[string]market.Market, len(pairs)),
		byPair:     make(map[string]market.Market, len(pairs)),
	}
	for _, pair := range pairs {
		if _, dup := x.byPair[pair]; dup {
			continue
		}
		m, ok := available[pair]
		if !ok {
			return nil, fmt.Errorf("%w: %s %s market does not have %s", market.ErrInvalidConfig, exchange, marketType, pair)
		}
		if m.Exchange != exchange {
			return nil, fmt.Errorf("%w: market %s belongs to %q, want %q", market.ErrInvalidConfig, m.ID, m.Exchange, exchange)
		}
		x.pairs = append(x.pairs, pair)
		x.byPair[pair] = m
		x.byID[m.ID] = m
	}
	return x, nil
}

// Resolve returns the market of a native symbol as it appears in payloads.
// An unknown symbol means the feed and the catalog disagree.
func (x *Index) Resolve(nativeSymbol string) (market.Market, error) {
	m, ok := x.byID[nativeSymbol]
	if !ok {
		return market.Market{}, fmt.Errorf("%w: %s %s %q", market.ErrUnknownSymbol, x.exchange, x.marketType, nativeSymbol)
	}
	return m, nil
}

// Market returns the market of a requested canonical pair.
func (x *Index) Market(pair string) (market.Market, bool) {
	m, ok := x.byPair[pair]
	return m, ok
}

// Pairs returns the requested pairs in request order, without duplicates.
func (x *Index) Pairs() []string {
	out := make([]string, len(x.pairs))
	copy(out, x.pairs)
	return out
}

func (x *Index) MarketType() market.MarketType { return x.marketType }
