// Package catalog holds the externally supplied market catalog.
package catalog

import (
	"sync"

	"marketcrawler/pkg/market"
)

// Store keeps the latest catalog snapshot per market type. Readers get copies,
// so a refresh never changes what an already running crawl was built from.
type Store struct {
	mu      sync.RWMutex
	markets map[market.MarketType][]market.Market
}

func NewStore() *Store {
	return &Store{
		markets: make(map[market.MarketType][]market.Market),
	}
}

// Replace swaps the snapshot of one market type.
func (s *Store) Replace(marketType market.MarketType, markets []market.Market) {
	cp := make([]market.Market, len(markets))
	copy(cp, markets)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.markets[marketType] = cp
}

// ByType returns the markets of one market type.
func (s *Store) ByType(marketType market.MarketType) []market.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]market.Market, len(s.markets[marketType]))
	copy(out, s.markets[marketType])
	return out
}

func (s *Store) All() []market.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []market.Market
	for _, ms := range s.markets {
		out = append(out, ms...)
	}
	return out
}

// Missing returns the pairs absent from the snapshot of marketType.
func (s *Store) Missing(marketType market.MarketType, pairs []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	present := make(map[string]struct{}, len(s.markets[marketType]))
	for _, m := range s.markets[marketType] {
		present[m.Pair] = struct{}{}
	}
	var missing []string
	for _, p := range pairs {
		if _, ok := present[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
