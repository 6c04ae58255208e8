// Package memorystore keeps the latest canonical events in memory.
package memorystore

import (
	"sync"

	"marketcrawler/pkg/market"
)

// EventStore keeps the most recent event per pair and channel type, plus
// per-channel-type counters. Its Add method is a market.Sink.
type EventStore struct {
	globalMu sync.RWMutex
	data     map[string]*pairEventStore
}

type pairEventStore struct {
	mu     sync.Mutex
	latest map[market.ChannelType]market.Event
	counts map[market.ChannelType]int
}

func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]*pairEventStore),
	}
}

func (s *EventStore) Add(ev market.Event) {
	h := ev.Header()

	// Fast path: lock per-pair store only
	s.globalMu.RLock()
	store, ok := s.data[h.Pair]
	s.globalMu.RUnlock()

	if !ok {
		s.globalMu.Lock()
		if store, ok = s.data[h.Pair]; !ok {
			store = &pairEventStore{
				latest: make(map[market.ChannelType]market.Event),
				counts: make(map[market.ChannelType]int),
			}
			s.data[h.Pair] = store
		}
		s.globalMu.Unlock()
	}

	store.mu.Lock()
	store.latest[h.ChannelType] = ev
	store.counts[h.ChannelType]++
	store.mu.Unlock()
}

// Latest returns the last event of one pair and channel type.
func (s *EventStore) Latest(pair string, ct market.ChannelType) (market.Event, bool) {
	s.globalMu.RLock()
	store, ok := s.data[pair]
	s.globalMu.RUnlock()
	if !ok {
		return nil, false
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	ev, ok := store.latest[ct]
	return ev, ok
}

// Counts returns the number of events received per channel type.
func (s *EventStore) Counts() map[market.ChannelType]int {
	s.globalMu.RLock()
	defer s.globalMu.RUnlock()

	result := make(map[market.ChannelType]int)
	for _, store := range s.data {
		store.mu.Lock()
		for ct, n := range store.counts {
			result[ct] += n
		}
		store.mu.Unlock()
	}
	return result
}

// CountAll returns the total number of events stored across all pairs.
func (s *EventStore) CountAll() int {
	total := 0
	for _, n := range s.Counts() {
		total += n
	}
	return total
}
