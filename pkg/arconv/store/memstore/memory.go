package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/arconv/pkg/arconv/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu          sync.RWMutex
	events      []store.Event
	conversions map[string]store.Conversion
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{conversions: make(map[string]store.Conversion)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// RecordEvent appends a diagnostic event.
func (s *Store) RecordEvent(ctx context.Context, e store.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns events of kind (all kinds if empty), newest first.
func (s *Store) Events(ctx context.Context, kind string, limit int) ([]store.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		e := s.events[i]
		if kind != "" && e.Kind != kind {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// TopInvalidProducts returns the k most frequent unresolved lines.
func (s *Store) TopInvalidProducts(ctx context.Context, k int) ([]store.ProductCount, error) {
	s.mu.RLock()
	counts := make(map[string]int64)
	for _, e := range s.events {
		if e.Kind == store.KindInvalidProduct {
			counts[e.Detail]++
		}
	}
	s.mu.RUnlock()

	out := make([]store.ProductCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, store.ProductCount{Words: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Words < out[j].Words
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// SaveConversion inserts or replaces a conversion by ID.
func (s *Store) SaveConversion(ctx context.Context, c store.Conversion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversions[c.ID] = c
	return nil
}

// GetConversion returns a conversion by ID.
func (s *Store) GetConversion(ctx context.Context, id string) (store.Conversion, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversions[id]
	return c, ok, nil
}
