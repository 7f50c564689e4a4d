package store

import (
	"sort"
	"sync"
)

// Latest keeps the most recent value per agent id. Writes on different
// ids never contend beyond the map lock; a read-modify-write on one id
// holds the lock for the whole update so it cannot be torn.
type Latest[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{items: make(map[string]T)}
}

func (s *Latest[T]) Put(agentID string, v T) {
	s.mu.Lock()
	s.items[agentID] = v
	s.mu.Unlock()
}

// PutIf stores v when no entry exists yet, or when replace reports true
// for the current entry. Used by the port-snapshot stream to keep the
// newest-timestamped snapshot even if submissions arrive out of order.
func (s *Latest[T]) PutIf(agentID string, v T, replace func(existing T) bool) {
	s.mu.Lock()
	if existing, ok := s.items[agentID]; !ok || replace(existing) {
		s.items[agentID] = v
	}
	s.mu.Unlock()
}

func (s *Latest[T]) Get(agentID string) (T, bool) {
	s.mu.RLock()
	v, ok := s.items[agentID]
	s.mu.RUnlock()
	return v, ok
}

// All returns a copied view of every entry.
func (s *Latest[T]) All() map[string]T {
	s.mu.RLock()
	out := make(map[string]T, len(s.items))
	for k, v := range s.items {
		out[k] = v
	}
	s.mu.RUnlock()
	return out
}

// History keeps a bounded per-agent history. When maxPerAgent is
// exceeded the oldest entry is discarded. A nil newer comparator means
// entries are read back in arrival order; otherwise reads are sorted
// with the newest entry first.
type History[T any] struct {
	mu          sync.RWMutex
	maxPerAgent int
	newer       func(a, b T) bool
	items       map[string][]T
}

// NewHistory builds a history store. maxPerAgent <= 0 means unbounded.
func NewHistory[T any](maxPerAgent int, newer func(a, b T) bool) *History[T] {
	return &History[T]{maxPerAgent: maxPerAgent, newer: newer, items: make(map[string][]T)}
}

func (s *History[T]) Append(agentID string, v T) {
	s.mu.Lock()
	entries := append(s.items[agentID], v)
	if s.maxPerAgent > 0 && len(entries) > s.maxPerAgent {
		entries = entries[len(entries)-s.maxPerAgent:]
	}
	s.items[agentID] = entries
	s.mu.Unlock()
}

func (s *History[T]) Get(agentID string) []T {
	s.mu.RLock()
	entries := s.items[agentID]
	out := make([]T, len(entries))
	copy(out, entries)
	s.mu.RUnlock()
	if s.newer != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.newer(out[i], out[j]) })
	}
	return out
}

// Last returns the most recently appended entry.
func (s *History[T]) Last(agentID string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.items[agentID]
	if len(entries) == 0 {
		var zero T
		return zero, false
	}
	return entries[len(entries)-1], true
}
