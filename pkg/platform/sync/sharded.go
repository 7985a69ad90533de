package sync

import (
	"sync"
)

const shardCount = 32

// Map is a string-keyed map using fine-grained sharded locking. Instead of a
// single global lock, entries are distributed across N shards based on a hash
// of the key, so unrelated keys never serialize on one lock under concurrent
// load.
type Map[V any] struct {
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewMap creates a sharded map with 32 shards.
func NewMap[V any]() *Map[V] {
	m := &Map[V]{}
	for i := range m.shards {
		m.shards[i].entries = make(map[string]V)
	}
	return m
}

// Get returns the value stored under key, if any.
func (m *Map[V]) Get(key string) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Set stores the value under key, replacing any previous entry.
func (m *Map[V]) Set(key string, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
}

// GetOrSet returns the existing value for key, or stores and returns the
// provided value when absent. The second result reports whether the value was
// already present.
func (m *Map[V]) GetOrSet(key string, value V) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		return existing, true
	}
	s.entries[key] = value
	return value, false
}

// Delete removes the entry for key, if present.
func (m *Map[V]) Delete(key string) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// DeleteFunc removes every entry for which the predicate returns true.
func (m *Map[V]) DeleteFunc(pred func(key string, value V) bool) {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, v := range s.entries {
			if pred(k, v) {
				delete(s.entries, k)
			}
		}
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (m *Map[V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

// shardFor returns the shard for the given key.
// Empty keys default to shard 0.
func (m *Map[V]) shardFor(key string) *shard[V] {
	if key == "" {
		return &m.shards[0]
	}
	return &m.shards[hashString(key)%shardCount]
}

// hashString provides a simple hash for shard selection.
// Uses djb2-style hashing for good distribution.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
