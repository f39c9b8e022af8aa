// Package xsync provides the small concurrency-safe building blocks the
// runtime needs outside the inbox and the pool themselves: a sharded
// registry keyed by actor address.
package xsync

import (
	"runtime"
	"sync"

	"github.com/zeebo/xxh3"
)

const maxShards = 64

type shard[V any] struct {
	sync.RWMutex
	m map[string]V
}

// Registry is a concurrent map sharded by xxh3 hash of the key, used as the
// system-wide actor directory. Sharding keeps register/unregister/lookup
// from serializing on a single mutex as the actor count grows.
type Registry[V any] struct {
	shards []*shard[V]
}

// NewRegistry creates a Registry with a shard count proportional to GOMAXPROCS.
func NewRegistry[V any]() *Registry[V] {
	n := numShards()
	shards := make([]*shard[V], n)
	for i := range shards {
		shards[i] = &shard[V]{m: make(map[string]V)}
	}
	return &Registry[V]{shards: shards}
}

// Load returns the value registered under key, if any.
func (r *Registry[V]) Load(key string) (V, bool) {
	s := r.shardFor(key)
	s.RLock()
	v, ok := s.m[key]
	s.RUnlock()
	return v, ok
}

// Store registers value under key, replacing any previous occupant.
func (r *Registry[V]) Store(key string, value V) {
	s := r.shardFor(key)
	s.Lock()
	s.m[key] = value
	s.Unlock()
}

// Delete removes key from the registry. Deleting an absent key is a no-op.
func (r *Registry[V]) Delete(key string) {
	s := r.shardFor(key)
	s.Lock()
	delete(s.m, key)
	s.Unlock()
}

// Len returns the total number of entries across all shards.
func (r *Registry[V]) Len() int {
	n := 0
	for _, s := range r.shards {
		s.RLock()
		n += len(s.m)
		s.RUnlock()
	}
	return n
}

// Range calls f for every entry. f must not mutate the registry.
func (r *Registry[V]) Range(f func(key string, value V)) {
	for _, s := range r.shards {
		s.RLock()
		for k, v := range s.m {
			f(k, v)
		}
		s.RUnlock()
	}
}

func (r *Registry[V]) shardFor(key string) *shard[V] {
	h := xxh3.HashString(key)
	return r.shards[h%uint64(len(r.shards))]
}

func numShards() int {
	n := runtime.GOMAXPROCS(0) * 4
	if n > maxShards {
		return maxShards
	}
	if n < 1 {
		return 1
	}
	return n
}
