package intern

import (
	"math/bits"
	"sync"
)

// ShardedMap is a concurrent map split into independently locked shards.
// Its zero value is not usable; create one with NewShardedMap.
type ShardedMap[K comparable, V any] struct {
	shards []mapShard[K, V]
	mask   uint64
	hash   Hasher[K]
}

type mapShard[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
	_  [32]byte // keep neighbouring shard locks off one cache line
}

// NewShardedMap creates a map with numShards rounded up to a power of two.
func NewShardedMap[K comparable, V any](numShards int, hash Hasher[K]) *ShardedMap[K, V] {
	if numShards <= 0 {
		numShards = 1
	}
	n := 1 << bits.Len(uint(numShards-1))
	shards := make([]mapShard[K, V], n)
	for i := range shards {
		shards[i].m = make(map[K]V)
	}
	return &ShardedMap[K, V]{
		shards: shards,
		mask:   uint64(n - 1),
		hash:   hash,
	}
}

func (sm *ShardedMap[K, V]) shardOf(key K) *mapShard[K, V] {
	if sm.mask == 0 {
		return &sm.shards[0]
	}
	return &sm.shards[sm.hash(key)&sm.mask]
}

// Load returns the value stored for key.
func (sm *ShardedMap[K, V]) Load(key K) (V, bool) {
	s := sm.shardOf(key)
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok
}

// LoadOrCreate returns the value stored for key, creating it if absent.
//
// create runs under the write lock of key's shard, so for any key it runs at
// most once per map no matter how many goroutines race on it. It returns the
// key to store, which must equal the probe key; this lets callers probe with a
// borrowed view and store an owned copy. loaded reports whether the value was
// already present.
func (sm *ShardedMap[K, V]) LoadOrCreate(key K, create func() (K, V)) (v V, loaded bool) {
	s := sm.shardOf(key)

	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	if ok {
		return v, true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have inserted between the two probes.
	if v, ok := s.m[key]; ok {
		return v, true
	}
	k, v := create()
	s.m[k] = v
	return v, false
}

// Len returns the number of entries. Shards are counted one at a time, so
// the result may be stale under concurrent inserts.
func (sm *ShardedMap[K, V]) Len() int {
	n := 0
	for i := range sm.shards {
		s := &sm.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// NumShards returns the shard count.
func (sm *ShardedMap[K, V]) NumShards() int {
	return len(sm.shards)
}

// Range calls fn for every entry until fn returns false.
// Each shard is read-locked while it is visited; fn must not write to the map.
func (sm *ShardedMap[K, V]) Range(fn func(K, V) bool) {
	for i := range sm.shards {
		s := &sm.shards[i]
		s.mu.RLock()
		for k, v := range s.m {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Exclusive runs fn while holding every shard's write lock.
// Locks are taken in shard order, so concurrent Exclusive calls cannot deadlock.
func (sm *ShardedMap[K, V]) Exclusive(fn func()) {
	for i := range sm.shards {
		sm.shards[i].mu.Lock()
	}
	defer func() {
		for i := len(sm.shards) - 1; i >= 0; i-- {
			sm.shards[i].mu.Unlock()
		}
	}()
	fn()
}

// rangeLocked calls fn for every entry without locking.
// The caller must hold every shard's lock, as inside Exclusive.
func (sm *ShardedMap[K, V]) rangeLocked(fn func(K, V)) {
	for i := range sm.shards {
		for k, v := range sm.shards[i].m {
			fn(k, v)
		}
	}
}

// store inserts without locking. The caller must own the map exclusively.
func (sm *ShardedMap[K, V]) store(key K, v V) {
	sm.shardOf(key).m[key] = v
}
