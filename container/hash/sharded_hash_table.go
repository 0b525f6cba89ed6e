package hash

import (
	"github.com/ryogrid/SamehadaCascades/common"
)

type shard[K comparable, V any] struct {
	latch   common.ReaderWriterLatch
	entries map[K]V
}

/**
 * In-memory hash table split into independently latched shards.
 * Lookups on different shards never contend. GetOrCreate is atomic per key:
 * exactly one value is created for a key even when callers race.
 */
type ShardedHashTable[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint32
}

func NewShardedHashTable[K comparable, V any](shardNum int, hash func(K) uint32) *ShardedHashTable[K, V] {
	common.SH_Assert(shardNum > 0, "shard number must be positive")
	shards := make([]*shard[K, V], shardNum)
	for i := range shards {
		shards[i] = &shard[K, V]{common.NewRWLatch(), make(map[K]V)}
	}
	return &ShardedHashTable[K, V]{shards, hash}
}

func (ht *ShardedHashTable[K, V]) shardOf(key K) *shard[K, V] {
	return ht.shards[ht.hash(key)%uint32(len(ht.shards))]
}

func (ht *ShardedHashTable[K, V]) GetValue(key K) (V, bool) {
	s := ht.shardOf(key)
	s.latch.RLock()
	defer s.latch.RUnlock()
	val, ok := s.entries[key]
	return val, ok
}

// GetOrCreate returns the value stored for key, calling create under the shard latch
// when there is none. The second return value is true when this call created it.
func (ht *ShardedHashTable[K, V]) GetOrCreate(key K, create func() V) (V, bool) {
	s := ht.shardOf(key)

	s.latch.RLock()
	val, ok := s.entries[key]
	s.latch.RUnlock()
	if ok {
		return val, false
	}

	s.latch.WLock()
	defer s.latch.WUnlock()
	if val, ok = s.entries[key]; ok {
		return val, false
	}
	val = create()
	s.entries[key] = val
	return val, true
}

// Insert stores val only when key is absent and returns the value that ends up stored.
func (ht *ShardedHashTable[K, V]) Insert(key K, val V) (V, bool) {
	return ht.GetOrCreate(key, func() V { return val })
}

func (ht *ShardedHashTable[K, V]) Count() int {
	cnt := 0
	for _, s := range ht.shards {
		s.latch.RLock()
		cnt += len(s.entries)
		s.latch.RUnlock()
	}
	return cnt
}

// Iterate calls f for every entry until it returns false. Entries inserted
// concurrently may or may not be visited.
func (ht *ShardedHashTable[K, V]) Iterate(f func(K, V) bool) {
	for _, s := range ht.shards {
		s.latch.RLock()
		for k, v := range s.entries {
			if !f(k, v) {
				s.latch.RUnlock()
				return
			}
		}
		s.latch.RUnlock()
	}
}
