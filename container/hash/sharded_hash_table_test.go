package hash

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	testingpkg "github.com/ryogrid/SamehadaCascades/testing/testing_assert"
)

func TestShardedHashTableInsertAndGet(t *testing.T) {
	ht := NewShardedHashTable[string, int](4, HashString)

	for i := 0; i < 100; i++ {
		_, created := ht.Insert(fmt.Sprintf("key-%d", i), i)
		testingpkg.SimpleAssert(t, created)
	}
	val, created := ht.Insert("key-7", 700)
	testingpkg.AssertFalse(t, created, "duplicate key must keep the first value")
	testingpkg.Equals(t, 7, val)

	val, ok := ht.GetValue("key-42")
	testingpkg.SimpleAssert(t, ok)
	testingpkg.Equals(t, 42, val)

	_, ok = ht.GetValue("missing")
	testingpkg.AssertFalse(t, ok, "")
	testingpkg.Equals(t, 100, ht.Count())

	visited := 0
	ht.Iterate(func(string, int) bool {
		visited++
		return true
	})
	testingpkg.Equals(t, 100, visited)
}

func TestShardedHashTableGetOrCreateRace(t *testing.T) {
	ht := NewShardedHashTable[uint64, *int64](8, HashUint64)
	var created int64
	wg := sync.WaitGroup{}
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := uint64(0); key < 64; key++ {
				ht.GetOrCreate(key, func() *int64 {
					atomic.AddInt64(&created, 1)
					return new(int64)
				})
			}
		}()
	}
	wg.Wait()

	testingpkg.Equals(t, int64(64), atomic.LoadInt64(&created))
	testingpkg.Equals(t, 64, ht.Count())
}

func TestMurMurHashIsStable(t *testing.T) {
	testingpkg.Equals(t, HashString("join{G1,G2}"), HashString("join{G1,G2}"))
	testingpkg.SimpleAssert(t, HashUint64(1) != HashUint64(2))
}
