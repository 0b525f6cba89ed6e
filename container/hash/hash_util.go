package hash

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

func GenHashMurMur(key []byte) uint32 {
	h := murmur3.New128()
	h.Write(key)

	hash := h.Sum(nil)

	return binary.LittleEndian.Uint32(hash)
}

func GenHashMurMur64(key []byte) uint64 {
	h := murmur3.New128()
	h.Write(key)

	hash := h.Sum(nil)

	return binary.LittleEndian.Uint64(hash)
}

func HashString(key string) uint32 {
	return GenHashMurMur([]byte(key))
}

// HashUint64 hashes integer handles so that sequential ids spread over shards.
func HashUint64(key uint64) uint32 {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, key)
	return GenHashMurMur(buf)
}
