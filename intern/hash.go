package intern

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to the hash used for shard selection.
type Hasher[K comparable] func(K) uint64

func HashString(key string) uint64 {
	return xxhash.Sum64String(key)
}

func HashInt(key int) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	return xxhash.Sum64(buf[:])
}
