package bench

import (
	"github.com/cespare/xxhash/v2"
	"github.com/on-the-ground/ramtab/internal/config"
)

func hash(key string) int {
	return int(xxhash.Sum64String(key) >> 1)
}

func getIndexByHash(key string, numParts int) int {
	switch numParts {
	case 0:
		panic("number of partitions cannot be 0")
	case 1:
		return 0
	default:
		return hash(key) % numParts
	}
}

// Partition splits items over numParts workers.
//
// In shared mode items are dealt round-robin, so equal content reaches several
// workers and they contend on it. In partitioned mode each item goes to the
// worker its key hashes to, so equal content always stays on one worker.
func Partition[T any](items []T, numParts int, mode string, key func(T) string) [][]T {
	parts := make([][]T, numParts)
	for i, item := range items {
		idx := i % numParts
		if mode == config.ModePartitioned {
			idx = getIndexByHash(key(item), numParts)
		}
		parts[idx] = append(parts[idx], item)
	}
	return parts
}
