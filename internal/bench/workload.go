// Package bench measures table throughput under sequential and parallel load.
package bench

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/on-the-ground/ramtab/ram"
)

const (
	minStringLength = 6
	maxStringLength = 24
)

// ReadStrings reads one word per line from r, cutting each line to a random
// length between minStringLength and maxStringLength. Shorter lines are kept whole.
func ReadStrings(r io.Reader, rng *rand.Rand) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if n := randomLength(rng); len(line) > n {
			line = line[:n]
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read workload: %w", err)
	}
	return words, nil
}

// GenerateStrings returns n random lowercase words.
func GenerateStrings(n int, rng *rand.Rand) []string {
	words := make([]string, n)
	for i := range words {
		b := make([]byte, randomLength(rng))
		for j := range b {
			b[j] = byte('a' + rng.IntN(26))
		}
		words[i] = string(b)
	}
	return words
}

// GenerateRecords returns n random records of the given arity.
func GenerateRecords(n, arity int, rng *rand.Rand) [][]ram.Domain {
	records := make([][]ram.Domain, n)
	for i := range records {
		rec := make([]ram.Domain, arity)
		for j := range rec {
			rec[j] = ram.Domain(rng.Int32())
		}
		records[i] = rec
	}
	return records
}

func randomLength(rng *rand.Rand) int {
	return minStringLength + rng.IntN(maxStringLength-minStringLength+1)
}
