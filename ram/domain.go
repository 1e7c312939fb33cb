// Package ram defines the value domain the evaluation engine operates on.
package ram

import "math"

// Domain is the fixed-width integer representation of a datum.
// Symbols and records are both encoded as Domain values by interning.
type Domain int32

const (
	// MaxDomain is the largest id any table may issue.
	MaxDomain Domain = math.MaxInt32

	// NilRecord is the reserved record id denoting an absent compound value.
	NilRecord Domain = 0
)
