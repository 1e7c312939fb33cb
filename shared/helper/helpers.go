package helper

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/ramtab/ram"
)

var ErrOverflow = errors.New("integer overflow")

// ToDomain narrows v into the domain, failing when v is negative or above limit.
func ToDomain(v int64, limit ram.Domain) (ram.Domain, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d cannot be converted to a domain value (negative)", ErrOverflow, v)
	}
	if v > int64(limit) {
		return 0, fmt.Errorf("%w: %d exceeds domain limit %d", ErrOverflow, v, limit)
	}
	return ram.Domain(v), nil
}
