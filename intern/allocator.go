package intern

import (
	"fmt"
	"sync/atomic"

	"github.com/on-the-ground/ramtab/ram"
	"github.com/on-the-ground/ramtab/shared/helper"
)

// Allocator hands out dense, increasing ids starting at first.
type Allocator struct {
	next  atomic.Int64
	first ram.Domain
	limit ram.Domain
}

func NewAllocator(first, limit ram.Domain) *Allocator {
	a := &Allocator{first: first, limit: limit}
	a.next.Store(int64(first))
	return a
}

// Next returns a fresh id, or ErrIDSpaceExhausted once limit has been issued.
func (a *Allocator) Next() (ram.Domain, error) {
	id, err := helper.ToDomain(a.next.Add(1)-1, a.limit)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIDSpaceExhausted, err)
	}
	return id, nil
}

// First returns the lowest id the allocator issues.
func (a *Allocator) First() ram.Domain {
	return a.first
}

// Limit returns the highest id the allocator may issue.
func (a *Allocator) Limit() ram.Domain {
	return a.limit
}

// Bound returns one past the highest id handed out so far.
func (a *Allocator) Bound() int64 {
	return min(a.next.Load(), int64(a.limit)+1)
}

// advance moves the allocator so the next id is at least next.
func (a *Allocator) advance(next int64) {
	for {
		cur := a.next.Load()
		if cur >= next || a.next.CompareAndSwap(cur, next) {
			return
		}
	}
}
