// Package segmented implements an append-only array whose elements never move.
//
// Items live in fixed-size segments that are allocated on first use and
// never reallocated, so an element read at index i stays valid for the life of
// the array even while other goroutines grow it. Only the segment directory is
// replaced on growth, and it is published through an atomic pointer so reads
// take no lock.
package segmented

import (
	"sync"
	"sync/atomic"
)

const (
	// segmentBits determines the size of each segment.
	// 12 bits = 4096 items per segment.
	segmentBits = 12
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

// Array is a thread-safe segmented array indexed by non-negative integers.
//
// Elements are handed out by reference. Concurrent writers and readers of the
// same element must synchronize on the element itself, typically by storing
// an atomic type such as atomic.Pointer.
type Array[T any] struct {
	segments atomic.Pointer[[]*segment[T]]
	mu       sync.Mutex // protects growth
}

type segment[T any] struct {
	items [segmentSize]T
}

// New creates an empty Array.
func New[T any]() *Array[T] {
	a := &Array[T]{}
	segments := make([]*segment[T], 0)
	a.segments.Store(&segments)
	return a
}

// Ref returns the element at index, or nil when the segment holding index
// has never been allocated.
func (a *Array[T]) Ref(index int) *T {
	if index < 0 {
		return nil
	}
	seg := a.segment(index >> segmentBits)
	if seg == nil {
		return nil
	}
	return &seg.items[index&segmentMask]
}

// Alloc returns the element at index, allocating its segment if necessary.
func (a *Array[T]) Alloc(index int) *T {
	segIdx := index >> segmentBits

	// Fast path: segment already allocated.
	if seg := a.segment(segIdx); seg != nil {
		return &seg.items[index&segmentMask]
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	current := *a.segments.Load()
	if segIdx < len(current) && current[segIdx] != nil {
		return &current[segIdx].items[index&segmentMask]
	}

	grown := current
	if segIdx >= len(grown) {
		grown = make([]*segment[T], segIdx+1, max(segIdx+1, 2*len(current)))
		copy(grown, current)
	} else {
		grown = append([]*segment[T](nil), current...)
	}
	grown[segIdx] = &segment[T]{}

	a.segments.Store(&grown)
	return &grown[segIdx].items[index&segmentMask]
}

// Segments reports how many segment slots the directory currently spans.
func (a *Array[T]) Segments() int {
	return len(*a.segments.Load())
}

func (a *Array[T]) segment(segIdx int) *segment[T] {
	segments := *a.segments.Load()
	if segIdx >= len(segments) {
		return nil
	}
	return segments[segIdx]
}
