package intern

import (
	"sync/atomic"

	"github.com/on-the-ground/ramtab/ram"
	"github.com/on-the-ground/ramtab/shared/segmented"
)

type entry[C any] struct {
	content C
	owner   int32
}

// Store is the id-indexed side of one or more tables that draw ids from a
// common space. Every id has a single slot, tagged with the table that owns it,
// so tables sharing a Store share one dense array.
type Store[C any] struct {
	ids    *Allocator
	byID   *segmented.Array[atomic.Pointer[entry[C]]]
	owners atomic.Int32
}

func NewStore[C any](first, limit ram.Domain) *Store[C] {
	return &Store[C]{
		ids:  NewAllocator(first, limit),
		byID: segmented.New[atomic.Pointer[entry[C]]](),
	}
}

// Segments reports how many segments the id index spans.
func (s *Store[C]) Segments() int {
	return s.byID.Segments()
}

// join returns a fresh owner tag for a table using the store.
func (s *Store[C]) join() int32 {
	return s.owners.Add(1)
}

func (s *Store[C]) publish(id ram.Domain, content C, owner int32) {
	s.byID.Alloc(int(id)).Store(&entry[C]{content: content, owner: owner})
}

// load returns the published entry for id, or nil if there is none yet.
func (s *Store[C]) load(id ram.Domain) *entry[C] {
	if id < s.ids.First() || int64(id) >= s.ids.Bound() {
		return nil
	}
	p := s.byID.Ref(int(id))
	if p == nil {
		return nil
	}
	return p.Load()
}
