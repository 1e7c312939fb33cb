// Package record implements the record table, which interns fixed-arity
// tuples of domain values into single domain values so compound values fit
// the flat integer domain.
//
// A Map holds the records of one arity. A Table routes each call to the Map
// of its arity, creating Maps on first use. Id 0 (ram.NilRecord) is never
// issued; it stands for an absent record.
package record

import (
	"fmt"
	"iter"
	"unsafe"

	"github.com/on-the-ground/ramtab/intern"
	"github.com/on-the-ground/ramtab/ram"
	"go.uber.org/zap"
)

const domainSize = int(unsafe.Sizeof(ram.Domain(0)))

var codec = intern.Codec[string, []ram.Domain]{
	Key: keyOf,
	Own: func(values []ram.Domain) []ram.Domain {
		return append(make([]ram.Domain, 0, len(values)), values...)
	},
}

// keyOf views the bytes of values as a string without copying.
// Equal records have equal keys; the key is only valid while values is unchanged.
func keyOf(values []ram.Domain) string {
	if len(values) == 0 {
		return ""
	}
	return unsafe.String((*byte)(unsafe.Pointer(unsafe.SliceData(values))), len(values)*domainSize)
}

// Map is the bidirectional mapping between records of one arity and their ids.
type Map struct {
	arity  int
	t      *intern.Table[string, []ram.Domain]
	logger *zap.Logger
}

// NewMap creates a standalone Map whose ids start at 1.
func NewMap(arity int, cfg intern.Config) *Map {
	return newMap(arity, cfg, nil)
}

type store = intern.Store[[]ram.Domain]

func newMap(arity int, cfg intern.Config, st *store) *Map {
	cfg = intern.NewConfig(cfg.NumShards, cfg.MaxID, cfg.Logger)
	if arity < 0 {
		intern.Fatal(cfg.Logger, fmt.Errorf("%w: %d", ErrNegativeArity, arity), zap.Int("arity", arity))
	}
	return &Map{
		arity:  arity,
		t:      intern.NewTable(cfg, codec, intern.HashString, 1, st),
		logger: cfg.Logger,
	}
}

func (m *Map) Arity() int {
	return m.arity
}

// Pack returns the id of record, interning a copy of it if it is new.
func (m *Map) Pack(record []ram.Domain) ram.Domain {
	m.checkLen(record)
	return m.t.Lookup(record)
}

// PackPointer packs the arity values starting at p. The values are copied
// before they are interned, so the caller may reuse the buffer afterwards.
func (m *Map) PackPointer(p *ram.Domain) ram.Domain {
	if p == nil && m.arity > 0 {
		intern.Fatal(m.logger,
			fmt.Errorf("%w: nil pointer for arity %d", ErrArityMismatch, m.arity),
			zap.String("table", m.t.ID()),
			zap.Int("arity", m.arity),
		)
	}
	return m.t.Lookup(unsafe.Slice(p, m.arity))
}

// UnsafePack is Pack without the length check and without copying a new
// record; the caller must never modify record afterwards.
func (m *Map) UnsafePack(record []ram.Domain) ram.Domain {
	return m.t.UnsafeLookup(record)
}

// Find returns the id of record without interning it.
func (m *Map) Find(record []ram.Domain) (ram.Domain, bool) {
	if len(record) != m.arity {
		return ram.NilRecord, false
	}
	return m.t.Find(record)
}

// Unpack returns the record behind id. The result is table-owned and must not
// be modified. An id not issued by this Map is fatal.
func (m *Map) Unpack(id ram.Domain) []ram.Domain {
	if !m.t.Contains(id) {
		intern.Fatal(m.logger,
			fmt.Errorf("%w: record id %d not issued for arity %d", intern.ErrOutOfRange, id, m.arity),
			zap.String("table", m.t.ID()),
			zap.Int32("id", int32(id)),
			zap.Int("arity", m.arity),
		)
	}
	return m.t.UnsafeResolve(id)
}

// UnsafeUnpack returns the record behind id without any check.
func (m *Map) UnsafeUnpack(id ram.Domain) []ram.Domain {
	return m.t.UnsafeResolve(id)
}

// Size returns the number of records in the Map.
func (m *Map) Size() int {
	return m.t.Size()
}

// All iterates over a snapshot of the Map in id order.
func (m *Map) All() iter.Seq2[ram.Domain, []ram.Domain] {
	return m.t.All()
}

func (m *Map) checkLen(record []ram.Domain) {
	if len(record) != m.arity {
		intern.Fatal(m.logger,
			fmt.Errorf("%w: got %d values for arity %d", ErrArityMismatch, len(record), m.arity),
			zap.String("table", m.t.ID()),
			zap.Int("arity", m.arity),
		)
	}
}

func (m *Map) cloneWith(st *store) *Map {
	return &Map{
		arity:  m.arity,
		t:      m.t.CloneWith(st),
		logger: m.logger,
	}
}
