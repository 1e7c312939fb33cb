package record

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/on-the-ground/ramtab/intern"
	"github.com/on-the-ground/ramtab/ram"
	"go.uber.org/zap"
)

const arityShards = 8

// Table is the registry of Maps keyed by arity.
//
// All Maps of a Table share one store: ids come from a single dense space,
// so an id identifies its record across arities and unpacking it with the
// wrong arity is caught. Storage grows with the number of records, not with
// the number of arities.
type Table struct {
	id    string
	cfg   intern.Config
	store *store
	maps  *intern.ShardedMap[int, *Map]
}

func NewTable() *Table {
	return NewTableWithConfig(intern.DefaultConfig())
}

func NewTableWithConfig(cfg intern.Config) *Table {
	cfg = intern.NewConfig(cfg.NumShards, cfg.MaxID, cfg.Logger)
	return &Table{
		id:    uuid.New().String(),
		cfg:   cfg,
		store: intern.NewStore[[]ram.Domain](1, cfg.MaxID),
		maps:  intern.NewShardedMap[int, *Map](arityShards, intern.HashInt),
	}
}

// ID returns the table's instance id.
func (rt *Table) ID() string {
	return rt.id
}

// lookupArity returns the Map for arity, creating it if it does not exist.
func (rt *Table) lookupArity(arity int) *Map {
	m, _ := rt.maps.LoadOrCreate(arity, func() (int, *Map) {
		if arity < 0 {
			intern.Fatal(rt.cfg.Logger, fmt.Errorf("%w: %d", ErrNegativeArity, arity),
				zap.String("table", rt.id),
				zap.Int("arity", arity),
			)
		}
		rt.cfg.Logger.Debug("creating record map",
			zap.String("table", rt.id),
			zap.Int("arity", arity),
		)
		return arity, newMap(arity, rt.cfg, rt.store)
	})
	return m
}

// Map returns the Map for arity if a record of that arity was ever packed.
func (rt *Table) Map(arity int) (*Map, bool) {
	return rt.maps.Load(arity)
}

// Pack returns the id of record, which must have arity values.
func (rt *Table) Pack(record []ram.Domain, arity int) ram.Domain {
	return rt.lookupArity(arity).Pack(record)
}

// PackPointer packs the arity values starting at p, copying them first.
func (rt *Table) PackPointer(p *ram.Domain, arity int) ram.Domain {
	return rt.lookupArity(arity).PackPointer(p)
}

// PackValues packs values as a record of arity len(values).
func (rt *Table) PackValues(values ...ram.Domain) ram.Domain {
	return rt.lookupArity(len(values)).Pack(values)
}

// UnsafePack packs record without the length check and without copying it.
func (rt *Table) UnsafePack(record []ram.Domain, arity int) ram.Domain {
	return rt.lookupArity(arity).UnsafePack(record)
}

// Unpack returns the record of the given arity behind id. An arity that was
// never packed, or an id not issued for that arity, is fatal.
func (rt *Table) Unpack(id ram.Domain, arity int) []ram.Domain {
	m, ok := rt.maps.Load(arity)
	if !ok {
		intern.Fatal(rt.cfg.Logger,
			fmt.Errorf("%w: unpacking record id %d with arity %d", ErrUnknownArity, id, arity),
			zap.String("table", rt.id),
			zap.Int32("id", int32(id)),
			zap.Int("arity", arity),
		)
	}
	return m.Unpack(id)
}

// UnsafeUnpack returns the record behind id without checks.
// The arity must have been packed before.
func (rt *Table) UnsafeUnpack(id ram.Domain, arity int) []ram.Domain {
	m, _ := rt.maps.Load(arity)
	return m.UnsafeUnpack(id)
}

// Size returns the number of records across all arities.
func (rt *Table) Size() int {
	n := 0
	rt.maps.Range(func(_ int, m *Map) bool {
		n += m.Size()
		return true
	})
	return n
}

// Segments reports how many segments the table's id index spans.
func (rt *Table) Segments() int {
	return rt.store.Segments()
}

// Arities returns the arities that have a Map, in increasing order.
func (rt *Table) Arities() []int {
	var arities []int
	rt.maps.Range(func(arity int, _ *Map) bool {
		arities = append(arities, arity)
		return true
	})
	slices.Sort(arities)
	return arities
}

// Clone returns an independent copy of the table. Each Map is copied under
// its own lock; records of one arity packed while another arity is being
// copied may be missing from the copy. The copy never reissues a copied id.
func (rt *Table) Clone() *Table {
	dst := NewTableWithConfig(rt.cfg)
	rt.maps.Range(func(arity int, m *Map) bool {
		clone := m.cloneWith(dst.store)
		dst.maps.LoadOrCreate(arity, func() (int, *Map) { return arity, clone })
		return true
	})
	return dst
}
