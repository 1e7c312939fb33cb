package intern

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/on-the-ground/ramtab/ram"
	"go.uber.org/zap"
)

// Codec adapts a content type to the table.
type Codec[K comparable, C any] struct {
	// Key returns the map key for content. It may borrow content's memory;
	// the table only keeps keys derived from content returned by Own.
	Key func(C) K
	// Own copies content into storage the table may keep forever.
	Own func(C) C
}

// Entry is one interned (id, content) pair.
type Entry[C any] struct {
	ID      ram.Domain
	Content C
}

// Table interns content of type C under map keys of type K.
type Table[K comparable, C any] struct {
	id     string
	cfg    Config
	codec  Codec[K, C]
	hash   Hasher[K]
	index  *ShardedMap[K, ram.Domain]
	store  *Store[C]
	owner  int32
	shared bool
	size   atomic.Int64
}

// NewTable creates an empty table. Ids and content live in store when it is
// non-nil and in a private store whose ids start at first otherwise.
func NewTable[K comparable, C any](
	cfg Config,
	codec Codec[K, C],
	hash Hasher[K],
	first ram.Domain,
	store *Store[C],
) *Table[K, C] {
	cfg = cfg.normalize()
	shared := store != nil
	if !shared {
		store = NewStore[C](first, cfg.MaxID)
	}
	return &Table[K, C]{
		id:     uuid.New().String(),
		cfg:    cfg,
		codec:  codec,
		hash:   hash,
		index:  NewShardedMap[K, ram.Domain](cfg.NumShards, hash),
		store:  store,
		owner:  store.join(),
		shared: shared,
	}
}

// ID returns the table's instance id, used to tag diagnostics.
func (t *Table[K, C]) ID() string {
	return t.id
}

// Lookup returns the id of content, interning a copy of it if it is new.
func (t *Table[K, C]) Lookup(content C) ram.Domain {
	return t.lookup(content, t.codec.Own)
}

// UnsafeLookup is Lookup without copying new content: the table keeps content
// itself, so the caller must never modify it afterwards.
func (t *Table[K, C]) UnsafeLookup(content C) ram.Domain {
	return t.lookup(content, nil)
}

func (t *Table[K, C]) lookup(content C, own func(C) C) ram.Domain {
	id, _ := t.index.LoadOrCreate(t.codec.Key(content), func() (K, ram.Domain) {
		id, err := t.store.ids.Next()
		if err != nil {
			Fatal(t.cfg.Logger, fmt.Errorf("%w: table %s", err, t.id),
				zap.String("table", t.id),
				zap.Int32("limit", int32(t.store.ids.Limit())),
			)
		}
		if own != nil {
			content = own(content)
		}
		// Publish the content before the id becomes visible through the index.
		t.store.publish(id, content, t.owner)
		t.size.Add(1)
		return t.codec.Key(content), id
	})
	return id
}

// Find returns the id of content without interning it.
func (t *Table[K, C]) Find(content C) (ram.Domain, bool) {
	return t.index.Load(t.codec.Key(content))
}

// Resolve returns the content behind id. An id this table never issued is fatal.
func (t *Table[K, C]) Resolve(id ram.Domain) C {
	c, ok := t.resolve(id)
	if !ok {
		Fatal(t.cfg.Logger, fmt.Errorf("%w: id %d not issued by table %s", ErrOutOfRange, id, t.id),
			zap.String("table", t.id),
			zap.Int32("id", int32(id)),
		)
	}
	return c
}

// Contains reports whether id was issued by this table.
func (t *Table[K, C]) Contains(id ram.Domain) bool {
	_, ok := t.resolve(id)
	return ok
}

// resolve finds id only once its slot is published and owned by t. An id
// allocated by an insert that has not published yet reads as absent.
func (t *Table[K, C]) resolve(id ram.Domain) (c C, ok bool) {
	e := t.store.load(id)
	if e == nil || e.owner != t.owner {
		return c, false
	}
	return e.content, true
}

// UnsafeResolve returns the content behind id without any check.
// The result for an id this table never issued is undefined.
func (t *Table[K, C]) UnsafeResolve(id ram.Domain) C {
	return t.store.byID.Ref(int(id)).Load().content
}

// Size returns the number of distinct contents interned so far.
func (t *Table[K, C]) Size() int {
	return int(t.size.Load())
}

// Entries returns a snapshot of all entries in id order.
// Inserts are held off while the snapshot is taken.
func (t *Table[K, C]) Entries() []Entry[C] {
	var entries []Entry[C]
	t.index.Exclusive(func() {
		entries = t.collect()
	})
	return entries
}

// All iterates over a snapshot of the table in id order.
func (t *Table[K, C]) All() iter.Seq2[ram.Domain, C] {
	return func(yield func(ram.Domain, C) bool) {
		for _, e := range t.Entries() {
			if !yield(e.ID, e.Content) {
				return
			}
		}
	}
}

// collect must run while every shard is locked. It visits only t's own
// entries, so its cost does not depend on other tables sharing the store.
func (t *Table[K, C]) collect() []Entry[C] {
	entries := make([]Entry[C], 0, t.Size())
	t.index.rangeLocked(func(_ K, id ram.Domain) {
		entries = append(entries, Entry[C]{ID: id, Content: t.store.byID.Ref(int(id)).Load().content})
	})
	slices.SortFunc(entries, func(a, b Entry[C]) int { return cmp.Compare(a.ID, b.ID) })
	return entries
}

// Clone returns an independent copy holding every entry published when the
// copy starts. Inserts racing with Clone either complete before it or wait
// for it to finish. Content is shared with the original, which is safe since
// it is never mutated.
func (t *Table[K, C]) Clone() *Table[K, C] {
	return t.CloneWith(nil)
}

// CloneWith is Clone placing the copy in store. When store is nil the copy
// gets a private one. Either way the copy keeps every id and the store's
// allocator is advanced past them.
func (t *Table[K, C]) CloneWith(store *Store[C]) *Table[K, C] {
	dst := NewTable(t.cfg, t.codec, t.hash, t.store.ids.First(), store)
	t.index.Exclusive(func() {
		for _, e := range t.collect() {
			dst.put(e.ID, e.Content)
		}
	})
	return dst
}

// put stores an entry with a known id. The caller must own dst exclusively.
func (t *Table[K, C]) put(id ram.Domain, content C) {
	t.store.publish(id, content, t.owner)
	t.index.store(t.codec.Key(content), id)
	t.store.ids.advance(int64(id) + 1)
	t.size.Add(1)
}

// Take moves t's storage into a new table and leaves t empty.
// Neither table may be in concurrent use while Take runs.
func (t *Table[K, C]) Take() *Table[K, C] {
	dst := &Table[K, C]{
		id:     t.id,
		cfg:    t.cfg,
		codec:  t.codec,
		hash:   t.hash,
		index:  t.index,
		store:  t.store,
		owner:  t.owner,
		shared: t.shared,
	}
	dst.size.Store(t.size.Load())
	t.size.Store(0)
	t.id = uuid.New().String()
	t.index = NewShardedMap[K, ram.Domain](t.cfg.NumShards, t.hash)
	if !t.shared {
		t.store = NewStore[C](t.store.ids.First(), t.store.ids.Limit())
	}
	t.owner = t.store.join()
	return dst
}
