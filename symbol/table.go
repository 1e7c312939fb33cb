// Package symbol implements the symbol table: a concurrent, grow-only pool
// that converts strings to dense ids and back.
//
// Ids start at 0 and are assigned in first-seen order. A Table is safe for use
// by any number of goroutines; see package intern for the locking scheme.
package symbol

import (
	"iter"
	"strings"

	"github.com/on-the-ground/ramtab/intern"
	"github.com/on-the-ground/ramtab/ram"
)

var codec = intern.Codec[string, string]{
	Key: func(s string) string { return s },
	// The caller's string may be a slice of a much larger buffer.
	Own: strings.Clone,
}

type Table struct {
	t *intern.Table[string, string]
}

// NewTable creates a table with the default configuration, pre-seeded with
// symbols. Seeds get ids 0..len(symbols)-1 in order; a repeated seed keeps
// its first id.
func NewTable(symbols ...string) *Table {
	return NewTableWithConfig(intern.DefaultConfig(), symbols...)
}

func NewTableWithConfig(cfg intern.Config, symbols ...string) *Table {
	st := &Table{t: intern.NewTable(cfg, codec, intern.HashString, 0, nil)}
	for _, s := range symbols {
		st.t.Lookup(s)
	}
	return st
}

// NewTableFrom creates a table that takes over src's storage without copying
// any string. src is left empty. Neither table may be in use concurrently
// while NewTableFrom runs.
func NewTableFrom(src *Table) *Table {
	return &Table{t: src.t.Take()}
}

// Lookup returns the id of symbol, inserting it if it is not in the table.
func (st *Table) Lookup(symbol string) ram.Domain {
	return st.t.Lookup(symbol)
}

// Insert is an alias of Lookup.
func (st *Table) Insert(symbol string) ram.Domain {
	return st.t.Lookup(symbol)
}

// UnsafeLookup is Lookup without copying a new symbol into table-owned
// memory. Use it when symbol does not pin a larger buffer.
func (st *Table) UnsafeLookup(symbol string) ram.Domain {
	return st.t.UnsafeLookup(symbol)
}

// InsertAll looks up every symbol in order.
func (st *Table) InsertAll(symbols iter.Seq[string]) {
	for s := range symbols {
		st.t.Lookup(s)
	}
}

// Find returns the id of symbol without inserting it.
func (st *Table) Find(symbol string) (ram.Domain, bool) {
	return st.t.Find(symbol)
}

func (st *Table) Contains(symbol string) bool {
	_, ok := st.t.Find(symbol)
	return ok
}

// Resolve returns the symbol for id. An id outside the table is fatal.
func (st *Table) Resolve(id ram.Domain) string {
	return st.t.Resolve(id)
}

// UnsafeResolve returns the symbol for id without a bounds check.
func (st *Table) UnsafeResolve(id ram.Domain) string {
	return st.t.UnsafeResolve(id)
}

// Size returns the number of symbols in the table.
func (st *Table) Size() int {
	return st.t.Size()
}

// Clone returns an independent copy of the table. Symbols present at the time
// of the copy keep their ids in both tables; later inserts are not shared.
func (st *Table) Clone() *Table {
	return &Table{t: st.t.Clone()}
}

// All iterates over a snapshot of the table in id order.
func (st *Table) All() iter.Seq2[ram.Domain, string] {
	return st.t.All()
}

// Strings returns a snapshot of all symbols indexed by id.
func (st *Table) Strings() []string {
	entries := st.t.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Content
	}
	return out
}

// ID returns the table's instance id.
func (st *Table) ID() string {
	return st.t.ID()
}
