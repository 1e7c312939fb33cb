package record_test

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/on-the-ground/ramtab/intern"
	"github.com/on-the-ground/ramtab/ram"
	"github.com/on-the-ground/ramtab/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fatalOf(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fn()
	return nil
}

func TestRecordTable_PackUnpack(t *testing.T) {
	table := record.NewTable()

	r := table.Pack([]ram.Domain{7, 8, 9}, 3)
	assert.NotEqual(t, ram.NilRecord, r)
	assert.Equal(t, []ram.Domain{7, 8, 9}, table.Unpack(r, 3))
	assert.Equal(t, r, table.Pack([]ram.Domain{7, 8, 9}, 3))
	assert.Equal(t, 1, table.Size())
}

func TestRecordTable_PointerAndSliceAgree(t *testing.T) {
	table := record.NewTable()

	buf := []ram.Domain{1, 2, 3}
	byPtr := table.PackPointer(&buf[0], 3)
	assert.Equal(t, byPtr, table.Pack([]ram.Domain{1, 2, 3}, 3))
	assert.Equal(t, byPtr, table.PackValues(1, 2, 3))

	// the table owns its copy
	buf[0] = 100
	assert.Equal(t, []ram.Domain{1, 2, 3}, table.Unpack(byPtr, 3))
	assert.NotEqual(t, byPtr, table.Pack(buf, 3))
}

func TestRecordTable_AritiesDoNotCollide(t *testing.T) {
	table := record.NewTable()

	one := table.Pack([]ram.Domain{1}, 1)
	two := table.Pack([]ram.Domain{1, 1}, 2)
	three := table.Pack([]ram.Domain{1, 2, 3}, 3)
	pair := table.Pack([]ram.Domain{1, 2}, 2)

	ids := map[ram.Domain]bool{one: true, two: true, three: true, pair: true}
	assert.Len(t, ids, 4)
	assert.Equal(t, []ram.Domain{1}, table.Unpack(one, 1))
	assert.Equal(t, []ram.Domain{1, 1}, table.Unpack(two, 2))
	assert.Equal(t, []int{1, 2, 3}, table.Arities())
	assert.Equal(t, 4, table.Size())
}

func TestRecordTable_UnpackWithWrongArityIsFatal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	table := record.NewTableWithConfig(intern.NewConfig(0, 0, zap.New(core)))

	r := table.Pack([]ram.Domain{1, 2, 3}, 3)
	table.Pack([]ram.Domain{1, 2}, 2)

	err := fatalOf(func() { table.Unpack(r, 2) })
	require.ErrorIs(t, err, intern.ErrOutOfRange)
	assert.Contains(t, err.Error(), "arity 2")

	err = fatalOf(func() { table.Unpack(r, 4) })
	require.ErrorIs(t, err, record.ErrUnknownArity)

	err = fatalOf(func() { table.Unpack(ram.NilRecord, 3) })
	require.ErrorIs(t, err, intern.ErrOutOfRange)

	err = fatalOf(func() { table.Unpack(r+10, 3) })
	require.ErrorIs(t, err, intern.ErrOutOfRange)

	require.Equal(t, 4, logs.Len())
	fields := logs.All()[1].ContextMap()
	assert.Equal(t, int64(4), fields["arity"])
	assert.Equal(t, table.ID(), fields["table"])
}

func TestRecordTable_ArityMismatchIsFatal(t *testing.T) {
	table := record.NewTable()

	err := fatalOf(func() { table.Pack([]ram.Domain{1, 2}, 3) })
	require.ErrorIs(t, err, record.ErrArityMismatch)

	err = fatalOf(func() { table.Pack(nil, -1) })
	require.ErrorIs(t, err, record.ErrNegativeArity)
}

func TestRecordTable_EmptyRecord(t *testing.T) {
	table := record.NewTable()

	r := table.Pack(nil, 0)
	assert.NotEqual(t, ram.NilRecord, r)
	assert.Equal(t, r, table.PackValues())
	assert.Empty(t, table.Unpack(r, 0))
}

func TestRecordTable_ConcurrentIdenticalPacks(t *testing.T) {
	table := record.NewTable()

	const numGoroutines = 8
	ids := make([]map[ram.Domain]bool, numGoroutines)
	var wg sync.WaitGroup
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			seen := map[ram.Domain]bool{}
			for i := 0; i < 1000; i++ {
				seen[table.Pack([]ram.Domain{1, 1, 1}, 3)] = true
			}
			ids[g] = seen
		}(g)
	}
	wg.Wait()

	all := map[ram.Domain]bool{}
	for _, seen := range ids {
		for id := range seen {
			all[id] = true
		}
	}
	require.Len(t, all, 1)
	for id := range all {
		assert.Equal(t, []ram.Domain{1, 1, 1}, table.Unpack(id, 3))
	}
	assert.Equal(t, 1, table.Size())
}

func TestRecordTable_ConcurrentFirstUseOfArity(t *testing.T) {
	for round := 0; round < 50; round++ {
		table := record.NewTable()

		var wg sync.WaitGroup
		ids := make([]ram.Domain, 8)
		for g := range ids {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				ids[g] = table.Pack([]ram.Domain{ram.Domain(round), 5}, 2)
			}(g)
		}
		wg.Wait()

		for _, id := range ids {
			require.Equal(t, ids[0], id)
		}
		require.Equal(t, []int{2}, table.Arities())
		require.Equal(t, 1, table.Size())
	}
}

func TestRecordTable_ParallelRoundTrip(t *testing.T) {
	const (
		numTests   = 1000
		vectorSize = 10
	)
	r := rand.New(rand.NewPCG(7, 11))
	toPack := make([][]ram.Domain, numTests)
	for i := range toPack {
		toPack[i] = make([]ram.Domain, vectorSize)
		for j := range toPack[i] {
			toPack[i][j] = ram.Domain(r.Int32())
		}
	}

	table := record.NewTable()
	refs := make([]ram.Domain, numTests)
	for i, v := range toPack {
		refs[i] = table.PackPointer(&v[0], vectorSize)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := g; i < numTests; i += 4 {
				ref := table.Pack(toPack[i], vectorSize)
				if ref != refs[i] {
					t.Errorf("record %d repacked as %d, want %d", i, ref, refs[i])
					return
				}
				assert.Equal(t, toPack[i], table.Unpack(ref, vectorSize))
			}
		}(g)
	}
	wg.Wait()
}

func TestRecordTable_Clone(t *testing.T) {
	table := record.NewTable()
	a := table.PackValues(1, 2)
	b := table.PackValues(3)

	clone := table.Clone()
	assert.Equal(t, []ram.Domain{1, 2}, clone.Unpack(a, 2))
	assert.Equal(t, []ram.Domain{3}, clone.Unpack(b, 1))
	assert.Equal(t, a, clone.PackValues(1, 2))

	c := clone.PackValues(4, 5)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, b, c)
	_, ok := table.Map(2)
	require.True(t, ok)
	err := fatalOf(func() { table.Unpack(c, 2) })
	assert.ErrorIs(t, err, intern.ErrOutOfRange)
}

func TestRecordMap_DenseFromOne(t *testing.T) {
	m := record.NewMap(2, intern.DefaultConfig())
	assert.Equal(t, 2, m.Arity())

	assert.Equal(t, ram.Domain(1), m.Pack([]ram.Domain{0, 0}))
	assert.Equal(t, ram.Domain(2), m.Pack([]ram.Domain{0, 1}))
	assert.Equal(t, ram.Domain(1), m.Pack([]ram.Domain{0, 0}))
	assert.Equal(t, 2, m.Size())

	id, ok := m.Find([]ram.Domain{0, 1})
	require.True(t, ok)
	assert.Equal(t, ram.Domain(2), id)
	_, ok = m.Find([]ram.Domain{0})
	assert.False(t, ok)

	var got [][]ram.Domain
	for id, rec := range m.All() {
		assert.Equal(t, ram.Domain(len(got)+1), id)
		got = append(got, rec)
	}
	assert.Equal(t, [][]ram.Domain{{0, 0}, {0, 1}}, got)
}

func TestRecordMap_UnsafeVariants(t *testing.T) {
	m := record.NewMap(3, intern.DefaultConfig())
	owned := []ram.Domain{4, 5, 6}
	id := m.UnsafePack(owned)
	assert.Equal(t, id, m.Pack([]ram.Domain{4, 5, 6}))
	assert.Equal(t, owned, m.UnsafeUnpack(id))
}

func TestRecordMap_IDSpaceExhaustion(t *testing.T) {
	m := record.NewMap(1, intern.NewConfig(0, 2, nil))
	m.Pack([]ram.Domain{1})
	m.Pack([]ram.Domain{2})

	err := fatalOf(func() { m.Pack([]ram.Domain{3}) })
	assert.ErrorIs(t, err, intern.ErrIDSpaceExhausted)
}

func TestRecordTable_InterleavedAritiesShareDenseStorage(t *testing.T) {
	const (
		numArities = 16
		perArity   = 1000
	)
	table := record.NewTable()

	ids := make([][]ram.Domain, numArities)
	for i := 0; i < perArity; i++ {
		for arity := 1; arity <= numArities; arity++ {
			rec := make([]ram.Domain, arity)
			rec[0] = ram.Domain(i)
			ids[arity-1] = append(ids[arity-1], table.Pack(rec, arity))
		}
	}

	// ids 1..16000 fit four 4096-slot segments for the whole table
	assert.Equal(t, 4, table.Segments())
	assert.Equal(t, numArities*perArity, table.Size())

	seen := make(map[ram.Domain]bool, numArities*perArity)
	for arity := 1; arity <= numArities; arity++ {
		m, ok := table.Map(arity)
		require.True(t, ok)
		assert.Equal(t, perArity, m.Size())

		n := 0
		for id, rec := range m.All() {
			assert.Equal(t, ids[arity-1][n], id)
			assert.Len(t, rec, arity)
			n++
		}
		assert.Equal(t, perArity, n)

		for i, id := range ids[arity-1] {
			require.False(t, seen[id], "id %d issued twice", id)
			seen[id] = true
			assert.Equal(t, ram.Domain(i), table.Unpack(id, arity)[0])
		}
	}

	err := fatalOf(func() { table.Unpack(ids[2][0], 2) })
	assert.ErrorIs(t, err, intern.ErrOutOfRange)
}

func TestRecordTable_PackNilPointerIsFatal(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	table := record.NewTableWithConfig(intern.NewConfig(0, 0, zap.New(core)))

	err := fatalOf(func() { table.PackPointer(nil, 2) })
	require.ErrorIs(t, err, record.ErrArityMismatch)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, int64(2), logs.All()[0].ContextMap()["arity"])

	assert.Equal(t, table.PackValues(), table.PackPointer(nil, 0))
}
