package bench

import (
	"context"
	"fmt"
	"strconv"

	"github.com/on-the-ground/ramtab/intern"
	"github.com/on-the-ground/ramtab/ram"
	"github.com/on-the-ground/ramtab/record"
	"github.com/on-the-ground/ramtab/symbol"
	"go.uber.org/zap"
)

// Options control a benchmark run.
type Options struct {
	Threads []int
	Mode    string
	Table   intern.Config
	Logger  *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Symbols measures insert, lookup and resolve on a symbol table for every
// thread count in opts.
func Symbols(ctx context.Context, opts Options, words []string) ([]Phase, error) {
	var phases []Phase
	key := func(s string) string { return s }

	for _, threads := range opts.Threads {
		parts := Partition(words, threads, opts.Mode, key)

		table := symbol.NewTableWithConfig(opts.Table)
		insert, err := timed("insert", threads, len(words), func() error {
			return runParallel(ctx, parts, func(s string) { table.Lookup(s) })
		})
		if err != nil {
			return nil, err
		}

		lookup, err := timed("lookup", threads, len(words), func() error {
			return runParallel(ctx, parts, func(s string) { table.Lookup(s) })
		})
		if err != nil {
			return nil, err
		}

		ids := make([]ram.Domain, len(words))
		for i, s := range words {
			ids[i] = table.Lookup(s)
		}
		idParts := Partition(ids, threads, opts.Mode, func(id ram.Domain) string {
			return strconv.Itoa(int(id))
		})
		resolve, err := timed("resolve", threads, len(ids), func() error {
			return runParallel(ctx, idParts, func(id ram.Domain) { table.Resolve(id) })
		})
		if err != nil {
			return nil, err
		}

		opts.logger().Debug("symbol phases done",
			zap.Int("threads", threads),
			zap.Int("symbols", table.Size()),
		)
		phases = append(phases, insert, lookup, resolve)
	}
	return phases, nil
}

// Records measures pack and unpack on a record table for every thread count in opts.
func Records(ctx context.Context, opts Options, records [][]ram.Domain) ([]Phase, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("empty record workload")
	}
	arity := len(records[0])
	var phases []Phase
	key := func(rec []ram.Domain) string { return fmt.Sprint(rec) }

	for _, threads := range opts.Threads {
		parts := Partition(records, threads, opts.Mode, key)

		table := record.NewTableWithConfig(opts.Table)
		pack, err := timed("pack", threads, len(records), func() error {
			return runParallel(ctx, parts, func(rec []ram.Domain) { table.Pack(rec, arity) })
		})
		if err != nil {
			return nil, err
		}

		ids := make([]ram.Domain, len(records))
		for i, rec := range records {
			ids[i] = table.Pack(rec, arity)
		}
		idParts := Partition(ids, threads, opts.Mode, func(id ram.Domain) string {
			return strconv.Itoa(int(id))
		})
		unpack, err := timed("unpack", threads, len(ids), func() error {
			return runParallel(ctx, idParts, func(id ram.Domain) { table.Unpack(id, arity) })
		})
		if err != nil {
			return nil, err
		}

		opts.logger().Debug("record phases done",
			zap.Int("threads", threads),
			zap.Int("records", table.Size()),
			zap.Ints("arities", table.Arities()),
			zap.Int("segments", table.Segments()),
		)
		phases = append(phases, pack, unpack)
	}

	return phases, nil
}
