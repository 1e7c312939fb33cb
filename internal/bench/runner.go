package bench

import (
	"context"
	"time"

	"github.com/rickb777/date/v2/timespan"
	"golang.org/x/sync/errgroup"
)

// checkEvery is how many items a worker handles between cancellation checks.
const checkEvery = 1024

// Phase is one timed measurement.
type Phase struct {
	Name    string
	Threads int
	Items   int
	Span    timespan.TimeSpan
}

func (p Phase) Duration() time.Duration {
	return p.Span.Duration()
}

// OpsPerSecond returns the phase throughput.
func (p Phase) OpsPerSecond() float64 {
	d := p.Duration()
	if d <= 0 {
		return 0
	}
	return float64(p.Items) / d.Seconds()
}

// timed runs fn and records how long it took.
func timed(name string, threads, items int, fn func() error) (Phase, error) {
	start := time.Now()
	err := fn()
	end := time.Now()
	return Phase{
		Name:    name,
		Threads: threads,
		Items:   items,
		Span:    timespan.BetweenTimes(start, end),
	}, err
}

// runParallel runs fn over every part on its own goroutine and waits for all of them.
func runParallel[T any](ctx context.Context, parts [][]T, fn func(T)) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, part := range parts {
		g.Go(func() error {
			for i, item := range part {
				if i%checkEvery == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				fn(item)
			}
			return nil
		})
	}
	return g.Wait()
}
