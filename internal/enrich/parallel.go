package enrich

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/inodb/gogreat/internal/genesets"
	"github.com/inodb/gogreat/internal/result"
)

// WorkItem holds one size-filtered collection ready for testing.
type WorkItem struct {
	Seq        int
	Collection *genesets.Collection
	Fractions  map[string]float64
}

// WorkResult holds the enrichment table for a single collection.
type WorkResult struct {
	Seq     int
	Name    string
	Table   *result.Table
	Err     error
	Elapsed time.Duration
}

// ParallelTest tests work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (t *Tester) ParallelTest(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				start := time.Now()
				table, err := t.Test(ctx, item.Collection, item.Fractions)
				results <- WorkResult{
					Seq:     item.Seq,
					Name:    item.Collection.Name,
					Table:   table,
					Err:     err,
					Elapsed: time.Since(start),
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect hands results to fn in Seq order, holding back any that
// arrive early. It returns after results is closed. When fn fails, cancel
// (if non-nil) is called so workers abandon their remaining terms, the
// rest of results is discarded and fn's error is returned.
func OrderedCollect(results <-chan WorkResult, cancel context.CancelFunc, fn func(WorkResult) error) error {
	held := make(map[int]WorkResult)
	want := 0
	var failed error

	for r := range results {
		if failed != nil {
			continue
		}
		held[r.Seq] = r
		for next, ok := held[want]; ok; next, ok = held[want] {
			delete(held, want)
			want++
			if err := fn(next); err != nil {
				failed = err
				if cancel != nil {
					cancel()
				}
				break
			}
		}
	}
	return failed
}
