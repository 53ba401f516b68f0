// Package pool runs batches of independent work with a bounded number of
// goroutines in flight.
package pool

import (
	"sync"
	"sync/atomic"
)

// Result holds the outcome of a single unit of work: either the produced
// value or the error the unit returned.
type Result[T any] struct {
	Value T
	Err   error
}

// Map executes every unit with at most limit running concurrently and
// returns one Result per unit, index-aligned with the input regardless of
// completion order. A failing unit never aborts its siblings; its error is
// captured in the matching slot. Map returns only after every unit has
// settled.
func Map[T any](limit int, units []func() (T, error)) []Result[T] {
	if limit < 1 {
		limit = 1
	}
	if limit > len(units) {
		limit = len(units)
	}

	results := make([]Result[T], len(units))

	// Workers claim indices off a shared cursor. Each slot is written by
	// exactly one worker, so the results slice needs no lock.
	var cursor atomic.Int64
	var wg sync.WaitGroup
	for n := 0; n < limit; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1)) - 1
				if i >= len(units) {
					return
				}
				v, err := units[i]()
				results[i] = Result[T]{Value: v, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}
