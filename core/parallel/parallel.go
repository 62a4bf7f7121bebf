// Package parallel runs independent sub-tasks of a meta-learner on a bounded
// number of goroutines.
package parallel

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/mlearn/pkg/errors"
)

// ResolveJobs converts an sklearn style n_jobs value into a worker count.
// 0 and 1 mean serial execution, -1 uses every CPU, -2 all but one, and so on.
// The result is never larger than items and never smaller than 1.
func ResolveJobs(nJobs, items int) int {
	workers := nJobs
	if nJobs < 0 {
		workers = runtime.NumCPU() + 1 + nJobs
	}
	if workers < 1 {
		workers = 1
	}
	if items > 0 && workers > items {
		workers = items
	}
	return workers
}

// Do runs fn for every task index in [0, items) with at most
// ResolveJobs(nJobs, items) goroutines. It waits for all started tasks and
// returns the first error. A panic inside fn is returned as *errors.PanicError.
//
// Tasks must not share mutable state; results are typically written into a
// pre-sized slice at index i, which keeps output independent of scheduling.
func Do(nJobs, items int, fn func(i int) error) error {
	if items <= 0 {
		return nil
	}

	workers := ResolveJobs(nJobs, items)
	if workers == 1 {
		for i := 0; i < items; i++ {
			if err := runTask(i, fn); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < items; i++ {
		g.Go(func() error {
			return runTask(i, fn)
		})
	}
	return g.Wait()
}

func runTask(i int, fn func(i int) error) error {
	return errors.SafeExecute(fmt.Sprintf("task %d", i), func() error {
		return fn(i)
	})
}

// Chunks divides [0, items) into contiguous ranges, one per worker, and runs
// fn(start, end) for each of them. It is used for row-wise prediction loops.
func Chunks(nJobs, items int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}
	workers := ResolveJobs(nJobs, items)
	chunkSize := (items + workers - 1) / workers
	nChunks := (items + chunkSize - 1) / chunkSize

	return Do(workers, nChunks, func(c int) error {
		start := c * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		return fn(start, end)
	})
}
