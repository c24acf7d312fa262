// Package batch runs a pipeline over many repository entries, optionally in
// parallel. Entries write to disjoint per-entry directories, so workers never
// contend on output files.
package batch

import (
	"fmt"
	"sync"
)

// EntryResult reports the outcome of one processed entry.
type EntryResult struct {
	EntryID string
	Skipped bool
	Err     error
}

// ProcessFunc runs the pipeline for one entry. A (true, nil) return marks
// the entry as skipped, e.g. when it has no metadata file.
type ProcessFunc func(entryID string) (skipped bool, err error)

// Config controls batch execution.
type Config struct {
	// Workers is the number of entries processed concurrently. Values below
	// one run sequentially. Each worker carries its own OCR engine, so
	// memory use grows with this number.
	Workers int
}

// Summary aggregates the results of a batch run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
	Results   []EntryResult
}

// Process runs fn for every entry id, fanning the ids out over the
// configured number of workers. Results arrive in input order.
func Process(entryIDs []string, cfg Config, fn ProcessFunc) *Summary {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(entryIDs) {
		workers = len(entryIDs)
	}

	results := make([]EntryResult, len(entryIDs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runOne(entryIDs[i], fn)
			}
		}()
	}
	for i := range entryIDs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{Results: results}
	for _, r := range results {
		switch {
		case r.Skipped:
			summary.Skipped++
		case r.Err != nil:
			summary.Failed++
		default:
			summary.Processed++
		}
	}
	return summary
}

// runOne shields the batch from a panicking pipeline: one broken entry must
// not take the whole run down.
func runOne(entryID string, fn ProcessFunc) (result EntryResult) {
	result.EntryID = entryID
	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("entry %s panicked: %v", entryID, r)
		}
	}()
	result.Skipped, result.Err = fn(entryID)
	return result
}
