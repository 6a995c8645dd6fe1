// Package workerpool schedules row-parallel work for the primitive
// applier: a fixed pool of goroutines, rows split into contiguous
// chunks, one task per chunk. It additionally carries the shared status
// flag and progress counter the applier's rows share.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Status is a shared, set-once-to-failed flag. Any row may set it on
// error; reads are racy but monotone.
type Status struct {
	failed atomic.Bool
}

// Fail marks the status as failed. Idempotent.
func (s *Status) Fail() { s.failed.Store(true) }

// Failed reports whether Fail has been called.
func (s *Status) Failed() bool { return s.failed.Load() }

// Progress is a mutex-guarded counter driving an optional external
// progress callback.
type Progress struct {
	mu   sync.Mutex
	done int
	cb   func(done int)
}

// NewProgress wraps an optional callback; cb may be nil.
func NewProgress(cb func(done int)) *Progress {
	return &Progress{cb: cb}
}

// Add increments the done count by n and invokes the callback, if any.
func (p *Progress) Add(n int) {
	p.mu.Lock()
	p.done += n
	done := p.done
	cb := p.cb
	p.mu.Unlock()
	if cb != nil {
		cb(done)
	}
}

// Pool runs row-chunked work across a fixed number of worker goroutines.
type Pool struct {
	workers int
}

// New creates a pool with the given worker count. workers <= 0 defaults
// to runtime.NumCPU().
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Rows splits [0, numRows) into contiguous chunks, one per worker, and
// runs fn(startRow, endRow) for each chunk concurrently. fn must check
// status at the top of its own row loop and stop early — a row already
// in flight is allowed to finish even after status is marked failed.
// Rows blocks until every chunk has returned.
func (p *Pool) Rows(numRows int, status *Status, fn func(startRow, endRow int)) {
	if numRows <= 0 {
		return
	}
	workers := p.workers
	if workers > numRows {
		workers = numRows
	}
	chunkSize := (numRows + workers - 1) / workers

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > numRows {
			end = numRows
		}
		if start >= end {
			break
		}
		wg.Add(1)
		s, e := start, end
		go func() {
			defer wg.Done()
			if status != nil && status.Failed() {
				return
			}
			fn(s, e)
		}()
	}
	wg.Wait()
}
