// Copyright 2025 The go-hypersort Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool. A Pool is
// created once and reused across many operations, so repeated runs (benchmark
// sweeps, test suites) do not pay goroutine spawn costs per run.
//
// Two scheduling modes are offered:
//
//   - ParallelFor splits an index range into contiguous pieces for
//     independent, non-blocking work.
//   - Gang runs n tasks that must all be live at the same time, because they
//     block on each other (for example the ranks of an in-process world that
//     exchange messages). Gang refuses to run more tasks than workers.
//
// Usage:
//
//	pool := workerpool.New(8)
//	defer pool.Close()
//
//	err := pool.Gang(8, func(rank int) error {
//	    return runRank(rank)
//	})
package workerpool

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ErrClosed is returned by Gang on a closed pool.
var ErrClosed = errors.New("workerpool: pool is closed")

// ErrTooManyTasks is returned by Gang when the pool cannot run every task
// at once.
var ErrTooManyTasks = errors.New("workerpool: more gang tasks than workers")

// Pool is a persistent worker pool that can be reused across many parallel
// operations. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once

	// busy is written by every worker; keep it off the line holding the
	// read-mostly fields above.
	_      cpu.CacheLinePad
	busy   atomic.Int32
	_      cpu.CacheLinePad
	closed atomic.Bool
	gangMu sync.Mutex
}

// workItem represents a single parallel operation to execute.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan workItem, numWorkers*2),
	}

	// Spawn persistent workers
	for range numWorkers {
		go p.worker()
	}

	return p
}

// worker is the main loop for each persistent worker goroutine.
func (p *Pool) worker() {
	for item := range p.workC {
		p.busy.Add(1)
		item.fn()
		p.busy.Add(-1)
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Busy returns the number of workers currently executing a task.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor executes fn for each index in [0, n) using the worker pool.
// Each worker processes a contiguous range of indices.
// Blocks until all work completes.
//
// fn receives (start, end) indices where work should process [start, end).
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	if p.closed.Load() {
		// Fallback to sequential if pool is closed
		fn(0, n)
		return
	}

	// Determine number of workers to use (don't use more workers than items)
	workers := min(p.numWorkers, n)

	// For very small n, just run sequentially
	if workers == 1 {
		fn(0, n)
		return
	}

	// Calculate chunk size (ensure all items are covered)
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := range workers {
		start := i * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			// No work for this worker
			wg.Done()
			continue
		}

		p.workC <- workItem{
			fn: func() {
				fn(start, end)
			},
			barrier: &wg,
		}
	}

	wg.Wait()
}

// Gang runs fn(0) ... fn(n-1) on n distinct workers at the same time and
// blocks until all of them return. Tasks may block on each other; the pool
// guarantees none of them waits for a free worker. Gang returns the error
// of the lowest-indexed failing task, joined with the others.
//
// Only one gang runs on a pool at a time; concurrent Gang calls queue.
func (p *Pool) Gang(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if n > p.numWorkers {
		return fmt.Errorf("%w: %d tasks, %d workers", ErrTooManyTasks, n, p.numWorkers)
	}

	p.gangMu.Lock()
	defer p.gangMu.Unlock()

	if p.closed.Load() {
		return ErrClosed
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		p.workC <- workItem{
			fn: func() {
				defer func() {
					if r := recover(); r != nil {
						errs[i] = fmt.Errorf("workerpool: task %d panicked: %v", i, r)
					}
				}()
				errs[i] = fn(i)
			},
			barrier: &wg,
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}
