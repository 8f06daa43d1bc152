// Copyright 2025 The go-hypersort Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestParallelFor(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 100
	results := make([]int, n)

	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = i * 2
		}
	})

	for i := 0; i < n; i++ {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestParallelForClosed(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close()

	var calls atomic.Int32
	pool.ParallelFor(10, func(start, end int) {
		calls.Add(1)
		if start != 0 || end != 10 {
			t.Errorf("closed pool ran [%d,%d), want [0,10)", start, end)
		}
	})
	if calls.Load() != 1 {
		t.Errorf("closed pool made %d calls, want 1", calls.Load())
	}
}

// TestGangRunsConcurrently only terminates if all tasks are live at once.
func TestGangRunsConcurrently(t *testing.T) {
	pool := New(6)
	defer pool.Close()

	const n = 6
	var arrived sync.WaitGroup
	arrived.Add(n)
	err := pool.Gang(n, func(i int) error {
		arrived.Done()
		arrived.Wait()
		return nil
	})
	if err != nil {
		t.Fatalf("Gang() = %v", err)
	}
	if pool.Busy() != 0 {
		t.Errorf("Busy() = %d after Gang, want 0", pool.Busy())
	}
}

func TestGangTooManyTasks(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	err := pool.Gang(3, func(int) error { return nil })
	if !errors.Is(err, ErrTooManyTasks) {
		t.Errorf("Gang(3) on 2 workers = %v, want ErrTooManyTasks", err)
	}
}

func TestGangErrors(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	boom := errors.New("boom")
	err := pool.Gang(4, func(i int) error {
		switch i {
		case 1:
			return boom
		case 2:
			panic("kaboom")
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("Gang() = %v, want it to wrap boom", err)
	}
	if err == nil || !strings.Contains(err.Error(), "panicked") {
		t.Errorf("Gang() = %v, want the panic reported", err)
	}
}

func TestGangClosed(t *testing.T) {
	pool := New(2)
	pool.Close()
	if err := pool.Gang(1, func(int) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Gang on closed pool = %v, want ErrClosed", err)
	}
}

func BenchmarkParallelFor(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	n := 1000
	data := make([]float32, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.ParallelFor(n, func(start, end int) {
			for j := start; j < end; j++ {
				data[j] = float32(j) * 2.0
			}
		})
	}
}
