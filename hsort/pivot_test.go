// Copyright 2025 go-hypersort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hsort_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-hypersort/hsort"
	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/transport/local"
)

// pivots runs SelectPivot once on a world where rank r holds chunks[r]
// and returns what every rank observed.
func pivots(t *testing.T, chunks [][]int64, s hsort.Strategy) []int64 {
	t.Helper()
	got := make([]int64, len(chunks))
	var mu sync.Mutex
	err := local.Run(context.Background(), nil, len(chunks), func(ctx context.Context, tr comm.Transport) error {
		p, err := hsort.SelectPivot(ctx, comm.World(tr, nil), chunks[tr.Rank()], s)
		if err != nil {
			return err
		}
		mu.Lock()
		got[tr.Rank()] = p
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	return got
}

func requireAgreed(t *testing.T, got []int64, want int64) {
	t.Helper()
	for r, p := range got {
		require.Equal(t, want, p, "rank %d", r)
	}
}

func TestPivotStrategies(t *testing.T) {
	chunks := [][]int64{
		{1, 2, 3},      // median 2
		{10, 20},       // median 15
		{-7, -5, 0, 4}, // median -2 (-2.5 truncated toward zero)
		{100},          // median 100
	}
	requireAgreed(t, pivots(t, chunks, hsort.LocalMedian), 2)
	// medians sorted: -2, 2, 15, 100 -> (2+15)/2 = 8
	requireAgreed(t, pivots(t, chunks, hsort.MedianOfMedians), 8)
	// mean: (2+15-2+100)/4 = 28
	requireAgreed(t, pivots(t, chunks, hsort.MeanOfMedians), 28)
}

func TestPivotSkipsEmptyChunks(t *testing.T) {
	chunks := [][]int64{{}, {5}, {}, {9, 11}}
	// LocalMedian falls back to median of medians: (5+10)/2 = 7.
	requireAgreed(t, pivots(t, chunks, hsort.LocalMedian), 7)
	requireAgreed(t, pivots(t, chunks, hsort.MeanOfMedians), 7)
}

func TestPivotAllEmpty(t *testing.T) {
	for _, s := range hsort.Strategies {
		requireAgreed(t, pivots(t, [][]int64{{}, {}, {}}, s), 0)
	}
}
