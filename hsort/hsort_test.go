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
	"math/rand"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modernc.org/sortutil"

	"github.com/ajroetker/go-hypersort/hsort"
	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/transport/local"
)

// sortDistributed runs hsort.Run on an in-process world and returns rank
// 0's result.
func sortDistributed(t *testing.T, p int, input []int64, s hsort.Strategy) *hsort.Result {
	t.Helper()
	var res *hsort.Result
	err := local.Run(context.Background(), nil, p, func(ctx context.Context, tr comm.Transport) error {
		var in []int64
		if tr.Rank() == 0 {
			in = input
		}
		r, err := hsort.Run(ctx, comm.World(tr, nil), in, hsort.Options{Strategy: s, CollectBalance: true})
		if err != nil {
			return err
		}
		if tr.Rank() == 0 {
			res = r
		}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// reference sorts a copy of data with an independent implementation.
func reference(data []int64) []int64 {
	want := slices.Clone(data)
	sort.Sort(sortutil.Int64Slice(want))
	return want
}

func randomInput(seed int64, n int, span int64) []int64 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]int64, n)
	for i := range data {
		data[i] = rng.Int63n(span)
	}
	return data
}

func TestScenarioSingleRank(t *testing.T) {
	res := sortDistributed(t, 1, []int64{5, 3, 1, 4, 2}, hsort.LocalMedian)
	require.Equal(t, []int64{1, 2, 3, 4, 5}, res.Sorted)
	require.Equal(t, []int{5}, res.ChunkSizes)
}

func TestScenarioReverseFourRanks(t *testing.T) {
	res := sortDistributed(t, 4, []int64{8, 7, 6, 5, 4, 3, 2, 1}, hsort.MedianOfMedians)
	require.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, res.Sorted)
}

func TestScenarioRandomAllStrategies(t *testing.T) {
	input := randomInput(42, 1000, 1_000_000)
	want := reference(input)
	for _, s := range hsort.Strategies {
		t.Run(s.String(), func(t *testing.T) {
			res := sortDistributed(t, 8, slices.Clone(input), s)
			require.Equal(t, want, res.Sorted)
			require.Len(t, res.ChunkSizes, 8)
		})
	}
}

func TestUnevenDistribution(t *testing.T) {
	input := []int64{9, -3, 7, 7, 0, 12, -8, 5, 1, 7}
	res := sortDistributed(t, 3, input, hsort.MedianOfMedians)
	require.Equal(t, reference(input), res.Sorted)
}

func TestNonPowerOfTwoRanks(t *testing.T) {
	input := randomInput(7, 333, 100)
	want := reference(input)
	for _, p := range []int{2, 3, 5, 6, 7, 9, 11} {
		for _, s := range hsort.Strategies {
			res := sortDistributed(t, p, slices.Clone(input), s)
			require.Equal(t, want, res.Sorted, "p=%d strategy=%v", p, s)
			total := 0
			for _, c := range res.ChunkSizes {
				total += c
			}
			require.Equal(t, len(input), total, "p=%d strategy=%v", p, s)
		}
	}
}

func TestMoreRanksThanElements(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		input := randomInput(int64(n), n, 10)
		for _, s := range hsort.Strategies {
			res := sortDistributed(t, 8, input, s)
			assert.Equal(t, len(input), len(res.Sorted))
			assert.True(t, slices.IsSorted(res.Sorted), "n=%d strategy=%v", n, s)
		}
	}
}

func TestAlreadySortedIsUnchanged(t *testing.T) {
	input := make([]int64, 257)
	for i := range input {
		input[i] = int64(i / 3)
	}
	for _, p := range []int{1, 4, 6} {
		res := sortDistributed(t, p, slices.Clone(input), hsort.MeanOfMedians)
		require.Equal(t, input, res.Sorted)
	}
}

func TestAllEqual(t *testing.T) {
	input := make([]int64, 100)
	for i := range input {
		input[i] = -4
	}
	res := sortDistributed(t, 4, input, hsort.LocalMedian)
	require.Equal(t, input, res.Sorted)
	// Ties route low, so everything ends up on rank 0.
	require.Equal(t, []int{100, 0, 0, 0}, res.ChunkSizes)
}

func TestExtremeValues(t *testing.T) {
	input := []int64{1 << 62, -(1 << 62), 9223372036854775807, -9223372036854775808, 0, 0, 1, -1}
	for _, s := range hsort.Strategies {
		res := sortDistributed(t, 4, slices.Clone(input), s)
		require.Equal(t, reference(input), res.Sorted)
	}
}

func TestElapsedReported(t *testing.T) {
	var mu sync.Mutex
	ticks := map[int]int{}
	err := local.Run(context.Background(), nil, 3, func(ctx context.Context, tr comm.Transport) error {
		// Each rank's clock advances by rank+1 seconds per reading.
		now := func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			ticks[tr.Rank()]++
			return time.Unix(int64(ticks[tr.Rank()]*(tr.Rank()+1)), 0)
		}
		var in []int64
		if tr.Rank() == 0 {
			in = []int64{3, 2, 1}
		}
		res, err := hsort.Run(ctx, comm.World(tr, nil), in, hsort.Options{Strategy: hsort.LocalMedian, Now: now})
		if err != nil {
			return err
		}
		assert.Equal(t, time.Duration(tr.Rank()+1)*time.Second, res.LocalElapsed)
		if tr.Rank() == 0 {
			assert.Equal(t, 3*time.Second, res.Elapsed)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestRunRejectsBadStrategy(t *testing.T) {
	err := local.Run(context.Background(), nil, 2, func(ctx context.Context, tr comm.Transport) error {
		_, err := hsort.Run(ctx, comm.World(tr, nil), nil, hsort.Options{Strategy: 7})
		return err
	})
	require.ErrorIs(t, err, hsort.ErrBadStrategy)
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]hsort.Strategy{
		"1":                 hsort.LocalMedian,
		"2":                 hsort.MedianOfMedians,
		" 3 ":               hsort.MeanOfMedians,
		"Median-Of-Medians": hsort.MedianOfMedians,
	} {
		got, err := hsort.ParseStrategy(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := hsort.ParseStrategy("4")
	require.ErrorIs(t, err, hsort.ErrBadStrategy)
}
