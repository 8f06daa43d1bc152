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

package hsort

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitIndex(t *testing.T) {
	tests := []struct {
		data  []int64
		pivot int64
		want  int
	}{
		{nil, 5, 0},
		{[]int64{1}, 0, 0},
		{[]int64{1}, 1, 1},
		{[]int64{1, 2, 3, 4, 5}, 3, 3},
		{[]int64{1, 2, 3, 4, 5}, 0, 0},
		{[]int64{1, 2, 3, 4, 5}, 9, 5},
		{[]int64{3, 3, 3, 3}, 3, 4},
		{[]int64{1, 3, 3, 3, 3, 7}, 2, 1},
		{[]int64{1, 2, 2, 2, 9, 9, 9}, 8, 4},
	}
	for _, tt := range tests {
		if got := SplitIndex(tt.data, tt.pivot); got != tt.want {
			t.Errorf("SplitIndex(%v, %d) = %d, want %d", tt.data, tt.pivot, got, tt.want)
		}
	}
}

func TestSplitIndexMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for range 500 {
		data := sortedRandom(rng, rng.Intn(40), 20)
		pivot := rng.Int63n(24) - 2
		k := SplitIndex(data, pivot)
		for i, v := range data {
			if (i < k) != (v <= pivot) {
				t.Fatalf("SplitIndex(%v, %d) = %d: element %d misrouted", data, pivot, k, i)
			}
		}
	}
}

func TestPairing(t *testing.T) {
	for size := 2; size <= 17; size++ {
		half := size / 2
		senders := map[int]int{} // receiver -> number of runs it expects
		for rank := range size {
			r := pairing(rank, size)
			require.Equal(t, half, r.half)
			require.Equal(t, rank < half, r.low, "size %d rank %d", size, rank)
			if r.partner >= 0 {
				back := pairing(r.partner, size)
				require.Equal(t, rank, back.partner, "size %d: pairing not symmetric", size)
				require.NotEqual(t, r.low, back.low, "size %d: partners on same side", size)
				senders[rank]++
			} else {
				require.Equal(t, size-1, rank)
				require.Equal(t, 1, size%2)
				require.Equal(t, half-1, r.extra)
				require.Equal(t, rank, pairing(r.extra, size).extra)
			}
		}
		require.Len(t, senders, 2*half, "size %d", size)
	}
}

func TestDistribution(t *testing.T) {
	tests := []struct {
		n, p   int
		counts []int
	}{
		{10, 3, []int{4, 3, 3}},
		{8, 4, []int{2, 2, 2, 2}},
		{0, 3, []int{0, 0, 0}},
		{2, 5, []int{1, 1, 0, 0, 0}},
	}
	for _, tt := range tests {
		counts, displs := Distribution(tt.n, tt.p)
		require.Equal(t, tt.counts, counts)
		off := 0
		for r := range counts {
			require.Equal(t, off, displs[r])
			off += counts[r]
		}
		require.Equal(t, tt.n, off)
		require.True(t, slices.IsSorted(displs))
	}
}
