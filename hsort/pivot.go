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
	"context"
	"fmt"

	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/contrib/localsort"
)

// SelectPivot returns the pivot the group agrees on for one level. sorted
// is this rank's chunk in ascending order. Every member must call it, and
// every member receives the same value.
//
// An empty chunk has no median and contributes nothing to the aggregate
// strategies. If group rank 0 has no median under LocalMedian, the group
// falls back to MedianOfMedians for this level. If no member has a median
// the pivot is 0.
func SelectPivot(ctx context.Context, g *comm.Group, sorted []int64, s Strategy) (int64, error) {
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrBadStrategy, int(s))
	}
	local := localMedian(sorted)

	if s == LocalMedian {
		var msg []int64
		if g.Rank() == 0 {
			msg = local
		}
		got, err := g.Bcast(ctx, 0, msg)
		if err != nil {
			return 0, fmt.Errorf("broadcast local median: %w", err)
		}
		if len(got) == 1 {
			return got[0], nil
		}
		s = MedianOfMedians
	}

	parts, err := g.Gather(ctx, 0, local)
	if err != nil {
		return 0, fmt.Errorf("gather medians: %w", err)
	}
	var pivot int64
	if g.Rank() == 0 {
		pivot = aggregate(parts, s)
	}
	got, err := g.BcastInt(ctx, 0, pivot)
	if err != nil {
		return 0, fmt.Errorf("broadcast pivot: %w", err)
	}
	return got, nil
}

// localMedian returns a one-element slice holding the median of sorted,
// or nil when sorted is empty.
func localMedian(sorted []int64) []int64 {
	if len(sorted) == 0 {
		return nil
	}
	return []int64{localsort.Median(sorted)}
}

// aggregate combines the gathered medians on the group coordinator.
func aggregate(parts [][]int64, s Strategy) int64 {
	medians := make([]int64, 0, len(parts))
	for _, p := range parts {
		medians = append(medians, p...)
	}
	if len(medians) == 0 {
		return 0
	}
	if s == MeanOfMedians {
		return localsort.Mean(medians)
	}
	localsort.Sort(medians)
	return localsort.Median(medians)
}

func firstOr(v []int64, def int64) int64 {
	if len(v) == 0 {
		return def
	}
	return v[0]
}
