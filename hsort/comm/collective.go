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

package comm

import (
	"context"
	"fmt"
	"math"
)

const (
	tagBcast uint16 = TagReserved + iota + 1
	tagGather
	tagScatter
)

// Bcast distributes data from root to every member along a binomial tree
// and returns it. data is only read on root.
func (g *Group) Bcast(ctx context.Context, root int, data []int64) ([]int64, error) {
	if err := g.checkRank(root); err != nil {
		return nil, err
	}
	size := g.Size()
	rel := (g.rank - root + size) % size

	mask := 1
	for mask < size {
		if rel&mask != 0 {
			src := (rel - mask + root) % size
			buf, err := g.RecvNew(ctx, src, tagBcast)
			if err != nil {
				return nil, fmt.Errorf("bcast from %d: %w", src, err)
			}
			data = buf
			break
		}
		mask <<= 1
	}

	for mask >>= 1; mask > 0; mask >>= 1 {
		if rel+mask < size {
			dst := (rel + mask + root) % size
			if err := g.send(ctx, dst, tagBcast, data); err != nil {
				return nil, fmt.Errorf("bcast to %d: %w", dst, err)
			}
		}
	}
	return data, nil
}

// BcastInt broadcasts a single value from root.
func (g *Group) BcastInt(ctx context.Context, root int, v int64) (int64, error) {
	out, err := g.Bcast(ctx, root, []int64{v})
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("%w: broadcast of one value delivered %d", ErrSizeMismatch, len(out))
	}
	return out[0], nil
}

// Gather collects every member's data on root, indexed by group rank.
// Non-root members receive nil.
func (g *Group) Gather(ctx context.Context, root int, data []int64) ([][]int64, error) {
	if err := g.checkRank(root); err != nil {
		return nil, err
	}
	if g.rank != root {
		if err := g.send(ctx, root, tagGather, data); err != nil {
			return nil, fmt.Errorf("gather to %d: %w", root, err)
		}
		return nil, nil
	}

	out := make([][]int64, g.Size())
	for r := range out {
		if r == root {
			out[r] = append([]int64(nil), data...)
			continue
		}
		buf, err := g.RecvNew(ctx, r, tagGather)
		if err != nil {
			return nil, fmt.Errorf("gather from %d: %w", r, err)
		}
		out[r] = buf
	}
	return out, nil
}

// Allgather is Gather to rank 0 followed by a broadcast of the result, so
// every member sees every contribution.
func (g *Group) Allgather(ctx context.Context, data []int64) ([][]int64, error) {
	parts, err := g.Gather(ctx, 0, data)
	if err != nil {
		return nil, err
	}

	// Flatten as [len0, len1, ..., values0..., values1...].
	var flat []int64
	if g.rank == 0 {
		flat = make([]int64, 0, g.Size())
		for _, p := range parts {
			flat = append(flat, int64(len(p)))
		}
		for _, p := range parts {
			flat = append(flat, p...)
		}
	}
	flat, err = g.Bcast(ctx, 0, flat)
	if err != nil {
		return nil, err
	}

	size := g.Size()
	if len(flat) < size {
		return nil, fmt.Errorf("%w: allgather header has %d values for %d members", ErrSizeMismatch, len(flat), size)
	}
	out := make([][]int64, size)
	off := size
	for r := range out {
		n := int(flat[r])
		if n < 0 || off+n > len(flat) {
			return nil, fmt.Errorf("%w: allgather part %d overruns payload", ErrSizeMismatch, r)
		}
		out[r] = flat[off : off+n : off+n]
		off += n
	}
	return out, nil
}

// Scatterv sends counts[r] consecutive values of data to each member r and
// returns this member's part. data and counts are only read on root.
func (g *Group) Scatterv(ctx context.Context, root int, data []int64, counts []int) ([]int64, error) {
	if err := g.checkRank(root); err != nil {
		return nil, err
	}
	if g.rank != root {
		buf, err := g.RecvNew(ctx, root, tagScatter)
		if err != nil {
			return nil, fmt.Errorf("scatter from %d: %w", root, err)
		}
		return buf, nil
	}

	if len(counts) != g.Size() {
		return nil, fmt.Errorf("%w: %d counts for %d members", ErrSizeMismatch, len(counts), g.Size())
	}
	var own []int64
	off := 0
	for r, c := range counts {
		if c < 0 || off+c > len(data) {
			return nil, fmt.Errorf("%w: count %d for rank %d overruns %d values", ErrSizeMismatch, c, r, len(data))
		}
		part := data[off : off+c]
		off += c
		if r == root {
			own = append([]int64(nil), part...)
			continue
		}
		if err := g.send(ctx, r, tagScatter, part); err != nil {
			return nil, fmt.Errorf("scatter to %d: %w", r, err)
		}
	}
	return own, nil
}

// ReduceMax returns the maximum of every member's v on root. Other
// members receive their own v back.
func (g *Group) ReduceMax(ctx context.Context, root int, v float64) (float64, error) {
	parts, err := g.Gather(ctx, root, []int64{int64(math.Float64bits(v))})
	if err != nil {
		return 0, err
	}
	if g.rank != root {
		return v, nil
	}
	best := math.Inf(-1)
	for r, p := range parts {
		if len(p) != 1 {
			return 0, fmt.Errorf("%w: reduce value of rank %d has %d words", ErrSizeMismatch, r, len(p))
		}
		best = math.Max(best, math.Float64frombits(uint64(p[0])))
	}
	return best, nil
}

// Barrier returns once every member has entered it.
func (g *Group) Barrier(ctx context.Context) error {
	_, err := g.Allgather(ctx, nil)
	return err
}
