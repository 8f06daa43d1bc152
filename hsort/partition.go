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

	"github.com/sirupsen/logrus"

	"github.com/ajroetker/go-hypersort/hsort/comm"
)

// SplitIndex returns k such that sorted[:k] <= pivot < sorted[k:]. It
// scans from the midpoint toward the boundary, so balanced splits cost
// little.
func SplitIndex(sorted []int64, pivot int64) int {
	n := len(sorted)
	i := n / 2
	if i < n && sorted[i] <= pivot {
		for i < n && sorted[i] <= pivot {
			i++
		}
		return i
	}
	for i > 0 && sorted[i-1] > pivot {
		i--
	}
	return i
}

// role is one rank's part in a level of the recursion.
type role struct {
	half    int  // size of the lower sub-group
	low     bool // rank belongs to the lower sub-group
	partner int  // paired rank, -1 for the unpaired rank of an odd group
	extra   int  // unpaired rank: where to send; last low rank: whom to expect; else -1
}

// pairing assigns rank its role in a group of size > 1. Ranks pair across
// the split at offset half. In an odd group the upper half has one more
// member, rank size-1, which pairs with nobody and hands its low part to
// rank half-1.
func pairing(rank, size int) role {
	half := size / 2
	r := role{half: half, partner: -1, extra: -1}
	switch {
	case rank < half:
		r.low = true
		r.partner = rank + half
		if size%2 == 1 && rank == half-1 {
			r.extra = size - 1
		}
	case rank < 2*half:
		r.partner = rank - half
	default:
		r.extra = half - 1
	}
	return r
}

// Hyperquicksort runs the recursive bisection on g until every group has
// a single member and returns this rank's final chunk. chunk must be
// sorted; Hyperquicksort takes ownership of it.
func Hyperquicksort(ctx context.Context, g *comm.Group, chunk *Chunk, s Strategy, log *logrus.Entry) (*Chunk, error) {
	if log == nil {
		log = g.Logger()
	}
	for level := 0; g.Size() > 1; level++ {
		next, child, err := bisect(ctx, g, chunk, s)
		if err != nil {
			return nil, fmt.Errorf("level %d (group %d): %w", level, g.ID(), err)
		}
		log.WithFields(logrus.Fields{
			"level": level,
			"group": g.ID(),
			"size":  next.Len(),
		}).Debug("level done")
		chunk, g = next, child
	}
	return chunk, nil
}

// bisect performs one level: pivot, split, exchange, merge, group split.
func bisect(ctx context.Context, g *comm.Group, chunk *Chunk, s Strategy) (*Chunk, *comm.Group, error) {
	pivot, err := SelectPivot(ctx, g, chunk.Data(), s)
	if err != nil {
		return nil, nil, err
	}
	data := chunk.Data()
	k := SplitIndex(data, pivot)
	r := pairing(g.Rank(), g.Size())

	runs := []*Chunk{chunk}
	switch {
	case r.partner < 0:
		if err := SendRun(ctx, g, r.extra, data[:k]); err != nil {
			return nil, nil, err
		}
		chunk.Narrow(k, len(data))
	case r.low:
		in, err := Exchange(ctx, g, r.partner, data[k:], ToHigh)
		if err != nil {
			return nil, nil, err
		}
		chunk.Narrow(0, k)
		runs = append(runs, in)
		if r.extra >= 0 {
			in, err := RecvRun(ctx, g, r.extra)
			if err != nil {
				return nil, nil, err
			}
			runs = append(runs, in)
		}
	default:
		in, err := Exchange(ctx, g, r.partner, data[:k], ToLow)
		if err != nil {
			return nil, nil, err
		}
		chunk.Narrow(k, len(data))
		runs = append(runs, in)
	}
	kept := chunk.Len()
	merged := MergeRuns(runs...)

	child, err := g.Split(ctx, r.low)
	if err != nil {
		return nil, nil, err
	}
	g.Logger().WithFields(logrus.Fields{
		"group": g.ID(),
		"pivot": pivot,
		"kept":  kept,
		"split": k,
	}).Trace("bisected")
	return merged, child, nil
}
