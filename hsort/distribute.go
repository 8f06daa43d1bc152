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
)

// Distribution returns how n elements are spread over p ranks: the first
// n mod p ranks get one extra element. displs[r] is the offset of rank r's
// first element.
func Distribution(n, p int) (counts, displs []int) {
	counts = make([]int, p)
	displs = make([]int, p)
	base, rem := n/p, n%p
	off := 0
	for r := range counts {
		counts[r] = base
		if r < rem {
			counts[r]++
		}
		displs[r] = off
		off += counts[r]
	}
	return counts, displs
}

// Scatter distributes n elements of data from world rank 0 according to
// Distribution and returns this rank's chunk. data is only read on rank 0.
func Scatter(ctx context.Context, world *comm.Group, data []int64, n int) (*Chunk, error) {
	counts, _ := Distribution(n, world.Size())
	var c []int
	if world.Rank() == 0 {
		if len(data) != n {
			return nil, fmt.Errorf("%w: scatter of %d elements from %d", comm.ErrSizeMismatch, n, len(data))
		}
		c = counts
	}
	part, err := world.Scatterv(ctx, 0, data, c)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	if want := counts[world.Rank()]; len(part) != want {
		return nil, fmt.Errorf("%w: scattered chunk has %d elements, want %d", comm.ErrSizeMismatch, len(part), want)
	}
	return ChunkOf(part), nil
}
