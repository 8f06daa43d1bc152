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

// TreeReduce merges every rank's chunk to world rank 0 along a binary
// tree. At step s = 1, 2, 4, ... a rank that is a multiple of 2s receives
// the chunk of rank+s (length header, then payload) and merges it in; any
// other rank sends its chunk to rank-s and stops. world must be the root
// group, since the tree is laid over original ranks.
//
// TreeReduce takes ownership of chunk. Rank 0 gets the merged result;
// other ranks get nil.
func TreeReduce(ctx context.Context, world *comm.Group, chunk *Chunk) (*Chunk, error) {
	rank, size := world.Rank(), world.Size()
	for step := 1; step < size; step *= 2 {
		if rank%(2*step) != 0 {
			dst := rank - step
			if err := world.Send(ctx, dst, tagTreeLen, []int64{int64(chunk.Len())}); err != nil {
				return nil, fmt.Errorf("tree step %d: send header to %d: %w", step, dst, err)
			}
			if err := world.Send(ctx, dst, tagTreeData, chunk.Data()); err != nil {
				return nil, fmt.Errorf("tree step %d: send chunk to %d: %w", step, dst, err)
			}
			chunk.Release()
			return nil, nil
		}

		src := rank + step
		if src >= size {
			continue
		}
		var hdr [1]int64
		if err := world.Recv(ctx, src, tagTreeLen, hdr[:]); err != nil {
			return nil, fmt.Errorf("tree step %d: header from %d: %w", step, src, err)
		}
		if hdr[0] < 0 {
			return nil, fmt.Errorf("tree step %d: %w: %d from %d", step, ErrBadHeader, hdr[0], src)
		}
		other := NewChunk(int(hdr[0]))
		if err := world.Recv(ctx, src, tagTreeData, other.Data()); err != nil {
			return nil, fmt.Errorf("tree step %d: chunk from %d: %w", step, src, err)
		}
		chunk = Merge(chunk, other)
	}
	return chunk, nil
}
