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

// Package hsort sorts an int64 array spread across the ranks of a
// comm.Group using hyperquicksort followed by a binary-tree merge.
//
// # Algorithm
//
// Every rank sorts its scattered chunk locally. Then, while its group has
// more than one member:
//   - the group agrees on a pivot (SelectPivot),
//   - each rank splits its sorted chunk at the pivot (SplitIndex),
//   - ranks in the lower half send their high part to a partner in the
//     upper half and receive that partner's low part (Exchange),
//   - each rank merges what it kept with what it received (MergeRuns),
//   - the group splits into its lower and upper halves.
//
// Elements equal to the pivot always go to the lower half. When a group
// has an odd size the upper half has one extra rank; it hands its low part
// to the last rank of the lower half and receives nothing.
//
// Afterwards every rank's chunk is sorted and all elements of rank r are
// less than or equal to those of rank r+1. TreeReduce merges them to rank
// 0 in ceil(log2 P) steps.
//
// # Example Usage
//
//	err := local.Run(ctx, nil, 8, func(ctx context.Context, t comm.Transport) error {
//	    res, err := hsort.Run(ctx, comm.World(t, nil), input, hsort.Options{
//	        Strategy: hsort.MedianOfMedians,
//	    })
//	    if err != nil {
//	        return err
//	    }
//	    if t.Rank() == 0 {
//	        output = res.Sorted
//	    }
//	    return nil
//	})
package hsort
