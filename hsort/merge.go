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

// Merge merges two ascending chunks into a new chunk of length
// a.Len()+b.Len(). On equal values the element from a comes first. Merge
// takes ownership of a and b and releases them.
func Merge(a, b *Chunk) *Chunk {
	out := NewChunk(a.Len() + b.Len())
	mergeInto(out.Data(), a.Data(), b.Data())
	a.Release()
	b.Release()
	return out
}

// MergeRuns merges any number of ascending chunks pairwise, in a balanced
// tournament, and takes ownership of all of them. Ties keep argument order.
func MergeRuns(runs ...*Chunk) *Chunk {
	if len(runs) == 0 {
		return NewChunk(0)
	}
	for len(runs) > 1 {
		next := runs[:0:0]
		for i := 0; i+1 < len(runs); i += 2 {
			next = append(next, Merge(runs[i], runs[i+1]))
		}
		if len(runs)%2 == 1 {
			next = append(next, runs[len(runs)-1])
		}
		runs = next
	}
	return runs[0]
}

// mergeInto is a linear two-pointer merge. len(dst) must be
// len(a)+len(b).
func mergeInto(dst, a, b []int64) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if b[j] < a[i] {
			dst[k] = b[j]
			j++
		} else {
			dst[k] = a[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}
