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

// Package localsort sorts process-local int64 runs.
//
// It is the leaf primitive of the distributed sort: every rank sorts its
// scattered chunk with Sort before the first pivot is chosen, and the pivot
// selector uses Median and Mean on already sorted data.
//
// # Algorithm
//
// Sort dispatches on input size:
//   - Insertion sort for tiny arrays
//   - Introsort (sampled median pivot, 3-way partition, heapsort fallback)
//     for medium arrays
//   - LSD radix sort with 8-bit digits for large arrays, skipping passes
//     in which every element shares the same digit
//
// For explicit algorithm selection, use IntroSort or RadixSort directly.
//
// # Example Usage
//
//	import "github.com/ajroetker/go-hypersort/hsort/contrib/localsort"
//
//	func Prepare(chunk []int64) int64 {
//	    localsort.Sort(chunk)
//	    return localsort.Median(chunk)
//	}
package localsort
