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

package localsort

import "math/big"

// Helper functions shared by the introsort path and the pivot selector.

// PivotMedianOf3 selects pivot as median of first, middle, and last elements.
func PivotMedianOf3(data []int64) int64 {
	n := len(data)
	if n <= 2 {
		return data[0]
	}

	a := data[0]
	b := data[n/2]
	c := data[n-1]

	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
		if a > b {
			b = a
		}
	}
	return b
}

// PivotSampled selects pivot by sampling elements at regular intervals.
// For larger arrays, this gives a better pivot estimate than median-of-3.
func PivotSampled(data []int64) int64 {
	n := len(data)
	if n <= 8 {
		return PivotMedianOf3(data)
	}

	samples := []int64{
		data[0],
		data[n/4],
		data[n/2],
		data[3*n/4],
		data[n-1],
	}

	insertionSort(samples)
	return samples[2]
}

// Partition3Way performs 3-way partitioning (Dutch National Flag).
// Returns (lt, gt) indices where:
//   - data[0:lt] < pivot
//   - data[lt:gt] == pivot
//   - data[gt:n] > pivot
func Partition3Way(data []int64, pivot int64) (int, int) {
	lt := 0
	gt := len(data)
	i := 0

	for i < gt {
		if data[i] < pivot {
			data[lt], data[i] = data[i], data[lt]
			lt++
			i++
		} else if data[i] > pivot {
			gt--
			data[i], data[gt] = data[gt], data[i]
		} else {
			i++
		}
	}

	return lt, gt
}

// Median returns the median of sorted data. For an even length it is the
// average of the two central elements, truncated toward zero. Median
// panics if data is empty.
func Median(sorted []int64) int64 {
	n := len(sorted)
	if n == 0 {
		panic("localsort: median of empty slice")
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return average(sorted[n/2-1], sorted[n/2])
}

// average returns (a+b)/2 truncated toward zero without overflowing.
func average(a, b int64) int64 {
	s := a + b
	// The sum only overflows when both operands share a sign and the
	// result does not.
	if (a >= 0) != (b >= 0) || (s >= 0) == (a >= 0) {
		return s / 2
	}
	// Same sign: quotients and remainders share it too, so truncation of
	// the parts equals truncation of the whole.
	return a/2 + b/2 + (a%2+b%2)/2
}

// Mean returns the arithmetic mean of values truncated toward zero. The
// sum is accumulated in arbitrary precision so it cannot overflow. Mean
// panics if values is empty.
func Mean(values []int64) int64 {
	if len(values) == 0 {
		panic("localsort: mean of empty slice")
	}
	sum := new(big.Int)
	var v big.Int
	for _, x := range values {
		sum.Add(sum, v.SetInt64(x))
	}
	// Quo truncates toward zero.
	sum.Quo(sum, big.NewInt(int64(len(values))))
	return sum.Int64()
}
