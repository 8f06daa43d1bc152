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

// Thresholds for different sorting strategies.
const (
	// insertionThreshold: use insertion sort for arrays this size or smaller.
	insertionThreshold = 32

	// radixThreshold: use radix sort for arrays this size or larger.
	// Below it the two scratch passes cost more than introsort's recursion.
	radixThreshold = 2048
)

// Sort sorts data in-place in ascending order using the best algorithm
// for the input size:
//   - Tiny arrays: insertion sort
//   - Medium arrays: introsort
//   - Large arrays: LSD radix sort (O(n) vs O(n log n))
func Sort(data []int64) {
	n := len(data)
	switch {
	case n <= 1:
		return
	case n <= insertionThreshold:
		insertionSort(data)
	case n < radixThreshold:
		IntroSort(data)
	default:
		RadixSort(data)
	}
}

// IntroSort sorts data in-place using quicksort with a sampled median
// pivot and 3-way partitioning, falling back to heapsort once the
// recursion exceeds 2*floor(log2(n)) levels.
func IntroSort(data []int64) {
	n := len(data)
	if n <= 1 {
		return
	}
	introSortImpl(data, maxDepth(n))
}

// maxDepth returns the introsort recursion budget for n elements.
func maxDepth(n int) int {
	depth := 0
	for tmp := n; tmp > 0; tmp >>= 1 {
		depth++
	}
	return depth * 2
}

func introSortImpl(data []int64, depthLimit int) {
	for {
		n := len(data)
		if n <= insertionThreshold {
			insertionSort(data)
			return
		}

		if depthLimit == 0 {
			heapSort(data)
			return
		}
		depthLimit--

		pivot := PivotSampled(data)
		lt, gt := Partition3Way(data, pivot)

		// Recurse into the smaller side, loop on the larger one.
		if lt < n-gt {
			introSortImpl(data[:lt], depthLimit)
			data = data[gt:]
		} else {
			introSortImpl(data[gt:], depthLimit)
			data = data[:lt]
		}
	}
}

// insertionSort is insertion sort for small arrays.
func insertionSort(data []int64) {
	for i := 1; i < len(data); i++ {
		key := data[i]
		j := i - 1
		for j >= 0 && data[j] > key {
			data[j+1] = data[j]
			j--
		}
		data[j+1] = key
	}
}

// heapSort is heapsort for O(n log n) worst-case guarantee.
func heapSort(data []int64) {
	n := len(data)
	if n <= 1 {
		return
	}

	// Build max-heap
	for i := n/2 - 1; i >= 0; i-- {
		siftDown(data, i, n)
	}

	// Extract elements
	for i := n - 1; i > 0; i-- {
		data[0], data[i] = data[i], data[0]
		siftDown(data, 0, i)
	}
}

func siftDown(data []int64, i, n int) {
	for {
		largest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && data[left] > data[largest] {
			largest = left
		}
		if right < n && data[right] > data[largest] {
			largest = right
		}

		if largest == i {
			break
		}

		data[i], data[largest] = data[largest], data[i]
		i = largest
	}
}

// IsSorted reports whether data is in non-decreasing order.
func IsSorted(data []int64) bool {
	for i := 1; i < len(data); i++ {
		if data[i] < data[i-1] {
			return false
		}
	}
	return true
}
