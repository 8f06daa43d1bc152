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

const (
	radixBits    = 8
	radixBuckets = 1 << radixBits
	radixMask    = radixBuckets - 1
	radixPasses  = 64 / radixBits
)

// RadixSort sorts data in-place using LSD radix sort with 8-bit digits.
// The final pass orders the sign byte so that negative values come first.
// Passes in which every element has the same digit are skipped, so inputs
// drawn from a narrow range cost only as many passes as they have
// significant bytes.
func RadixSort(data []int64) {
	n := len(data)
	if n <= 1 {
		return
	}

	// One histogram sweep for all passes.
	var counts [radixPasses][radixBuckets]int
	for _, v := range data {
		u := uint64(v)
		for p := 0; p < radixPasses; p++ {
			counts[p][(u>>(uint(p)*radixBits))&radixMask]++
		}
	}

	scratch := make([]int64, n)
	src, dst := data, scratch
	for p := 0; p < radixPasses; p++ {
		if trivialPass(&counts[p], n) {
			continue
		}
		signed := p == radixPasses-1
		radixPass(src, dst, uint(p)*radixBits, &counts[p], signed)
		src, dst = dst, src
	}

	// An odd number of executed passes leaves the result in scratch.
	if &src[0] != &data[0] {
		copy(data, src)
	}
}

// trivialPass reports whether a single bucket holds every element.
func trivialPass(count *[radixBuckets]int, n int) bool {
	for _, c := range count {
		if c == n {
			return true
		}
		if c != 0 {
			return false
		}
	}
	return false
}

// radixPass scatters src into dst by the digit at shift. For the sign
// byte, buckets 128-255 (negative) come before 0-127 (positive).
func radixPass(src, dst []int64, shift uint, count *[radixBuckets]int, signed bool) {
	var offsets [radixBuckets]int
	offset := 0
	if signed {
		for b := radixBuckets / 2; b < radixBuckets; b++ {
			offsets[b] = offset
			offset += count[b]
		}
		for b := 0; b < radixBuckets/2; b++ {
			offsets[b] = offset
			offset += count[b]
		}
	} else {
		for b := 0; b < radixBuckets; b++ {
			offsets[b] = offset
			offset += count[b]
		}
	}

	for _, v := range src {
		digit := (uint64(v) >> shift) & radixMask
		dst[offsets[digit]] = v
		offsets[digit]++
	}
}
