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
	"encoding/binary"
	"fmt"
)

// wordSize is the encoded size of one int64.
const wordSize = 8

// EncodeInt64s returns data as little-endian bytes.
func EncodeInt64s(data []int64) []byte {
	buf := make([]byte, len(data)*wordSize)
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[i*wordSize:], uint64(v))
	}
	return buf
}

// DecodeInt64s decodes little-endian bytes into dst, which must hold
// exactly len(b)/8 values.
func DecodeInt64s(b []byte, dst []int64) error {
	if len(b) != len(dst)*wordSize {
		return fmt.Errorf("%w: %d bytes into %d values", ErrSizeMismatch, len(b), len(dst))
	}
	for i := range dst {
		dst[i] = int64(binary.LittleEndian.Uint64(b[i*wordSize:]))
	}
	return nil
}

// words converts a probed byte length to an int64 count.
func words(n int) (int, error) {
	if n%wordSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a whole number of int64 values", ErrSizeMismatch, n)
	}
	return n / wordSize, nil
}
