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
	"sync"

	"modernc.org/mathutil"
)

// Chunk is an ownership-carrying handle to a rank's local run. Operations
// documented as taking ownership release their input chunks; a released
// chunk is empty and its storage may be reused by a later NewChunk.
type Chunk struct {
	buf  []int64 // backing storage, returned to the pool on Release
	data []int64 // visible window into buf
}

// NewChunk returns a chunk of n zero-or-stale values backed by pooled
// storage. Callers overwrite every element.
func NewChunk(n int) *Chunk {
	buf := buffers.get(n)
	return &Chunk{buf: buf, data: buf[:n]}
}

// ChunkOf adopts data as a chunk. The caller must not use data after the
// chunk is released.
func ChunkOf(data []int64) *Chunk {
	return &Chunk{buf: data, data: data}
}

// Len returns the number of visible values.
func (c *Chunk) Len() int { return len(c.data) }

// Data returns the visible values.
func (c *Chunk) Data() []int64 { return c.data }

// Narrow restricts the visible window to Data()[lo:hi] and returns c.
func (c *Chunk) Narrow(lo, hi int) *Chunk {
	c.data = c.data[lo:hi]
	return c
}

// Release returns the chunk's storage to the pool. Release is idempotent.
func (c *Chunk) Release() {
	if c.buf != nil {
		buffers.put(c.buf)
	}
	c.buf, c.data = nil, nil
}

var buffers bufferPool

// bufferPool recycles chunk storage in power-of-two size classes.
type bufferPool struct {
	classes [64]sync.Pool
}

func sizeClass(n int) int {
	return mathutil.BitLen(n - 1)
}

func (p *bufferPool) get(n int) []int64 {
	if n <= 0 {
		return nil
	}
	class := sizeClass(n)
	if v := p.classes[class].Get(); v != nil {
		return (*v.(*[]int64))[:n]
	}
	return make([]int64, n, 1<<class)
}

func (p *bufferPool) put(b []int64) {
	c := cap(b)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	b = b[:0]
	p.classes[sizeClass(c)].Put(&b)
}
