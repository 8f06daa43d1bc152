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

import "context"

// Tag addresses a message stream between two ranks. The upper 48 bits carry
// the group id, the lower 16 bits the per-group message tag.
type Tag uint64

// MakeTag combines a group id with a per-group tag.
func MakeTag(groupID uint64, tag uint16) Tag {
	return Tag(groupID<<16 | uint64(tag))
}

// Group returns the group id part of t.
func (t Tag) Group() uint64 { return uint64(t) >> 16 }

// Local returns the per-group part of t.
func (t Tag) Local() uint16 { return uint16(t) }

// Transport moves byte payloads between the ranks of a world.
//
// Send returns once payload may be reused by the caller; it does not wait
// for the receiver. Probe blocks until a message from src with tag is
// pending and returns its length without consuming it. Recv consumes that
// message into buf, whose length must equal the probed length.
//
// Abort fails every blocking call on every rank of the world. Close
// releases the local endpoint.
type Transport interface {
	Rank() int
	Size() int
	Send(ctx context.Context, dst int, tag Tag, payload []byte) error
	Probe(ctx context.Context, src int, tag Tag) (int, error)
	Recv(ctx context.Context, src int, tag Tag, buf []byte) error
	Abort(err error)
	Close() error
}
