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

// Direction tags the two flows of a pairwise exchange. Each rank sends
// under its own direction and receives under the complement.
type Direction uint16

// Message tags used by the engine. Directions double as tags.
const (
	// ToHigh carries a lower-half rank's high part to its partner.
	ToHigh Direction = 1
	// ToLow carries an upper-half rank's low part to its partner.
	ToLow Direction = 2

	tagExtra    uint16 = 3
	tagTreeLen  uint16 = 4
	tagTreeData uint16 = 5
)

// Complement returns the direction of the opposite flow.
func (d Direction) Complement() Direction {
	if d == ToHigh {
		return ToLow
	}
	return ToHigh
}

// Exchange sends region to group rank peer under dir and receives the
// peer's region sent under dir.Complement(). The incoming length is
// learned by probing before the receive buffer is allocated, so the two
// sides may send any sizes. region is copied before Exchange blocks.
func Exchange(ctx context.Context, g *comm.Group, peer int, region []int64, dir Direction) (*Chunk, error) {
	send := g.Isend(ctx, peer, uint16(dir), region)

	n, err := g.Probe(ctx, peer, uint16(dir.Complement()))
	if err != nil {
		return nil, fmt.Errorf("probe %d: %w", peer, err)
	}
	in := NewChunk(n)
	recv := g.Irecv(ctx, peer, uint16(dir.Complement()), in.Data())

	if err := comm.WaitAll(ctx, send, recv); err != nil {
		// recv may still be writing into in, so it is not released.
		return nil, fmt.Errorf("exchange with %d: %w", peer, err)
	}
	return in, nil
}

// SendRun sends a run to peer outside of any pairwise exchange. It is used
// by the unpaired rank of an odd-sized group.
func SendRun(ctx context.Context, g *comm.Group, peer int, run []int64) error {
	if err := g.Send(ctx, peer, tagExtra, run); err != nil {
		return fmt.Errorf("send run to %d: %w", peer, err)
	}
	return nil
}

// RecvRun receives a run sent with SendRun.
func RecvRun(ctx context.Context, g *comm.Group, peer int) (*Chunk, error) {
	n, err := g.Probe(ctx, peer, tagExtra)
	if err != nil {
		return nil, fmt.Errorf("probe run from %d: %w", peer, err)
	}
	in := NewChunk(n)
	if err := g.Recv(ctx, peer, tagExtra, in.Data()); err != nil {
		return nil, fmt.Errorf("receive run from %d: %w", peer, err)
	}
	return in, nil
}
