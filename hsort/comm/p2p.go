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
	"context"
	"fmt"
)

// Tags at or above TagReserved belong to the collectives.
const TagReserved uint16 = 0xff00

// Request is an outstanding non-blocking operation.
type Request struct {
	done chan struct{}
	err  error
}

func start(fn func() error) *Request {
	r := &Request{done: make(chan struct{})}
	go func() {
		r.err = fn()
		close(r.done)
	}()
	return r
}

// Wait blocks until the operation completes and returns its error.
func (r *Request) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitAll waits for every request and returns the first error.
func WaitAll(ctx context.Context, reqs ...*Request) error {
	var first error
	for _, r := range reqs {
		if err := r.Wait(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (g *Group) checkTag(tag uint16) error {
	if tag >= TagReserved {
		return fmt.Errorf("%w: %#x", ErrReservedTag, tag)
	}
	return nil
}

// Send sends data to group rank peer. It returns once data may be reused.
func (g *Group) Send(ctx context.Context, peer int, tag uint16, data []int64) error {
	if err := g.checkTag(tag); err != nil {
		return err
	}
	return g.send(ctx, peer, tag, data)
}

func (g *Group) send(ctx context.Context, peer int, tag uint16, data []int64) error {
	if err := g.checkRank(peer); err != nil {
		return err
	}
	return g.t.Send(ctx, g.members[peer], MakeTag(g.id, tag), EncodeInt64s(data))
}

// Isend starts sending data to group rank peer. data is copied before
// Isend returns.
func (g *Group) Isend(ctx context.Context, peer int, tag uint16, data []int64) *Request {
	if err := g.checkTag(tag); err != nil {
		return failed(err)
	}
	if err := g.checkRank(peer); err != nil {
		return failed(err)
	}
	payload := EncodeInt64s(data)
	dst, t := g.members[peer], MakeTag(g.id, tag)
	return start(func() error {
		return g.t.Send(ctx, dst, t, payload)
	})
}

func failed(err error) *Request {
	r := &Request{done: make(chan struct{}), err: err}
	close(r.done)
	return r
}

// Probe blocks until a message from group rank peer with tag is pending
// and returns its length in int64 values.
func (g *Group) Probe(ctx context.Context, peer int, tag uint16) (int, error) {
	if err := g.checkRank(peer); err != nil {
		return 0, err
	}
	n, err := g.t.Probe(ctx, g.members[peer], MakeTag(g.id, tag))
	if err != nil {
		return 0, err
	}
	return words(n)
}

// Recv receives the next message from group rank peer with tag into buf.
// len(buf) must equal the message length.
func (g *Group) Recv(ctx context.Context, peer int, tag uint16, buf []int64) error {
	if err := g.checkRank(peer); err != nil {
		return err
	}
	raw := make([]byte, len(buf)*wordSize)
	if err := g.t.Recv(ctx, g.members[peer], MakeTag(g.id, tag), raw); err != nil {
		return err
	}
	return DecodeInt64s(raw, buf)
}

// Irecv starts receiving into buf. buf must not be touched until the
// request completes.
func (g *Group) Irecv(ctx context.Context, peer int, tag uint16, buf []int64) *Request {
	if err := g.checkRank(peer); err != nil {
		return failed(err)
	}
	return start(func() error {
		return g.Recv(ctx, peer, tag, buf)
	})
}

// RecvNew probes for the next message from peer with tag, allocates a
// buffer of exactly its length and receives into it.
func (g *Group) RecvNew(ctx context.Context, peer int, tag uint16) ([]int64, error) {
	n, err := g.Probe(ctx, peer, tag)
	if err != nil {
		return nil, err
	}
	buf := make([]int64, n)
	if err := g.Recv(ctx, peer, tag, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
