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

// Package local implements an in-process world: every rank is a goroutine
// with a private mailbox, and ranks share nothing but the messages they
// send. It is the default transport of the CLI and of the tests.
package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/contrib/workerpool"
)

// World is a set of in-process ranks.
type World struct {
	boxes []*comm.Mailbox

	mu    sync.Mutex
	cause error
}

// NewWorld returns a world of size ranks.
func NewWorld(size int) *World {
	w := &World{boxes: make([]*comm.Mailbox, size)}
	for i := range w.boxes {
		w.boxes[i] = comm.NewMailbox()
	}
	return w
}

// Size returns the number of ranks.
func (w *World) Size() int { return len(w.boxes) }

// Endpoint returns the transport of one rank.
func (w *World) Endpoint(rank int) *Endpoint {
	return &Endpoint{w: w, rank: rank}
}

// Abort fails every mailbox. The first cause is kept.
func (w *World) Abort(err error) {
	w.mu.Lock()
	if w.cause == nil {
		w.cause = err
	}
	w.mu.Unlock()

	aborted := fmt.Errorf("%w: %v", comm.ErrAborted, err)
	for _, b := range w.boxes {
		b.Fail(aborted)
	}
}

// Cause returns the error the world was first aborted with.
func (w *World) Cause() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cause
}

// Endpoint is one rank's view of a World. It implements comm.Transport.
type Endpoint struct {
	w    *World
	rank int
}

var _ comm.Transport = (*Endpoint)(nil)

func (e *Endpoint) Rank() int { return e.rank }
func (e *Endpoint) Size() int { return len(e.w.boxes) }

func (e *Endpoint) Send(ctx context.Context, dst int, tag comm.Tag, payload []byte) error {
	if dst < 0 || dst >= len(e.w.boxes) {
		return fmt.Errorf("%w: send to %d in world of %d", comm.ErrBadRank, dst, len(e.w.boxes))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.w.boxes[e.rank].Err(); err != nil {
		return err
	}
	e.w.boxes[dst].Deliver(e.rank, tag, append([]byte(nil), payload...))
	return nil
}

func (e *Endpoint) Probe(ctx context.Context, src int, tag comm.Tag) (int, error) {
	return e.w.boxes[e.rank].Probe(ctx, src, tag)
}

func (e *Endpoint) Recv(ctx context.Context, src int, tag comm.Tag, buf []byte) error {
	return e.w.boxes[e.rank].Receive(ctx, src, tag, buf)
}

func (e *Endpoint) Abort(err error) {
	e.w.Abort(fmt.Errorf("rank %d: %w", e.rank, err))
}

func (e *Endpoint) Close() error { return nil }

// Run executes fn once per rank of a fresh world of the given size, all
// ranks concurrently, and waits for them. When any rank returns an error
// the world is aborted, and Run returns that first error. A nil pool runs
// on a temporary pool sized to the world.
func Run(ctx context.Context, pool *workerpool.Pool, size int, fn func(ctx context.Context, t comm.Transport) error) error {
	if size <= 0 {
		return fmt.Errorf("local: world size %d", size)
	}
	if pool == nil {
		pool = workerpool.New(size)
		defer pool.Close()
	}

	w := NewWorld(size)
	err := pool.Gang(size, func(rank int) error {
		ep := w.Endpoint(rank)
		err := fn(ctx, ep)
		if err != nil {
			ep.Abort(err)
		}
		return err
	})
	if cause := w.Cause(); cause != nil {
		return cause
	}
	return err
}
