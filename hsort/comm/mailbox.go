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
	"sync"
)

type mailKey struct {
	src int
	tag Tag
}

// Mailbox is the receive side shared by the transports: an unbounded FIFO
// queue per (source, tag) with blocking, cancellable Probe and Take.
//
// A Mailbox is safe for concurrent use. Delivery never blocks, so a pump
// goroutine feeding it can never deadlock against a slow consumer.
type Mailbox struct {
	mu      sync.Mutex
	queues  map[mailKey][][]byte
	waiters map[mailKey]chan struct{}
	lost    map[int]error

	err      error
	failed   chan struct{}
	failOnce sync.Once
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		queues:  make(map[mailKey][][]byte),
		waiters: make(map[mailKey]chan struct{}),
		lost:    make(map[int]error),
		failed:  make(chan struct{}),
	}
}

// Deliver enqueues payload from src under tag. The mailbox takes
// ownership of payload.
func (m *Mailbox) Deliver(src int, tag Tag, payload []byte) {
	k := mailKey{src, tag}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return
	}
	m.queues[k] = append(m.queues[k], payload)
	if ch, ok := m.waiters[k]; ok {
		close(ch)
		delete(m.waiters, k)
	}
}

// Probe blocks until a message from src with tag is pending and returns
// its length in bytes.
func (m *Mailbox) Probe(ctx context.Context, src int, tag Tag) (int, error) {
	p, err := m.head(ctx, mailKey{src, tag}, false)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Take blocks until a message from src with tag is pending and removes it.
func (m *Mailbox) Take(ctx context.Context, src int, tag Tag) ([]byte, error) {
	return m.head(ctx, mailKey{src, tag}, true)
}

// Receive takes the next message from src with tag and copies it into buf.
// The message is consumed even when its length does not match buf.
func (m *Mailbox) Receive(ctx context.Context, src int, tag Tag, buf []byte) error {
	p, err := m.Take(ctx, src, tag)
	if err != nil {
		return err
	}
	if len(p) != len(buf) {
		return fmt.Errorf("%w: from rank %d: have %d bytes, buffer holds %d", ErrSizeMismatch, src, len(p), len(buf))
	}
	copy(buf, p)
	return nil
}

// Lose records that no further messages will arrive from src. Messages
// already queued from src stay receivable; waits beyond them fail with err.
func (m *Mailbox) Lose(src int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lost[src]; ok {
		return
	}
	m.lost[src] = err
	for k, ch := range m.waiters {
		if k.src == src {
			close(ch)
			delete(m.waiters, k)
		}
	}
}

// Fail makes every current and future wait return err. Only the first
// call has an effect.
func (m *Mailbox) Fail(err error) {
	m.failOnce.Do(func() {
		m.mu.Lock()
		m.err = err
		m.queues = nil
		m.mu.Unlock()
		close(m.failed)
	})
}

// Err returns the error passed to Fail, if any.
func (m *Mailbox) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Pending returns the number of queued messages.
func (m *Mailbox) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.queues {
		n += len(q)
	}
	return n
}

func (m *Mailbox) head(ctx context.Context, k mailKey, pop bool) ([]byte, error) {
	for {
		m.mu.Lock()
		if m.err != nil {
			err := m.err
			m.mu.Unlock()
			return nil, err
		}
		if q := m.queues[k]; len(q) > 0 {
			p := q[0]
			if pop {
				if len(q) == 1 {
					delete(m.queues, k)
				} else {
					q[0] = nil
					m.queues[k] = q[1:]
				}
			}
			m.mu.Unlock()
			return p, nil
		}
		if err, ok := m.lost[k.src]; ok {
			m.mu.Unlock()
			return nil, err
		}
		ch, ok := m.waiters[k]
		if !ok {
			ch = make(chan struct{})
			m.waiters[k] = ch
		}
		m.mu.Unlock()

		select {
		case <-ch:
		case <-m.failed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
