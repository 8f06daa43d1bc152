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

// Package tcp implements comm.Transport over a full TCP mesh: one
// connection per pair of ranks, carrying length-prefixed frames. Each
// connection has a reader goroutine that drains frames into the rank's
// mailbox, so a sender never waits on the receiver's progress.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-hypersort/hsort/comm"
)

const (
	defaultDialTimeout = 30 * time.Second
	defaultLinger      = 5 * time.Second
	redialInterval     = 50 * time.Millisecond
)

// Config describes this rank's place in the mesh.
type Config struct {
	// Rank is this process's rank; Peers[Rank] is its listen address.
	Rank int

	// Peers holds the listen address of every rank.
	Peers []string

	// Listener, if set, is used instead of listening on Peers[Rank].
	Listener net.Listener

	// DialTimeout bounds mesh setup. Zero means 30s.
	DialTimeout time.Duration

	// Linger bounds how long Close waits for peers to finish. Zero
	// means 5s.
	Linger time.Duration

	// Logger receives connection events. Nil discards them.
	Logger *logrus.Entry
}

func normalizeConfig(cfg Config) (Config, error) {
	if len(cfg.Peers) == 0 {
		return Config{}, errors.New("tcp: no peers")
	}
	if cfg.Rank < 0 || cfg.Rank >= len(cfg.Peers) {
		return Config{}, fmt.Errorf("%w: rank %d of %d peers", comm.ErrBadRank, cfg.Rank, len(cfg.Peers))
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.Linger <= 0 {
		cfg.Linger = defaultLinger
	}
	if cfg.Logger == nil {
		cfg.Logger = comm.DiscardLogger()
	}
	cfg.Logger = cfg.Logger.WithField("rank", cfg.Rank)
	return cfg, nil
}

type peerConn struct {
	mu sync.Mutex
	c  net.Conn
	w  *bufio.Writer
}

// Transport is one rank's endpoint of the mesh.
type Transport struct {
	cfg   Config
	rank  int
	size  int
	conns []*peerConn // nil at index rank
	box   *comm.Mailbox
	log   *logrus.Entry

	closing   atomic.Bool
	closeOnce sync.Once
	readers   sync.WaitGroup
}

var _ comm.Transport = (*Transport)(nil)

// Connect builds the mesh: it accepts connections from higher ranks and
// dials lower ranks concurrently, retrying refused dials until
// cfg.DialTimeout, then starts the reader goroutines.
func Connect(ctx context.Context, cfg Config) (*Transport, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	t := &Transport{
		cfg:   cfg,
		rank:  cfg.Rank,
		size:  len(cfg.Peers),
		conns: make([]*peerConn, len(cfg.Peers)),
		box:   comm.NewMailbox(),
		log:   cfg.Logger,
	}

	ln := cfg.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", cfg.Peers[cfg.Rank])
		if err != nil {
			return nil, fmt.Errorf("tcp: listen: %w", err)
		}
	}
	defer ln.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	if n := t.size - 1 - t.rank; n > 0 {
		eg.Go(func() error {
			return t.acceptPeers(egCtx, ln, n, &mu)
		})
	}
	for peer := 0; peer < t.rank; peer++ {
		eg.Go(func() error {
			c, err := t.dialPeer(egCtx, peer)
			if err != nil {
				return err
			}
			mu.Lock()
			t.conns[peer] = newPeerConn(c)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		t.closeConns()
		return nil, err
	}

	for peer, pc := range t.conns {
		if pc == nil {
			continue
		}
		t.readers.Add(1)
		go t.read(peer, pc.c)
	}
	t.log.WithField("size", t.size).Debug("mesh connected")
	return t, nil
}

func newPeerConn(c net.Conn) *peerConn {
	if tc, ok := c.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return &peerConn{c: c, w: bufio.NewWriterSize(c, 64<<10)}
}

func (t *Transport) acceptPeers(ctx context.Context, ln net.Listener, n int, mu *sync.Mutex) error {
	// Accept does not take a context; closing the listener unblocks it.
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for i := 0; i < n; i++ {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("tcp: accept: %w", ctx.Err())
			}
			return fmt.Errorf("tcp: accept: %w", err)
		}
		h, err := t.handshake(ctx, c)
		if err == nil && (h.rank <= t.rank || h.rank >= t.size) {
			err = fmt.Errorf("%w: unexpected rank %d", errBadHello, h.rank)
		}
		mu.Lock()
		if err == nil && t.conns[h.rank] != nil {
			err = fmt.Errorf("%w: duplicate rank %d", errBadHello, h.rank)
		}
		if err != nil {
			mu.Unlock()
			c.Close()
			return err
		}
		t.conns[h.rank] = newPeerConn(c)
		mu.Unlock()
		t.log.WithField("peer", h.rank).Debug("accepted peer")
	}
	return nil
}

func (t *Transport) dialPeer(ctx context.Context, peer int) (net.Conn, error) {
	var d net.Dialer
	for {
		c, err := d.DialContext(ctx, "tcp", t.cfg.Peers[peer])
		if err == nil {
			h, err := t.handshake(ctx, c)
			if err == nil && h.rank != peer {
				err = fmt.Errorf("%w: dialed rank %d, got %d", errBadHello, peer, h.rank)
			}
			if err != nil {
				c.Close()
				return nil, err
			}
			t.log.WithField("peer", peer).Debug("dialed peer")
			return c, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("tcp: dial rank %d at %s: %w", peer, t.cfg.Peers[peer], err)
		case <-time.After(redialInterval):
		}
	}
}

// handshake exchanges hellos and checks both sides agree on the world size.
func (t *Transport) handshake(ctx context.Context, c net.Conn) (hello, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.SetDeadline(dl)
		defer c.SetDeadline(time.Time{})
	}
	if err := writeHello(c, hello{rank: t.rank, size: t.size}); err != nil {
		return hello{}, fmt.Errorf("tcp: send hello: %w", err)
	}
	h, err := readHello(c)
	if err != nil {
		return hello{}, fmt.Errorf("tcp: read hello: %w", err)
	}
	if h.size != t.size {
		return hello{}, fmt.Errorf("%w: peer %d has world size %d, want %d", errBadHello, h.rank, h.size, t.size)
	}
	return h, nil
}

// read drains frames from one peer into the mailbox until the connection
// ends.
func (t *Transport) read(peer int, c net.Conn) {
	defer t.readers.Done()
	r := bufio.NewReaderSize(c, 64<<10)
	for {
		tag, payload, err := readFrame(r)
		if err != nil {
			if t.closing.Load() && (errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)) {
				return
			}
			t.box.Lose(peer, fmt.Errorf("%w: rank %d: %v", comm.ErrPeerLost, peer, err))
			return
		}
		if tag == abortTag {
			t.log.WithField("peer", peer).Warn("peer aborted")
			t.box.Fail(fmt.Errorf("%w: by rank %d: %s", comm.ErrAborted, peer, payload))
			return
		}
		t.box.Deliver(peer, tag, payload)
	}
}

func (t *Transport) Rank() int { return t.rank }
func (t *Transport) Size() int { return t.size }

func (t *Transport) Send(ctx context.Context, dst int, tag comm.Tag, payload []byte) error {
	if dst < 0 || dst >= t.size {
		return fmt.Errorf("%w: send to %d in world of %d", comm.ErrBadRank, dst, t.size)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.box.Err(); err != nil {
		return err
	}
	if dst == t.rank {
		t.box.Deliver(t.rank, tag, append([]byte(nil), payload...))
		return nil
	}
	return t.write(ctx, t.conns[dst], tag, payload)
}

func (t *Transport) write(ctx context.Context, pc *peerConn, tag comm.Tag, payload []byte) error {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if dl, ok := ctx.Deadline(); ok {
		_ = pc.c.SetWriteDeadline(dl)
		defer pc.c.SetWriteDeadline(time.Time{})
	}
	if err := writeFrame(pc.w, tag, payload); err != nil {
		return fmt.Errorf("%w: %v", comm.ErrPeerLost, err)
	}
	if err := pc.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", comm.ErrPeerLost, err)
	}
	return nil
}

func (t *Transport) Probe(ctx context.Context, src int, tag comm.Tag) (int, error) {
	return t.box.Probe(ctx, src, tag)
}

func (t *Transport) Recv(ctx context.Context, src int, tag comm.Tag, buf []byte) error {
	return t.box.Receive(ctx, src, tag, buf)
}

// Abort tells every peer why this rank is giving up, fails the local
// mailbox and tears the mesh down.
func (t *Transport) Abort(err error) {
	t.log.WithError(err).Error("aborting")
	reason := []byte(err.Error())
	for _, pc := range t.conns {
		if pc == nil {
			continue
		}
		_ = pc.c.SetWriteDeadline(time.Now().Add(time.Second))
		_ = t.write(context.Background(), pc, abortTag, reason)
	}
	t.box.Fail(fmt.Errorf("%w: %v", comm.ErrAborted, err))
	t.closing.Store(true)
	t.closeConns()
}

// Close shuts the mesh down gracefully: it half-closes every connection,
// waits up to cfg.Linger for the peers to do the same, then closes.
func (t *Transport) Close() error {
	t.closing.Store(true)
	for _, pc := range t.conns {
		if pc == nil {
			continue
		}
		if tc, ok := pc.c.(*net.TCPConn); ok {
			_ = tc.CloseWrite()
		}
	}

	done := make(chan struct{})
	go func() {
		t.readers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(t.cfg.Linger):
		t.log.Warn("peers did not close in time")
	}
	t.closeConns()
	return nil
}

func (t *Transport) closeConns() {
	t.closeOnce.Do(func() {
		for _, pc := range t.conns {
			if pc != nil {
				pc.c.Close()
			}
		}
	})
}
