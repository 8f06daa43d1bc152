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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMailboxFIFO(t *testing.T) {
	ctx := context.Background()
	m := NewMailbox()
	tag := MakeTag(1, 3)
	for i := range 5 {
		m.Deliver(2, tag, []byte{byte(i)})
	}
	m.Deliver(2, MakeTag(1, 4), []byte{99})
	require.Equal(t, 6, m.Pending())

	for i := range 5 {
		p, err := m.Take(ctx, 2, tag)
		require.NoError(t, err)
		require.Equal(t, []byte{byte(i)}, p)
	}
	require.Equal(t, 1, m.Pending())
}

func TestMailboxProbeDoesNotConsume(t *testing.T) {
	ctx := context.Background()
	m := NewMailbox()
	m.Deliver(0, 1, make([]byte, 24))

	for range 2 {
		n, err := m.Probe(ctx, 0, 1)
		require.NoError(t, err)
		require.Equal(t, 24, n)
	}
	require.ErrorIs(t, m.Receive(ctx, 0, 1, make([]byte, 16)), ErrSizeMismatch)
	require.Equal(t, 0, m.Pending())
}

func TestMailboxWakesWaiter(t *testing.T) {
	ctx := context.Background()
	m := NewMailbox()
	got := make(chan []byte)
	go func() {
		p, err := m.Take(ctx, 1, 9)
		if err != nil {
			close(got)
			return
		}
		got <- p
	}()
	time.Sleep(10 * time.Millisecond)
	m.Deliver(1, 9, []byte("hi"))
	require.Equal(t, []byte("hi"), <-got)
}

func TestMailboxCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewMailbox().Probe(ctx, 0, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMailboxFail(t *testing.T) {
	m := NewMailbox()
	m.Deliver(0, 0, []byte{1})
	boom := errors.New("boom")
	m.Fail(boom)
	m.Fail(errors.New("ignored"))

	_, err := m.Take(context.Background(), 0, 0)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, m.Err(), boom)
}

func TestMailboxLoseKeepsQueued(t *testing.T) {
	ctx := context.Background()
	m := NewMailbox()
	m.Deliver(3, 0, []byte{7})
	m.Lose(3, ErrPeerLost)

	p, err := m.Take(ctx, 3, 0)
	require.NoError(t, err)
	require.Equal(t, []byte{7}, p)

	_, err = m.Take(ctx, 3, 0)
	require.ErrorIs(t, err, ErrPeerLost)

	// Other sources are unaffected.
	m.Deliver(4, 0, []byte{8})
	_, err = m.Take(ctx, 4, 0)
	require.NoError(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	in := []int64{0, -1, 1 << 62, -(1 << 62), 42}
	out := make([]int64, len(in))
	require.NoError(t, DecodeInt64s(EncodeInt64s(in), out))
	require.Equal(t, in, out)
	require.ErrorIs(t, DecodeInt64s(make([]byte, 7), make([]int64, 1)), ErrSizeMismatch)
}

func TestMakeTag(t *testing.T) {
	tag := MakeTag(0x1234, 0xabcd)
	require.Equal(t, uint64(0x1234), tag.Group())
	require.Equal(t, uint16(0xabcd), tag.Local())
}
