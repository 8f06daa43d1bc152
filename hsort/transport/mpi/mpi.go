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

//go:build mpi

package mpi

/*
#include <stdlib.h>
#include <mpi.h>

// MPI_COMM_WORLD and friends are macros that cgo cannot always resolve,
// so every call goes through a small wrapper.

static int hs_init(int *provided) {
	return MPI_Init_thread(NULL, NULL, MPI_THREAD_SERIALIZED, provided);
}
static int hs_thread_serialized(void) { return MPI_THREAD_SERIALIZED; }
static int hs_rank(int *r) { return MPI_Comm_rank(MPI_COMM_WORLD, r); }
static int hs_size(int *s) { return MPI_Comm_size(MPI_COMM_WORLD, s); }

static int hs_isend(void *buf, int n, int dst, MPI_Request *req) {
	return MPI_Isend(buf, n, MPI_BYTE, dst, 0, MPI_COMM_WORLD, req);
}
static int hs_test(MPI_Request *req, int *done) {
	return MPI_Test(req, done, MPI_STATUS_IGNORE);
}
static int hs_iprobe(int *flag, int *src, int *count) {
	MPI_Status st;
	int rc = MPI_Iprobe(MPI_ANY_SOURCE, 0, MPI_COMM_WORLD, flag, &st);
	if (rc != MPI_SUCCESS || !*flag) {
		return rc;
	}
	*src = st.MPI_SOURCE;
	return MPI_Get_count(&st, MPI_BYTE, count);
}
static int hs_recv(void *buf, int n, int src) {
	return MPI_Recv(buf, n, MPI_BYTE, src, 0, MPI_COMM_WORLD, MPI_STATUS_IGNORE);
}
static void hs_abort(int code) { MPI_Abort(MPI_COMM_WORLD, code); }
static int hs_finalize(void) { return MPI_Finalize(); }
*/
import "C"

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"

	"github.com/ajroetker/go-hypersort/hsort/comm"
)

// Available reports whether MPI support is compiled in.
const Available = true

const (
	headerSize = 8
	idleSleep  = 20 * time.Microsecond
)

var errTooLarge = errors.New("mpi: message exceeds MPI count limit")

// Transport is this process's endpoint on MPI_COMM_WORLD.
type Transport struct {
	rank, size int
	box        *comm.Mailbox
	log        *logrus.Entry

	mu      sync.Mutex // serializes every MPI call
	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// Init initializes MPI and starts the progress goroutine. The caller
// should lock its goroutine to the OS thread first and must call Close
// exactly once when done.
func Init(log *logrus.Entry) (comm.Transport, error) {
	if log == nil {
		log = comm.DiscardLogger()
	}
	var provided C.int
	if rc := C.hs_init(&provided); rc != 0 {
		return nil, fmt.Errorf("mpi: MPI_Init_thread failed with code %d", int(rc))
	}
	if provided < C.hs_thread_serialized() {
		C.hs_finalize()
		return nil, fmt.Errorf("mpi: library provides thread level %d, need MPI_THREAD_SERIALIZED", int(provided))
	}
	var r, s C.int
	C.hs_rank(&r)
	C.hs_size(&s)

	t := &Transport{
		rank:    int(r),
		size:    int(s),
		box:     comm.NewMailbox(),
		log:     log.WithField("rank", int(r)),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go t.progress()
	t.log.WithField("size", t.size).Debug("mpi initialized")
	return t, nil
}

// progress moves arrived messages from MPI into the mailbox.
func (t *Transport) progress() {
	defer close(t.stopped)
	for {
		select {
		case <-t.stop:
			return
		default:
		}

		var flag, src, count C.int
		var msg []byte
		var err error
		t.mu.Lock()
		if rc := C.hs_iprobe(&flag, &src, &count); rc != 0 {
			err = fmt.Errorf("mpi: MPI_Iprobe failed with code %d", int(rc))
		} else if flag != 0 {
			msg = make([]byte, int(count))
			if rc := C.hs_recv(unsafe.Pointer(unsafe.SliceData(msg)), count, src); rc != 0 {
				err = fmt.Errorf("mpi: MPI_Recv failed with code %d", int(rc))
			}
		}
		t.mu.Unlock()

		switch {
		case err != nil:
			t.box.Fail(fmt.Errorf("%w: %v", comm.ErrPeerLost, err))
			return
		case flag == 0:
			time.Sleep(idleSleep)
		case len(msg) < headerSize:
			t.box.Fail(fmt.Errorf("%w: short message from rank %d", comm.ErrPeerLost, int(src)))
			return
		default:
			tag := comm.Tag(binary.LittleEndian.Uint64(msg))
			t.box.Deliver(int(src), tag, msg[headerSize:])
		}
	}
}

func (t *Transport) Rank() int { return t.rank }
func (t *Transport) Size() int { return t.size }

// Send copies the framed payload into C memory, posts MPI_Isend and polls
// for completion, releasing the MPI lock between polls so the progress
// goroutine keeps draining.
func (t *Transport) Send(ctx context.Context, dst int, tag comm.Tag, payload []byte) error {
	if dst < 0 || dst >= t.size {
		return fmt.Errorf("%w: send to %d in world of %d", comm.ErrBadRank, dst, t.size)
	}
	if err := t.box.Err(); err != nil {
		return err
	}
	if dst == t.rank {
		t.box.Deliver(t.rank, tag, append([]byte(nil), payload...))
		return nil
	}
	n := headerSize + len(payload)
	if n > math.MaxInt32 {
		return fmt.Errorf("%w: %d bytes", errTooLarge, n)
	}

	cbuf := C.malloc(C.size_t(n))
	defer C.free(cbuf)
	buf := unsafe.Slice((*byte)(cbuf), n)
	binary.LittleEndian.PutUint64(buf, uint64(tag))
	copy(buf[headerSize:], payload)

	var req C.MPI_Request
	t.mu.Lock()
	rc := C.hs_isend(cbuf, C.int(n), C.int(dst), &req)
	t.mu.Unlock()
	if rc != 0 {
		return fmt.Errorf("%w: MPI_Isend to %d failed with code %d", comm.ErrPeerLost, dst, int(rc))
	}
	// A posted send cannot be withdrawn, so ctx is not consulted here.
	for {
		var done C.int
		t.mu.Lock()
		rc = C.hs_test(&req, &done)
		t.mu.Unlock()
		if rc != 0 {
			return fmt.Errorf("%w: MPI_Test failed with code %d", comm.ErrPeerLost, int(rc))
		}
		if done != 0 {
			return nil
		}
		runtime.Gosched()
	}
}

func (t *Transport) Probe(ctx context.Context, src int, tag comm.Tag) (int, error) {
	return t.box.Probe(ctx, src, tag)
}

func (t *Transport) Recv(ctx context.Context, src int, tag comm.Tag, buf []byte) error {
	return t.box.Receive(ctx, src, tag, buf)
}

// Abort terminates every process in MPI_COMM_WORLD.
func (t *Transport) Abort(err error) {
	t.log.WithError(err).Error("aborting")
	t.box.Fail(fmt.Errorf("%w: %v", comm.ErrAborted, err))
	t.mu.Lock()
	C.hs_abort(1)
	t.mu.Unlock()
}

// Close stops the progress goroutine and finalizes MPI. Callers should
// synchronize ranks (for example with a barrier) before closing.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(t.stop)
	<-t.stopped
	t.mu.Lock()
	defer t.mu.Unlock()
	if rc := C.hs_finalize(); rc != 0 {
		return fmt.Errorf("mpi: MPI_Finalize failed with code %d", int(rc))
	}
	return nil
}
