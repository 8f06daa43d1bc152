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

package tcp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ajroetker/go-hypersort/hsort/comm"
)

// Wire format. Every message is one frame:
//
//	tag    uint64 little-endian
//	length uint64 little-endian
//	payload [length]byte
//
// A connection starts with one hello in each direction:
//
//	magic uint32 | rank uint32 | size uint32 | reserved uint32
const (
	frameHeaderSize = 16
	helloSize       = 16
	helloMagic      = 0x31535148 // "HQS1"

	// maxFrame bounds a single payload so a corrupt header cannot make
	// the reader allocate without limit.
	maxFrame = 1 << 36

	// abortTag marks a frame whose payload is the reason the sender
	// aborted the world.
	abortTag = ^comm.Tag(0)
)

var (
	errFrameTooLarge = errors.New("tcp: frame exceeds size limit")
	errBadHello      = errors.New("tcp: bad hello")
)

// writeFrame writes one frame to w.
func writeFrame(w io.Writer, tag comm.Tag, payload []byte) error {
	var hdr [frameHeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(tag))
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readFrame reads one frame from r.
func readFrame(r io.Reader) (comm.Tag, []byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	tag := comm.Tag(binary.LittleEndian.Uint64(hdr[0:]))
	n := binary.LittleEndian.Uint64(hdr[8:])
	if n > maxFrame {
		return 0, nil, fmt.Errorf("%w: %d bytes", errFrameTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}
	return tag, payload, nil
}

type hello struct {
	rank, size int
}

func writeHello(w io.Writer, h hello) error {
	var b [helloSize]byte
	binary.LittleEndian.PutUint32(b[0:], helloMagic)
	binary.LittleEndian.PutUint32(b[4:], uint32(h.rank))
	binary.LittleEndian.PutUint32(b[8:], uint32(h.size))
	_, err := w.Write(b[:])
	return err
}

func readHello(r io.Reader) (hello, error) {
	var b [helloSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return hello{}, err
	}
	if m := binary.LittleEndian.Uint32(b[0:]); m != helloMagic {
		return hello{}, fmt.Errorf("%w: magic %#x", errBadHello, m)
	}
	return hello{
		rank: int(binary.LittleEndian.Uint32(b[4:])),
		size: int(binary.LittleEndian.Uint32(b[8:])),
	}, nil
}
