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

// Package intio reads and writes the text integer format used by the
// sorter: a count N followed by N signed 64-bit integers, whitespace
// separated.
package intio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	// ErrShortInput means the input ended before the promised count.
	ErrShortInput = errors.New("intio: fewer integers than the declared count")

	// ErrBadCount means the leading count is missing or negative.
	ErrBadCount = errors.New("intio: bad element count")
)

// ReadInts reads a count N followed by N integers. Anything after the
// N-th integer is ignored.
func ReadInts(r io.Reader) ([]int64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 64<<10)
	sc.Split(bufio.ScanWords)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: empty input", ErrBadCount)
	}
	n, err := strconv.ParseInt(sc.Text(), 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: %q", ErrBadCount, sc.Text())
	}

	// Guard the allocation against a bogus count; the slice grows past
	// this as needed.
	data := make([]int64, 0, min(n, 1<<24))
	for int64(len(data)) < n {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: got %d of %d", ErrShortInput, len(data), n)
		}
		v, err := strconv.ParseInt(sc.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("intio: element %d: %w", len(data), err)
		}
		data = append(data, v)
	}
	return data, nil
}

// ReadAll reads whitespace-separated integers until EOF, with no leading
// count. It reads the sorter's output format.
func ReadAll(r io.Reader) ([]int64, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	var data []int64
	for sc.Scan() {
		v, err := strconv.ParseInt(sc.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("intio: element %d: %w", len(data), err)
		}
		data = append(data, v)
	}
	return data, sc.Err()
}

// WriteInts writes data space separated with a trailing newline.
func WriteInts(w io.Writer, data []int64) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	var scratch [24]byte
	for i, v := range data {
		if i > 0 {
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
		if _, err := bw.Write(strconv.AppendInt(scratch[:0], v, 10)); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteInput writes data in the input format: the count on its own line,
// then the values.
func WriteInput(w io.Writer, data []int64) error {
	if _, err := fmt.Fprintln(w, len(data)); err != nil {
		return err
	}
	return WriteInts(w, data)
}
