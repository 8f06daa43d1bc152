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

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-hypersort/hsort/contrib/intio"
	"github.com/ajroetker/go-hypersort/hsort/contrib/localsort"
	"github.com/ajroetker/go-hypersort/hsort/contrib/workerpool"
)

var (
	errNotSorted      = errors.New("output is not sorted")
	errNotPermutation = errors.New("output is not a permutation of the input")
)

func (a *app) checkCmd() *cobra.Command {
	var inputPath string
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Verify that a sort output file is in ascending order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.check(args[0], inputPath)
			if err != nil {
				return err
			}
			a.printer.Fprintf(cmd.OutOrStdout(), "The sequence of length %d is sorted in ascending order.\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "original input file; also check the output is a permutation of it")
	return cmd
}

// check returns the number of elements in the output file, or an error
// wrapping errNotSorted or errNotPermutation.
func (a *app) check(outPath, inPath string) (int, error) {
	var out, in []int64
	var eg errgroup.Group
	eg.Go(func() error {
		fh, err := os.Open(outPath)
		if err != nil {
			return err
		}
		defer fh.Close()
		out, err = intio.ReadAll(fh)
		return err
	})
	if inPath != "" {
		eg.Go(func() error {
			var err error
			in, err = readInput(inPath)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	if i := firstDescent(out); i >= 0 {
		return 0, fmt.Errorf("%w: out[%d]=%d > out[%d]=%d", errNotSorted, i, out[i], i+1, out[i+1])
	}
	if inPath != "" {
		if len(in) != len(out) {
			return 0, fmt.Errorf("%w: %d elements in, %d out", errNotPermutation, len(in), len(out))
		}
		localsort.Sort(in)
		if !slices.Equal(in, out) {
			return 0, errNotPermutation
		}
	}
	a.log.WithField("size", len(out)).Debug("check passed")
	return len(out), nil
}

// firstDescent returns the smallest i with data[i] > data[i+1], or -1.
func firstDescent(data []int64) int {
	pairs := len(data) - 1
	if pairs <= 0 {
		return -1
	}
	pool := workerpool.New(runtime.GOMAXPROCS(0))
	defer pool.Close()

	var first atomic.Int64
	first.Store(int64(pairs))
	pool.ParallelFor(pairs, func(start, end int) {
		for i := start; i < end; i++ {
			if data[i] > data[i+1] {
				for {
					cur := first.Load()
					if int64(i) >= cur || first.CompareAndSwap(cur, int64(i)) {
						return
					}
				}
			}
		}
	})
	if f := int(first.Load()); f < pairs {
		return f
	}
	return -1
}
