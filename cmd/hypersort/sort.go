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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-hypersort/hsort"
	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/contrib/balance"
	"github.com/ajroetker/go-hypersort/hsort/contrib/intio"
	"github.com/ajroetker/go-hypersort/hsort/contrib/workerpool"
	"github.com/ajroetker/go-hypersort/hsort/transport/local"
)

type sortFlags struct {
	transport transportFlags
	stats     bool
}

func (a *app) sortCmd() *cobra.Command {
	var f sortFlags
	cmd := &cobra.Command{
		Use:   "sort <input> <output> <strategy>",
		Short: "Sort an input file into an output file",
		Long: `Sort reads a count N followed by N integers from <input> and writes them
in ascending order to <output>. <strategy> picks the pivot rule:
  1  median of the group's first rank
  2  median of all ranks' medians
  3  mean of all ranks' medians
The longest per-rank sorting time is printed as "Elapsed time: <seconds>".`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := hsort.ParseStrategy(args[2])
			if err != nil {
				return err
			}
			if err := f.transport.validate(); err != nil {
				return err
			}
			return a.runSort(cmd.Context(), cmd.OutOrStdout(), &f, args[0], args[1], s)
		},
	}
	cmd.Flags().AddFlagSet(f.transport.flagSet())
	cmd.Flags().BoolVar(&f.stats, "stats", false, "report how evenly the final chunks were balanced")
	return cmd
}

func (a *app) runSort(ctx context.Context, out io.Writer, f *sortFlags, inPath, outPath string, s hsort.Strategy) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := hsort.Options{Strategy: s, CollectBalance: f.stats}

	var res *hsort.Result
	var err error
	if f.transport.kind == transportLocal {
		res, err = a.sortLocal(ctx, f.transport.np, inPath, opts)
	} else {
		res, err = a.sortDistributed(ctx, &f.transport, inPath, opts)
	}
	if err != nil {
		return err
	}
	if res == nil {
		// Not the coordinator.
		return nil
	}

	if err := writeOutput(outPath, res.Sorted); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "Elapsed time: %.6f\n", res.Elapsed.Seconds()); err != nil {
		return err
	}
	if f.stats {
		a.printer.Fprintf(out, "Sorted %d elements\n", len(res.Sorted))
		fmt.Fprintln(out, balance.OfChunks(res.ChunkSizes))
	}
	return nil
}

func (a *app) sortLocal(ctx context.Context, np int, inPath string, opts hsort.Options) (*hsort.Result, error) {
	input, err := readInput(inPath)
	if err != nil {
		return nil, err
	}
	pool := workerpool.New(np)
	defer pool.Close()

	var res *hsort.Result
	err = local.Run(ctx, pool, np, func(ctx context.Context, tr comm.Transport) error {
		world := comm.World(tr, logrus.NewEntry(a.log))
		var in []int64
		if tr.Rank() == 0 {
			in = input
		}
		r, err := hsort.Run(ctx, world, in, opts)
		if err != nil {
			return err
		}
		if tr.Rank() == 0 {
			res = r
		}
		return nil
	})
	return res, err
}

// sortDistributed runs this process's rank. Only rank 0 reads the input
// and gets a result.
func (a *app) sortDistributed(ctx context.Context, f *transportFlags, inPath string, opts hsort.Options) (*hsort.Result, error) {
	tr, finish, err := a.open(ctx, f)
	if err != nil {
		return nil, err
	}
	world := comm.World(tr, logrus.NewEntry(a.log))

	var input []int64
	if tr.Rank() == 0 {
		if input, err = readInput(inPath); err != nil {
			tr.Abort(err)
			_ = finish()
			return nil, err
		}
	}
	res, err := hsort.Run(ctx, world, input, opts)
	if err != nil {
		// Run aborted the world, so the barrier in finish returns at once.
		_ = finish()
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	if tr.Rank() != 0 {
		return nil, nil
	}
	return res, nil
}

func readInput(path string) ([]int64, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	data, err := intio.ReadInts(fh)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(path string, data []int64) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := intio.WriteInts(fh, data); err != nil {
		fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}
