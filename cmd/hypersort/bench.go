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
	"slices"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-hypersort/hsort"
	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/contrib/balance"
	"github.com/ajroetker/go-hypersort/hsort/contrib/workerpool"
	"github.com/ajroetker/go-hypersort/hsort/transport/local"
)

type benchFlags struct {
	in         string
	np         []int
	strategies []int
	repeat     int
}

func (a *app) benchCmd() *cobra.Command {
	var f benchFlags
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure strong scaling on the in-process transport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return a.bench(ctx, cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().StringVar(&f.in, "in", "", "input file (required)")
	cmd.Flags().IntSliceVar(&f.np, "np", []int{1, 2, 4, 8}, "rank counts to measure")
	cmd.Flags().IntSliceVar(&f.strategies, "strategy", []int{1, 2, 3}, "pivot strategies to measure")
	cmd.Flags().IntVar(&f.repeat, "repeat", 3, "runs per configuration")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// benchRow is one measured configuration.
type benchRow struct {
	strategy hsort.Strategy
	np       int
	timing   balance.Timing
	chunks   balance.Chunks
}

func (a *app) bench(ctx context.Context, out io.Writer, f benchFlags) error {
	if f.repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1, got %d", f.repeat)
	}
	if bad, ok := lo.Find(f.np, func(n int) bool { return n < 1 }); ok {
		return fmt.Errorf("--np values must be at least 1, got %d", bad)
	}
	strategies := lo.Map(f.strategies, func(v int, _ int) hsort.Strategy { return hsort.Strategy(v) })
	if bad, ok := lo.Find(strategies, func(s hsort.Strategy) bool { return !s.Valid() }); ok {
		return fmt.Errorf("%w: %d", hsort.ErrBadStrategy, int(bad))
	}
	nps := lo.Uniq(f.np)
	slices.Sort(nps)

	input, err := readInput(f.in)
	if err != nil {
		return err
	}
	pool := workerpool.New(lo.Max(nps))
	defer pool.Close()

	var rows []benchRow
	for _, s := range strategies {
		for _, np := range nps {
			row, err := a.benchOne(ctx, pool, input, s, np, f.repeat)
			if err != nil {
				return fmt.Errorf("strategy %d, np %d: %w", int(s), np, err)
			}
			rows = append(rows, row)
		}
	}
	a.printer.Fprintf(out, "%d elements, %d runs per configuration\n", len(input), f.repeat)
	return a.printBench(out, rows)
}

func (a *app) benchOne(ctx context.Context, pool *workerpool.Pool, input []int64, s hsort.Strategy, np, repeat int) (benchRow, error) {
	row := benchRow{strategy: s, np: np}
	secs := make([]float64, 0, repeat)
	for range repeat {
		var res *hsort.Result
		err := local.Run(ctx, pool, np, func(ctx context.Context, tr comm.Transport) error {
			var in []int64
			if tr.Rank() == 0 {
				in = input
			}
			r, err := hsort.Run(ctx, comm.World(tr, logrus.NewEntry(a.log)), in, hsort.Options{Strategy: s, CollectBalance: true})
			if err == nil && tr.Rank() == 0 {
				res = r
			}
			return err
		})
		if err != nil {
			return row, err
		}
		secs = append(secs, res.Elapsed.Seconds())
		row.chunks = balance.OfChunks(res.ChunkSizes)
	}
	row.timing = balance.OfTimes(secs)
	a.log.WithFields(logrus.Fields{"strategy": s, "np": np, "mean": row.timing.Mean}).Info("configuration measured")
	return row, nil
}

// printBench writes one line per configuration. Speedup is relative to
// the smallest rank count measured for the same strategy.
func (a *app) printBench(out io.Writer, rows []benchRow) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "strategy\tnp\tmean(s)\tstddev(s)\tspeedup\tefficiency\timbalance")
	base := map[hsort.Strategy]benchRow{}
	for _, r := range rows {
		b, ok := base[r.strategy]
		if !ok {
			b = r
			base[r.strategy] = r
		}
		speedup := balance.Speedup(b.timing.Mean, r.timing.Mean)
		eff := balance.Efficiency(b.timing.Mean, r.timing.Mean, b.np, r.np)
		fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.6f\t%.2f\t%.2f\t%.3f\n",
			r.strategy, r.np, r.timing.Mean, r.timing.StdDev, speedup, eff, r.chunks.Imbalance)
	}
	return tw.Flush()
}
