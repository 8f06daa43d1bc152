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
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-hypersort/hsort/contrib/intio"
	"github.com/ajroetker/go-hypersort/hsort/contrib/localsort"
)

type genFlags struct {
	n     int
	order string
	max   int64
	seed  int64
}

func (a *app) genCmd() *cobra.Command {
	var f genFlags
	cmd := &cobra.Command{
		Use:   "gen <file>",
		Short: "Write a random input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := generate(f)
			if err != nil {
				return err
			}
			fh, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := intio.WriteInput(fh, data); err != nil {
				fh.Close()
				return err
			}
			a.log.WithField("size", len(data)).Debug("input written")
			return fh.Close()
		},
	}
	cmd.Flags().IntVar(&f.n, "n", 1000, "number of integers")
	cmd.Flags().StringVar(&f.order, "order", "random", "order: random, sorted or reverse")
	cmd.Flags().Int64Var(&f.max, "max", 1<<31, "values are drawn from [0, max)")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "random seed")
	return cmd
}

func generate(f genFlags) ([]int64, error) {
	if f.n < 0 {
		return nil, fmt.Errorf("--n must be >= 0, got %d", f.n)
	}
	if f.max <= 0 {
		return nil, fmt.Errorf("--max must be > 0, got %d", f.max)
	}
	rng := rand.New(rand.NewSource(f.seed))
	data := make([]int64, f.n)
	for i := range data {
		data[i] = rng.Int63n(f.max)
	}
	switch f.order {
	case "random":
	case "sorted":
		localsort.Sort(data)
	case "reverse":
		localsort.Sort(data)
		for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
	default:
		return nil, fmt.Errorf("unknown order %q", f.order)
	}
	return data, nil
}
