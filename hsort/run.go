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

package hsort

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/contrib/localsort"
)

// Options configures Run.
type Options struct {
	// Strategy selects the pivot strategy. Required.
	Strategy Strategy

	// CollectBalance gathers every rank's final chunk size to rank 0
	// before the tree merge.
	CollectBalance bool

	// Logger receives debug output. Nil uses the world's logger.
	Logger *logrus.Entry

	// Now is the wall clock. Nil uses time.Now.
	Now func() time.Time
}

// Result is what Run returns. Sorted, Elapsed and ChunkSizes are only set
// on rank 0.
type Result struct {
	// Sorted is the whole array in ascending order.
	Sorted []int64

	// Elapsed is the longest time any rank spent between receiving its
	// chunk and finishing the recursion.
	Elapsed time.Duration

	// LocalElapsed is this rank's own share of Elapsed.
	LocalElapsed time.Duration

	// ChunkSizes holds every rank's final chunk length when
	// Options.CollectBalance is set.
	ChunkSizes []int
}

// Run sorts input, which is only read on world rank 0, across every rank
// of world. It must be called by every rank. On failure the world is
// aborted so no rank stays blocked.
func Run(ctx context.Context, world *comm.Group, input []int64, opts Options) (res *Result, err error) {
	defer func() {
		if err != nil {
			world.Abort(err)
		}
	}()
	if !opts.Strategy.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrBadStrategy, int(opts.Strategy))
	}
	log := opts.Logger
	if log == nil {
		log = world.Logger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	n64, err := world.BcastInt(ctx, 0, int64(len(input)))
	if err != nil {
		return nil, fmt.Errorf("broadcast element count: %w", err)
	}
	n := int(n64)

	chunk, err := Scatter(ctx, world, input, n)
	if err != nil {
		return nil, err
	}

	start := now()
	localsort.Sort(chunk.Data())
	chunk, err = Hyperquicksort(ctx, world, chunk, opts.Strategy, log)
	if err != nil {
		return nil, err
	}
	res = &Result{LocalElapsed: now().Sub(start)}

	maxSec, err := world.ReduceMax(ctx, 0, res.LocalElapsed.Seconds())
	if err != nil {
		return nil, fmt.Errorf("reduce elapsed time: %w", err)
	}
	log.WithFields(logrus.Fields{
		"size":    chunk.Len(),
		"elapsed": res.LocalElapsed,
	}).Debug("recursion done")

	if opts.CollectBalance {
		parts, err := world.Gather(ctx, 0, []int64{int64(chunk.Len())})
		if err != nil {
			return nil, fmt.Errorf("gather chunk sizes: %w", err)
		}
		for _, p := range parts {
			res.ChunkSizes = append(res.ChunkSizes, int(firstOr(p, 0)))
		}
	}

	final, err := TreeReduce(ctx, world, chunk)
	if err != nil {
		return nil, err
	}
	if world.Rank() != 0 {
		return res, nil
	}

	if final.Len() != n {
		return nil, fmt.Errorf("%w: scattered %d, gathered %d", ErrLostElements, n, final.Len())
	}
	res.Sorted = final.Data()
	res.Elapsed = time.Duration(maxSec * float64(time.Second))
	return res, nil
}
