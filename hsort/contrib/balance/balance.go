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

// Package balance summarizes how evenly a distributed sort spread its
// data and how its running time scales with the number of ranks.
package balance

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Chunks describes the distribution of final chunk sizes across ranks.
type Chunks struct {
	Ranks  int
	Total  int
	Min    int
	Max    int
	Empty  int
	Mean   float64
	StdDev float64

	// Imbalance is Max/Mean: 1 is perfect balance, Ranks means one rank
	// holds everything. It is 1 when there is no data.
	Imbalance float64
}

// OfChunks summarizes per-rank chunk sizes.
func OfChunks(sizes []int) Chunks {
	if len(sizes) == 0 {
		return Chunks{Imbalance: 1}
	}
	xs := lo.Map(sizes, func(n int, _ int) float64 { return float64(n) })
	mean, std := stat.PopMeanStdDev(xs, nil)
	c := Chunks{
		Ranks:     len(sizes),
		Total:     lo.Sum(sizes),
		Min:       int(floats.Min(xs)),
		Max:       int(floats.Max(xs)),
		Empty:     lo.CountBy(sizes, func(n int) bool { return n == 0 }),
		Mean:      mean,
		StdDev:    std,
		Imbalance: 1,
	}
	if mean > 0 {
		c.Imbalance = float64(c.Max) / mean
	}
	return c
}

func (c Chunks) String() string {
	return fmt.Sprintf("ranks=%d total=%d min=%d max=%d empty=%d mean=%.1f stddev=%.1f imbalance=%.3f",
		c.Ranks, c.Total, c.Min, c.Max, c.Empty, c.Mean, c.StdDev, c.Imbalance)
}

// Timing summarizes repeated measurements of one configuration.
type Timing struct {
	Samples int
	Mean    float64
	StdDev  float64
	Min     float64
}

// OfTimes summarizes elapsed times in seconds. StdDev is the sample
// standard deviation and is zero for a single sample.
func OfTimes(secs []float64) Timing {
	if len(secs) == 0 {
		return Timing{}
	}
	t := Timing{Samples: len(secs), Mean: stat.Mean(secs, nil), Min: floats.Min(secs)}
	if len(secs) > 1 {
		t.StdDev = stat.StdDev(secs, nil)
	}
	return t
}

// Speedup returns base/t, or NaN when t is not positive.
func Speedup(base, t float64) float64 {
	if t <= 0 {
		return math.NaN()
	}
	return base / t
}

// Efficiency returns the speedup of t over base divided by the growth in
// ranks from baseRanks to ranks.
func Efficiency(base, t float64, baseRanks, ranks int) float64 {
	if baseRanks <= 0 || ranks <= 0 {
		return math.NaN()
	}
	return Speedup(base, t) * float64(baseRanks) / float64(ranks)
}
