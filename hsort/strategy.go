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
	"fmt"
	"strings"
)

// Strategy selects how a group agrees on its pivot.
type Strategy int

const (
	// LocalMedian broadcasts the median of group rank 0's chunk.
	LocalMedian Strategy = 1

	// MedianOfMedians gathers every member's median and takes their median.
	MedianOfMedians Strategy = 2

	// MeanOfMedians gathers every member's median and takes their mean.
	MeanOfMedians Strategy = 3
)

// Strategies lists every strategy in numeric order.
var Strategies = []Strategy{LocalMedian, MedianOfMedians, MeanOfMedians}

// String returns the strategy's flag name.
func (s Strategy) String() string {
	switch s {
	case LocalMedian:
		return "local-median"
	case MedianOfMedians:
		return "median-of-medians"
	case MeanOfMedians:
		return "mean-of-medians"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	return s >= LocalMedian && s <= MeanOfMedians
}

// ParseStrategy accepts a strategy number ("1", "2", "3") or name.
func ParseStrategy(v string) (Strategy, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	for _, s := range Strategies {
		if v == s.String() || v == fmt.Sprint(int(s)) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadStrategy, v)
}
