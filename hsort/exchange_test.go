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

package hsort_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-hypersort/hsort"
	"github.com/ajroetker/go-hypersort/hsort/comm"
	"github.com/ajroetker/go-hypersort/hsort/transport/local"
)

func seq(from, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(from + i)
	}
	return out
}

func TestExchangeAsymmetricSizes(t *testing.T) {
	for _, sizes := range [][2]int{{0, 0}, {0, 1}, {1, 0}, {3, 100000}, {4096, 1}, {17, 17}} {
		t.Run(fmt.Sprint(sizes), func(t *testing.T) {
			err := local.Run(context.Background(), nil, 2, func(ctx context.Context, tr comm.Transport) error {
				g := comm.World(tr, nil)
				me, peer := g.Rank(), 1-g.Rank()
				dir := hsort.ToHigh
				if me == 1 {
					dir = hsort.ToLow
				}
				in, err := hsort.Exchange(ctx, g, peer, seq(me*1_000_000, sizes[me]), dir)
				if err != nil {
					return err
				}
				assert.Equal(t, sizes[peer], in.Len())
				if sizes[peer] > 0 {
					assert.Equal(t, seq(peer*1_000_000, sizes[peer]), in.Data())
				}
				in.Release()
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestSendRecvRun(t *testing.T) {
	err := local.Run(context.Background(), nil, 3, func(ctx context.Context, tr comm.Transport) error {
		g := comm.World(tr, nil)
		switch g.Rank() {
		case 2:
			return hsort.SendRun(ctx, g, 0, []int64{4, 5, 6})
		case 0:
			in, err := hsort.RecvRun(ctx, g, 2)
			if err != nil {
				return err
			}
			assert.Equal(t, []int64{4, 5, 6}, in.Data())
		}
		return nil
	})
	require.NoError(t, err)
}

func TestDirectionComplement(t *testing.T) {
	require.Equal(t, hsort.ToLow, hsort.ToHigh.Complement())
	require.Equal(t, hsort.ToHigh, hsort.ToLow.Complement())
}
