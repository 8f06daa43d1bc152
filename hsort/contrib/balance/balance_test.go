package balance

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestOfChunks(t *testing.T) {
	got := OfChunks([]int{4, 4, 0, 8})
	want := Chunks{
		Ranks:     4,
		Total:     16,
		Min:       0,
		Max:       8,
		Empty:     1,
		Mean:      4,
		StdDev:    math.Sqrt(8),
		Imbalance: 2,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("OfChunks mismatch (-want +got):\n%s", diff)
	}
}

func TestOfChunksNoData(t *testing.T) {
	require.Equal(t, 1.0, OfChunks(nil).Imbalance)
	c := OfChunks([]int{0, 0})
	require.Equal(t, 1.0, c.Imbalance)
	require.Equal(t, 2, c.Empty)
}

func TestOfTimes(t *testing.T) {
	tm := OfTimes([]float64{1, 2, 3})
	require.Equal(t, 3, tm.Samples)
	require.InDelta(t, 2, tm.Mean, 1e-12)
	require.InDelta(t, 1, tm.StdDev, 1e-12)
	require.Equal(t, 1.0, tm.Min)

	require.Zero(t, OfTimes([]float64{5}).StdDev)
	require.Zero(t, OfTimes(nil).Samples)
}

func TestSpeedup(t *testing.T) {
	require.InDelta(t, 4, Speedup(8, 2), 1e-12)
	require.True(t, math.IsNaN(Speedup(1, 0)))
	require.InDelta(t, 0.5, Efficiency(8, 2, 1, 8), 1e-12)
	require.InDelta(t, 1, Efficiency(8, 4, 2, 4), 1e-12)
}
