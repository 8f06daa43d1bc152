package localsort

import (
	"math/rand"
	"slices"
	"testing"
)

func generateInt64(n int) []int64 {
	data := make([]int64, n)
	for i := range data {
		data[i] = rand.Int63n(1_000_000)
	}
	return data
}

func BenchmarkSort_1000(b *testing.B) {
	benchmarkSort(b, Sort, 1000)
}

func BenchmarkSort_100000(b *testing.B) {
	benchmarkSort(b, Sort, 100000)
}

func BenchmarkIntroSort_100000(b *testing.B) {
	benchmarkSort(b, IntroSort, 100000)
}

func BenchmarkRadixSort_100000(b *testing.B) {
	benchmarkSort(b, RadixSort, 100000)
}

func BenchmarkStdlib_100000(b *testing.B) {
	benchmarkSort(b, slices.Sort[[]int64], 100000)
}

func benchmarkSort(b *testing.B, sortFn func([]int64), n int) {
	// Generate reference data
	ref := generateInt64(n)
	data := make([]int64, n)

	b.SetBytes(int64(n * 8))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(data, ref)
		sortFn(data)
	}
}
