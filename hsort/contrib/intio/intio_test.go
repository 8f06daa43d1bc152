package intio

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadInts(t *testing.T) {
	got, err := ReadInts(strings.NewReader("5\n3 -1\n\t9 0\n7 trailing"))
	require.NoError(t, err)
	require.Equal(t, []int64{3, -1, 9, 0, 7}, got)
}

func TestReadIntsZero(t *testing.T) {
	got, err := ReadInts(strings.NewReader("0\n"))
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestReadIntsErrors(t *testing.T) {
	_, err := ReadInts(strings.NewReader(""))
	require.ErrorIs(t, err, ErrBadCount)

	_, err = ReadInts(strings.NewReader("-2 1 2"))
	require.ErrorIs(t, err, ErrBadCount)

	_, err = ReadInts(strings.NewReader("4 1 2 3"))
	require.ErrorIs(t, err, ErrShortInput)

	_, err = ReadInts(strings.NewReader("2 1 x"))
	require.Error(t, err)
}

func TestWriteInts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInts(&buf, []int64{math.MinInt64, 0, math.MaxInt64}))
	require.Equal(t, "-9223372036854775808 0 9223372036854775807\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteInts(&buf, nil))
	require.Equal(t, "\n", buf.String())
}

func TestInputRoundTrip(t *testing.T) {
	data := []int64{4, -4, 100, 7}
	var buf bytes.Buffer
	require.NoError(t, WriteInput(&buf, data))
	got, err := ReadInts(&buf)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestReadAll(t *testing.T) {
	got, err := ReadAll(strings.NewReader("1 2 3\n"))
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, got)
}
