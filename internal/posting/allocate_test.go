package posting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateProportionallyRemainder(t *testing.T) {
	// 7 cents across a 60/40 split: 4.2 rounds to 4, the last line
	// absorbs what is left so nothing is lost or double-counted
	got := AllocateProportionally(7, []int64{6000, 4000})
	require.Equal(t, []int64{4, 3}, got)
}

func TestAllocateProportionallySumsToTotal(t *testing.T) {
	cases := []struct {
		total   int64
		weights []int64
	}{
		{100, []int64{1, 1, 1}},
		{99, []int64{50, 30, 20}},
		{1, []int64{999, 1}},
		{12345, []int64{7, 13, 29, 1}},
		{10, []int64{0, 5, 0, 5}},
	}
	for _, tc := range cases {
		got := AllocateProportionally(tc.total, tc.weights)
		var sum int64
		for _, v := range got {
			sum += v
		}
		require.Equal(t, tc.total, sum, "weights %v", tc.weights)
	}
}

func TestAllocateProportionallyZeroWeights(t *testing.T) {
	got := AllocateProportionally(50, []int64{0, 0})
	require.Equal(t, []int64{0, 50}, got)
	require.Empty(t, AllocateProportionally(10, nil))
}

func TestAllocateProportionallyLastNonzeroAbsorbs(t *testing.T) {
	// trailing zero weight must not receive the remainder
	got := AllocateProportionally(7, []int64{6000, 4000, 0})
	require.Equal(t, []int64{4, 3, 0}, got)
}
