package registration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vbillys/FeatureBasedAlignment/pointcloud"
)

// identityCoefficients returns the 16-coefficient identity transform.
func identityCoefficients() []float64 {
	return []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func TestDistances_Identity(t *testing.T) {
	source := pointcloud.Cloud{{X: 0}, {X: 1}, {X: 2}}
	target := pointcloud.Cloud{{X: 0}, {X: 1.5}, {X: 2}}
	corr, err := NewCorrespondences([]int{0, 1, 2}, []int{0, 1, 2})
	require.NoError(t, err)

	distances := Distances(identityCoefficients(), source, []int{0, 1, 2}, corr, target)
	require.Len(t, distances, 3)

	want := []float64{0, 0.5, 0}
	for i, d := range distances {
		if math.Abs(d-want[i]) > 1e-12 {
			t.Errorf("distance %d: expected %v, got %v", i, want[i], d)
		}
	}
}

func TestDistances_MissingCorrespondence(t *testing.T) {
	source := pointcloud.Cloud{{X: 0}, {X: 1}, {X: 2}}
	target := pointcloud.Cloud{{X: 0}, {X: 1}}
	// Index 2 has no pairing.
	corr, err := NewCorrespondences([]int{0, 1}, []int{0, 1})
	require.NoError(t, err)

	distances := Distances(identityCoefficients(), source, []int{0, 1, 2}, corr, target)
	require.Len(t, distances, 3)
	if !math.IsInf(distances[2], 1) {
		t.Errorf("unresolvable point must record NotEvaluable, got %v", distances[2])
	}

	inliers := SelectWithinDistance(identityCoefficients(), source, []int{0, 1, 2}, corr, target, 0.1)
	require.Equal(t, []int{0, 1}, inliers, "unresolvable points are excluded from selection")
}

func TestDistances_InvalidCoefficients(t *testing.T) {
	source := pointcloud.Cloud{{X: 0}, {X: 1}}
	target := pointcloud.Cloud{{X: 0}, {X: 1}}
	corr, err := NewCorrespondences([]int{0, 1}, []int{0, 1})
	require.NoError(t, err)

	short := []float64{1, 0, 0}
	for _, d := range Distances(short, source, []int{0, 1}, corr, target) {
		if !math.IsInf(d, 1) {
			t.Errorf("invalid coefficients must make every point NotEvaluable, got %v", d)
		}
	}
	require.Nil(t, SelectWithinDistance(short, source, []int{0, 1}, corr, target, 1))
	require.Zero(t, CountWithinDistance(short, source, []int{0, 1}, corr, target, 1))
}

// Selection and counting must agree, selected distances must be strictly
// below threshold, and every selected index must resolve.
func TestSelectAndCountConsistency(t *testing.T) {
	source := pointcloud.Cloud{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 2, Z: 0},
		{X: 0, Y: 0, Z: 3},
		{X: 4, Y: 4, Z: 4},
	}
	// Targets: 0 and 3 align exactly, 1 is off by 0.05, 2 is off by 10,
	// 4 has no correspondence at all.
	target := pointcloud.Cloud{
		{X: 0, Y: 0, Z: 0},
		{X: 1.05, Y: 0, Z: 0},
		{X: 0, Y: 12, Z: 0},
		{X: 0, Y: 0, Z: 3},
	}
	subset := []int{0, 1, 2, 3, 4}
	corr, err := NewCorrespondences([]int{0, 1, 2, 3}, []int{0, 1, 2, 3})
	require.NoError(t, err)

	coeffs := identityCoefficients()
	for _, threshold := range []float64{0.01, 0.1, 1, 100} {
		inliers := SelectWithinDistance(coeffs, source, subset, corr, target, threshold)
		count := CountWithinDistance(coeffs, source, subset, corr, target, threshold)
		require.Equal(t, len(inliers), count, "threshold %v", threshold)

		distances := Distances(coeffs, source, subset, corr, target)
		for _, idx := range inliers {
			_, ok := corr.Lookup(idx)
			require.True(t, ok, "selected index %d must resolve", idx)
			// subset is 0..4 in order, so idx doubles as the subset position.
			require.Less(t, distances[idx], threshold)
		}
	}

	// Strictness: a residual exactly at the threshold is not an inlier.
	inliers := SelectWithinDistance(coeffs, source, subset, corr, target, 0.05)
	require.NotContains(t, inliers, 1)
}
