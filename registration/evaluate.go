package registration

import (
	"math"

	"github.com/vbillys/FeatureBasedAlignment/pointcloud"
)

// NotEvaluable is the distance recorded for a source point whose target
// correspondence cannot be resolved. It compares above any finite threshold,
// so such points are never inliers.
var NotEvaluable = math.Inf(1)

// Distances computes the residual of every subset point under the given
// transform: each source point is transformed by coeffs and measured against
// its corresponding target point by Euclidean distance. The result has one
// entry per subset element in subset order; points without a resolvable
// correspondence record NotEvaluable. An invalid coefficient vector makes
// every point NotEvaluable.
func Distances(coeffs []float64, source pointcloud.Cloud, subset []int, corr *Correspondences, target pointcloud.Cloud) []float64 {
	distances := make([]float64, len(subset))
	if !IsValidTransform(coeffs) {
		for i := range distances {
			distances[i] = NotEvaluable
		}
		return distances
	}
	for i, srcIdx := range subset {
		tgtIdx, ok := corr.Lookup(srcIdx)
		if !ok {
			distances[i] = NotEvaluable
			continue
		}
		distances[i] = residual(coeffs, source[srcIdx], target[tgtIdx])
	}
	return distances
}

// SelectWithinDistance returns the source indices whose residual under
// coeffs is strictly less than threshold, preserving subset order. Points
// without a resolvable correspondence are excluded.
func SelectWithinDistance(coeffs []float64, source pointcloud.Cloud, subset []int, corr *Correspondences, target pointcloud.Cloud, threshold float64) []int {
	if !IsValidTransform(coeffs) {
		return nil
	}
	inliers := make([]int, 0, len(subset))
	for _, srcIdx := range subset {
		tgtIdx, ok := corr.Lookup(srcIdx)
		if !ok {
			continue
		}
		if residual(coeffs, source[srcIdx], target[tgtIdx]) < threshold {
			inliers = append(inliers, srcIdx)
		}
	}
	return inliers
}

// CountWithinDistance is the counting fast path of SelectWithinDistance:
// the driver scores candidates far more often than it materialises inlier
// sets, so no index slice is allocated.
func CountWithinDistance(coeffs []float64, source pointcloud.Cloud, subset []int, corr *Correspondences, target pointcloud.Cloud, threshold float64) int {
	if !IsValidTransform(coeffs) {
		return 0
	}
	count := 0
	for _, srcIdx := range subset {
		tgtIdx, ok := corr.Lookup(srcIdx)
		if !ok {
			continue
		}
		if residual(coeffs, source[srcIdx], target[tgtIdx]) < threshold {
			count++
		}
	}
	return count
}

// residual is the Euclidean distance between the transformed source point
// and its target.
func residual(coeffs []float64, src, tgt pointcloud.Point) float64 {
	x, y, z := ApplyTransform(coeffs, src.X, src.Y, src.Z)
	return pointcloud.Distance(pointcloud.Point{X: x, Y: y, Z: z}, tgt)
}
