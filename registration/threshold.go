package registration

import (
	"errors"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/vbillys/FeatureBasedAlignment/pointcloud"
)

// ErrEmptySelection reports a cloud/subset assignment that selects no points.
var ErrEmptySelection = errors.New("registration: no points selected")

// SampleDistanceThreshold derives a spacing threshold from the spatial spread
// of a cloud, used to reject spatially degenerate minimal samples. A nil
// subset selects every point.
//
// Algorithm:
//  1. Centroid of the selected points.
//  2. Normalized covariance matrix about the centroid (divided by the point
//     count, so the threshold tracks the population spread).
//  3. Eigenvalues of the covariance, clamped at zero so planar or collinear
//     clouds cannot push the square roots into NaN.
//  4. Threshold = (mean of the three eigenvalue square roots)².
//
// The result is squared units, rotation-invariant and scale-aware: elongated
// clouds get a looser threshold, tight clusters a strict one. It is finite
// and >= 0 for any non-empty selection.
func SampleDistanceThreshold(cloud pointcloud.Cloud, subset []int) (float64, error) {
	if subset == nil {
		subset = cloud.SequentialIndices()
	}
	n := len(subset)
	if n == 0 {
		return 0, ErrEmptySelection
	}

	var sumX, sumY, sumZ float64
	for _, idx := range subset {
		p := cloud[idx]
		sumX += p.X
		sumY += p.Y
		sumZ += p.Z
	}
	nf := float64(n)
	meanX := sumX / nf
	meanY := sumY / nf
	meanZ := sumZ / nf

	// Accumulate the six distinct entries of the symmetric 3x3 covariance.
	var c00, c01, c02, c11, c12, c22 float64
	for _, idx := range subset {
		dx := cloud[idx].X - meanX
		dy := cloud[idx].Y - meanY
		dz := cloud[idx].Z - meanZ
		c00 += dx * dx
		c01 += dx * dy
		c02 += dx * dz
		c11 += dy * dy
		c12 += dy * dz
		c22 += dz * dz
	}
	cov := mat.NewSymDense(3, []float64{
		c00 / nf, c01 / nf, c02 / nf,
		c01 / nf, c11 / nf, c12 / nf,
		c02 / nf, c12 / nf, c22 / nf,
	})

	var eig mat.EigenSym
	if !eig.Factorize(cov, false) {
		return 0, errors.New("registration: covariance eigendecomposition failed")
	}

	var sumSqrt float64
	for _, lambda := range eig.Values(nil) {
		if lambda < 0 {
			// Roundoff on degenerate (planar/collinear) clouds can leave tiny
			// negative eigenvalues.
			lambda = 0
		}
		sumSqrt += math.Sqrt(lambda)
	}
	threshold := sumSqrt / 3.0
	threshold *= threshold
	log.Printf("[Registration] Estimated sample selection distance threshold: %g", threshold)
	return threshold, nil
}
