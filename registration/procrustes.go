package registration

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/vbillys/FeatureBasedAlignment/pointcloud"
)

// MinSamplePairs is the smallest number of non-degenerate correspondences
// that determines a similarity transform.
const MinSamplePairs = 3

// rankTolerance scales the largest singular value when deciding how many
// singular values of the cross-covariance are effectively nonzero. Fewer
// than two nonzero singular values (collinear centered points) leave the
// rotation ambiguous.
const rankTolerance = 1e-12

var (
	// ErrDegenerateGeometry reports point pairs whose geometry leaves the
	// rotation ambiguous: collinear or coincident centered points.
	ErrDegenerateGeometry = errors.New("registration: point geometry leaves the rotation ambiguous")

	// ErrSVDFailed reports a singular value decomposition that did not
	// converge.
	ErrSVDFailed = errors.New("registration: singular value decomposition did not converge")
)

// EstimateSimilarityTransform computes the least-squares similarity transform
// T (rotation, isotropic scale, translation) minimising Σ‖T·srcᵢ − tgtᵢ‖²
// over two equal-length ordered point lists, using the closed-form absolute
// orientation (Procrustes/SVD) method.
//
// Algorithm:
//  1. Centre both point sets at their centroids.
//  2. Form the cross-covariance of the centred target against the centred
//     source, and the source variance.
//  3. Decompose the cross-covariance via SVD; the rotation is U·diag(1,1,d)·Vᵀ
//     where d = sign(det(U·Vᵀ)) corrects reflections so det(R) = +1.
//  4. Uniform scale = (σ₁ + σ₂ + d·σ₃) / source variance.
//  5. Translation = target centroid − scale·R·(source centroid).
//
// On success the transform is returned flattened row-major into 16
// coefficients. Coplanar point sets are solvable; collinear ones are not.
func EstimateSimilarityTransform(src, tgt []pointcloud.Point) ([]float64, error) {
	n := len(src)
	if n != len(tgt) {
		return nil, fmt.Errorf("registration: point lists differ in length (%d vs %d)", n, len(tgt))
	}
	if n < MinSamplePairs {
		return nil, fmt.Errorf("registration: need at least %d point pairs, have %d", MinSamplePairs, n)
	}

	srcMean := pointcloud.Centroid(src)
	tgtMean := pointcloud.Centroid(tgt)

	// Cross-covariance H = (1/n) Σ (tgtᵢ−t̄)(srcᵢ−s̄)ᵀ, row-major, and the
	// source variance σ² = (1/n) Σ ‖srcᵢ−s̄‖².
	nf := float64(n)
	var h [9]float64
	var srcVar float64
	for i := 0; i < n; i++ {
		px := src[i].X - srcMean.X
		py := src[i].Y - srcMean.Y
		pz := src[i].Z - srcMean.Z
		qx := tgt[i].X - tgtMean.X
		qy := tgt[i].Y - tgtMean.Y
		qz := tgt[i].Z - tgtMean.Z

		h[0] += qx * px
		h[1] += qx * py
		h[2] += qx * pz
		h[3] += qy * px
		h[4] += qy * py
		h[5] += qy * pz
		h[6] += qz * px
		h[7] += qz * py
		h[8] += qz * pz

		srcVar += px*px + py*py + pz*pz
	}
	for i := range h {
		h[i] /= nf
	}
	srcVar /= nf
	if srcVar == 0 {
		// Every source point coincides with the centroid.
		return nil, ErrDegenerateGeometry
	}

	var svd mat.SVD
	if !svd.Factorize(mat.NewDense(3, 3, h[:]), mat.SVDFull) {
		return nil, ErrSVDFailed
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)
	if sv[0] == 0 || sv[1] <= rankTolerance*sv[0] {
		return nil, ErrDegenerateGeometry
	}

	// d flips the weakest singular direction when U·Vᵀ would be a reflection.
	var uvT mat.Dense
	uvT.Mul(&u, v.T())
	d := 1.0
	if mat.Det(&uvT) < 0 {
		d = -1.0
	}

	// R = U·diag(1,1,d)·Vᵀ
	var ud, r mat.Dense
	ud.Mul(&u, mat.NewDiagDense(3, []float64{1, 1, d}))
	r.Mul(&ud, v.T())

	scale := (sv[0] + sv[1] + d*sv[2]) / srcVar

	// t = t̄ − scale·R·s̄
	rx := r.At(0, 0)*srcMean.X + r.At(0, 1)*srcMean.Y + r.At(0, 2)*srcMean.Z
	ry := r.At(1, 0)*srcMean.X + r.At(1, 1)*srcMean.Y + r.At(1, 2)*srcMean.Z
	rz := r.At(2, 0)*srcMean.X + r.At(2, 1)*srcMean.Y + r.At(2, 2)*srcMean.Z

	coeffs := make([]float64, TransformSize)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			coeffs[i*4+j] = scale * r.At(i, j)
		}
	}
	coeffs[3] = tgtMean.X - scale*rx
	coeffs[7] = tgtMean.Y - scale*ry
	coeffs[11] = tgtMean.Z - scale*rz
	coeffs[15] = 1
	return coeffs, nil
}
