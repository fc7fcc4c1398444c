package sac

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Constants for driver configuration
const (
	// DefaultProbability is the certainty target for the adaptive iteration
	// bound: the chance that at least one sampled minimal set is outlier-free.
	DefaultProbability = 0.99
	// DefaultMaxIterations caps the sampling loop when the adaptive bound
	// never tightens.
	DefaultMaxIterations = 1000
)

// ErrNoConsensus reports a Compute run in which no sampled candidate
// produced a valid fit.
var ErrNoConsensus = errors.New("sac: no candidate model reached consensus")

// RANSAC is a random-sample-consensus driver: it repeatedly fits the model
// to random minimal samples, scores each candidate by inlier count, and
// keeps the best-supported one. Iteration-budget management and best-model
// bookkeeping live here; all geometry lives in the Model.
type RANSAC struct {
	Model     Model
	Threshold float64

	// Probability tunes the adaptive early exit; see DefaultProbability.
	Probability float64
	// MaxIterations caps the sampling loop.
	MaxIterations int

	rng *rand.Rand

	bestCoeffs      []float64
	bestInlierCount int
}

// NewRANSAC returns a driver over the given model with the given inlier
// distance threshold and default budget settings.
func NewRANSAC(model Model, threshold float64) *RANSAC {
	return &RANSAC{
		Model:         model,
		Threshold:     threshold,
		Probability:   DefaultProbability,
		MaxIterations: DefaultMaxIterations,
		rng:           rand.New(rand.NewSource(rand.Int63())),
	}
}

// Seed makes the sampling sequence deterministic, for tests and replays.
func (r *RANSAC) Seed(seed int64) {
	r.rng = rand.New(rand.NewSource(seed))
}

// Compute runs the sampling loop. After a nil return, Coefficients and
// Inliers describe the best-supported candidate found.
func (r *RANSAC) Compute() error {
	indices := r.Model.Indices()
	k := r.Model.SampleSize()
	if len(indices) < k {
		return fmt.Errorf("sac: %d indices cannot fill a sample of %d", len(indices), k)
	}

	r.bestCoeffs = nil
	r.bestInlierCount = 0

	maxIter := r.MaxIterations
	sample := make([]int, k)
	for iter := 0; iter < maxIter; iter++ {
		for i, pos := range r.rng.Perm(len(indices))[:k] {
			sample[i] = indices[pos]
		}

		coeffs, err := r.Model.ComputeCoefficients(sample)
		if err != nil {
			// Degenerate or unresolvable sample; discard and resample.
			continue
		}

		count := r.Model.CountWithinDistance(coeffs, r.Threshold)
		if count <= r.bestInlierCount {
			continue
		}
		r.bestCoeffs = coeffs
		r.bestInlierCount = count

		// Standard adaptive bound: iterations needed so that an
		// outlier-free sample is drawn with the target probability, given
		// the observed inlier ratio.
		w := float64(count) / float64(len(indices))
		denom := math.Log(1 - math.Pow(w, float64(k)))
		if denom < 0 {
			if adaptive := int(math.Ceil(math.Log(1-r.Probability) / denom)); adaptive < maxIter {
				maxIter = adaptive
			}
		}
	}

	if r.bestCoeffs == nil {
		return ErrNoConsensus
	}
	return nil
}

// Coefficients returns the best candidate's coefficient vector, or nil
// before a successful Compute.
func (r *RANSAC) Coefficients() []float64 {
	return r.bestCoeffs
}

// Inliers returns the indices supporting the best candidate.
func (r *RANSAC) Inliers() []int {
	if r.bestCoeffs == nil {
		return nil
	}
	return r.Model.SelectWithinDistance(r.bestCoeffs, r.Threshold)
}

// Refine refits the best candidate over its full inlier set and returns the
// refined coefficients. The best candidate is left untouched if refitting
// fails.
func (r *RANSAC) Refine() ([]float64, error) {
	if r.bestCoeffs == nil {
		return nil, ErrNoConsensus
	}
	refined, err := r.Model.OptimizeCoefficients(r.Inliers(), r.bestCoeffs)
	if err != nil {
		return nil, err
	}
	r.bestCoeffs = refined
	return refined, nil
}
