// Package sac defines the contract between sample-consensus drivers and the
// models they estimate, and provides a minimal random-sample-consensus
// driver.
//
// A driver never depends on a concrete model: it samples minimal index
// subsets, asks the Model to fit candidate coefficients, and scores each
// candidate against all data through the Model's distance operations.
package sac

import (
	"errors"

	"github.com/vbillys/FeatureBasedAlignment/pointcloud"
)

// ErrUnsupported reports a model operation that is intentionally absent from
// a model variant. Callers must not rely on such operations.
var ErrUnsupported = errors.New("sac: operation not supported by this model")

// ModelType tags a concrete model variant so a driver-side registry can
// dispatch on it without importing the implementation.
type ModelType string

// ModelRegistration identifies the correspondence-based (registration)
// model.
const ModelRegistration ModelType = "registration"

// Model is the estimation contract a sample-consensus driver relies on.
// Coefficient vectors are caller-owned and ephemeral: the model never stores
// them between calls.
type Model interface {
	// Type reports the model variant tag.
	Type() ModelType

	// SampleSize is the minimal number of sampled indices sufficient to fit
	// a candidate.
	SampleSize() int

	// Indices returns the index universe the driver samples from. The slice
	// is borrowed; the driver must not mutate it.
	Indices() []int

	// ComputeCoefficients fits candidate coefficients to a minimal sample.
	// Degenerate or unresolvable samples yield an error; the driver simply
	// discards the candidate and samples again.
	ComputeCoefficients(sample []int) ([]float64, error)

	// OptimizeCoefficients refits coefficients over a full inlier set. On
	// error the caller keeps initial.
	OptimizeCoefficients(inliers []int, initial []float64) ([]float64, error)

	// Distances returns the per-point residuals under the given
	// coefficients, one entry per element of Indices, in order.
	Distances(coeffs []float64) []float64

	// SelectWithinDistance returns the indices whose residual is strictly
	// below threshold, in Indices order.
	SelectWithinDistance(coeffs []float64, threshold float64) []int

	// CountWithinDistance returns the cardinality of SelectWithinDistance
	// for the same arguments without materialising the index slice.
	CountWithinDistance(coeffs []float64, threshold float64) int

	// IsValid reports whether the coefficient vector has the shape this
	// model produces.
	IsValid(coeffs []float64) bool

	// VerifySamples checks a sample directly against candidate
	// coefficients. Variants that cannot return (false, ErrUnsupported).
	VerifySamples(sample []int, coeffs []float64, threshold float64) (bool, error)

	// ProjectPoints projects inlier points onto the model surface. Variants
	// that cannot return (nil, ErrUnsupported).
	ProjectPoints(inliers []int, coeffs []float64) (pointcloud.Cloud, error)
}
