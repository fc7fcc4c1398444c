package registration

import (
	"errors"
	"fmt"

	"github.com/vbillys/FeatureBasedAlignment/pointcloud"
	"github.com/vbillys/FeatureBasedAlignment/sac"
)

var (
	// ErrDegenerateSample reports a minimal sample whose points sit too
	// close together, relative to the sample distance threshold, to anchor
	// a stable transform.
	ErrDegenerateSample = errors.New("registration: sample points are too close together")

	// ErrMissingCorrespondence reports a source index with no mapped target
	// index.
	ErrMissingCorrespondence = errors.New("registration: source index has no target correspondence")

	// ErrInvalidCoefficients reports a coefficient vector that is not a
	// flattened 4x4 transform.
	ErrInvalidCoefficients = errors.New("registration: coefficient vector is not a 4x4 transform")
)

// Model estimates and evaluates similarity transforms over asserted
// point-to-point correspondences between a source and a target cloud. It
// implements sac.Model.
//
// The correspondence map and sample distance threshold are rebuilt wholesale
// by SetSource/SetTarget and only read afterwards, so evaluation calls need
// no synchronisation among themselves; callers serialise the setters against
// in-flight evaluations.
type Model struct {
	source        pointcloud.Cloud
	sourceIndices []int
	target        pointcloud.Cloud
	targetIndices []int

	corr             *Correspondences
	sampleDistThresh float64
}

// NewModel returns a Model with the given source assignment. A nil subset
// selects every point. The target is assigned separately via SetTarget.
func NewModel(source pointcloud.Cloud, sourceIndices []int) (*Model, error) {
	m := &Model{}
	if err := m.SetSource(source, sourceIndices); err != nil {
		return nil, err
	}
	return m, nil
}

// SetSource assigns the source cloud and subset (nil selects every point),
// recomputes the sample distance threshold from the source spread, and
// rebuilds the correspondence map if a target is already assigned.
func (m *Model) SetSource(cloud pointcloud.Cloud, indices []int) error {
	if indices == nil {
		indices = cloud.SequentialIndices()
	}
	threshold, err := SampleDistanceThreshold(cloud, indices)
	if err != nil {
		return err
	}
	m.source = cloud
	m.sourceIndices = indices
	m.sampleDistThresh = threshold
	return m.rebuildCorrespondences()
}

// SetTarget assigns the target cloud and subset (nil selects every point)
// and rebuilds the correspondence map if a source is already assigned.
func (m *Model) SetTarget(cloud pointcloud.Cloud, indices []int) error {
	if indices == nil {
		indices = cloud.SequentialIndices()
	}
	if len(indices) == 0 {
		return ErrEmptySelection
	}
	m.target = cloud
	m.targetIndices = indices
	return m.rebuildCorrespondences()
}

// rebuildCorrespondences swaps in a fresh correspondence map once both
// subsets are assigned. On a length mismatch the previous map stays in
// effect and the mismatch is reported, so a caller can never silently
// evaluate against a stale pairing.
func (m *Model) rebuildCorrespondences() error {
	if m.sourceIndices == nil || m.targetIndices == nil {
		return nil
	}
	corr, err := NewCorrespondences(m.sourceIndices, m.targetIndices)
	if err != nil {
		return err
	}
	m.corr = corr
	return nil
}

// Correspondences returns the current immutable correspondence map, or nil
// before both clouds are assigned.
func (m *Model) Correspondences() *Correspondences {
	return m.corr
}

// SampleThreshold returns the PCA-derived spacing threshold computed from
// the current source assignment.
func (m *Model) SampleThreshold() float64 {
	return m.sampleDistThresh
}

// Type reports the correspondence-based registration tag.
func (m *Model) Type() sac.ModelType {
	return sac.ModelRegistration
}

// SampleSize returns the minimal sample size for a similarity transform.
func (m *Model) SampleSize() int {
	return MinSamplePairs
}

// Indices returns the source index subset the driver samples from.
func (m *Model) Indices() []int {
	return m.sourceIndices
}

// ComputeCoefficients fits a candidate transform to a minimal sample of
// source indices. The sample is first checked for spatial degeneracy
// against the sample distance threshold; every sampled index must then
// resolve to a target correspondence before the closed-form solver runs.
func (m *Model) ComputeCoefficients(sample []int) ([]float64, error) {
	if len(sample) < MinSamplePairs {
		return nil, fmt.Errorf("registration: sample of %d is below the minimum of %d", len(sample), MinSamplePairs)
	}
	if !m.isSampleGood(sample) {
		return nil, ErrDegenerateSample
	}
	src, tgt, err := m.resolve(sample)
	if err != nil {
		return nil, err
	}
	return EstimateSimilarityTransform(src, tgt)
}

// OptimizeCoefficients refits the transform over a full inlier set. The
// solve is closed-form, so initial is never used as a seed; it is only
// validated, and callers keep it when refitting fails.
func (m *Model) OptimizeCoefficients(inliers []int, initial []float64) ([]float64, error) {
	if !IsValidTransform(initial) {
		return nil, ErrInvalidCoefficients
	}
	src, tgt, err := m.resolve(inliers)
	if err != nil {
		return nil, err
	}
	return EstimateSimilarityTransform(src, tgt)
}

// Distances returns the per-point residuals of the source subset under
// coeffs, in subset order.
func (m *Model) Distances(coeffs []float64) []float64 {
	return Distances(coeffs, m.source, m.sourceIndices, m.corr, m.target)
}

// SelectWithinDistance returns the source indices whose residual under
// coeffs is strictly below threshold, in subset order.
func (m *Model) SelectWithinDistance(coeffs []float64, threshold float64) []int {
	return SelectWithinDistance(coeffs, m.source, m.sourceIndices, m.corr, m.target, threshold)
}

// CountWithinDistance counts the indices SelectWithinDistance would return,
// without materialising them.
func (m *Model) CountWithinDistance(coeffs []float64, threshold float64) int {
	return CountWithinDistance(coeffs, m.source, m.sourceIndices, m.corr, m.target, threshold)
}

// IsValid reports whether coeffs has exactly the 16 entries of a flattened
// 4x4 transform.
func (m *Model) IsValid(coeffs []float64) bool {
	return IsValidTransform(coeffs)
}

// VerifySamples is not supported by the registration model.
func (m *Model) VerifySamples(sample []int, coeffs []float64, threshold float64) (bool, error) {
	return false, sac.ErrUnsupported
}

// ProjectPoints is not supported by the registration model.
func (m *Model) ProjectPoints(inliers []int, coeffs []float64) (pointcloud.Cloud, error) {
	return nil, sac.ErrUnsupported
}

// isSampleGood rejects samples whose mutual spacing does not exceed the
// data-adaptive sample distance threshold: collinear or overlapping picks
// cannot anchor a stable transform. Spacing and threshold are both in
// squared units.
func (m *Model) isSampleGood(sample []int) bool {
	for i := 0; i < len(sample); i++ {
		for j := i + 1; j < len(sample); j++ {
			if pointcloud.SquaredDistance(m.source[sample[i]], m.source[sample[j]]) <= m.sampleDistThresh {
				return false
			}
		}
	}
	return true
}

// resolve maps source indices through the correspondence index and gathers
// both sides' points in sample order. Any unresolvable index fails the whole
// sample.
func (m *Model) resolve(indices []int) (src, tgt []pointcloud.Point, err error) {
	targetIndices := make([]int, len(indices))
	for i, srcIdx := range indices {
		tgtIdx, ok := m.corr.Lookup(srcIdx)
		if !ok {
			return nil, nil, fmt.Errorf("%w: source index %d", ErrMissingCorrespondence, srcIdx)
		}
		targetIndices[i] = tgtIdx
	}
	return m.source.Gather(indices), m.target.Gather(targetIndices), nil
}
