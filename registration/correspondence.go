package registration

import "errors"

// ErrMismatchedIndices reports source/target index subsets that cannot be
// zipped into a correspondence map: either side empty, or unequal lengths.
var ErrMismatchedIndices = errors.New("registration: source and target index subsets are empty or differ in length")

// Correspondences maps a source-cloud point index to its asserted
// target-cloud counterpart. The value is immutable after construction;
// reassigning a cloud builds a fresh value rather than editing in place, so
// evaluation calls can hold a Correspondences without synchronisation.
//
// Correspondences store plain indices, never point data, so their lifetime
// is independent of the clouds they were built against.
type Correspondences struct {
	m map[int]int
}

// NewCorrespondences zips two equal-length index subsets positionally: the
// i-th source index corresponds to the i-th target index. A source index
// that repeats keeps its last pairing. Empty or unequal-length subsets
// return ErrMismatchedIndices and no map.
func NewCorrespondences(sourceIndices, targetIndices []int) (*Correspondences, error) {
	if len(sourceIndices) == 0 || len(sourceIndices) != len(targetIndices) {
		return nil, ErrMismatchedIndices
	}
	m := make(map[int]int, len(sourceIndices))
	for i, src := range sourceIndices {
		m[src] = targetIndices[i]
	}
	return &Correspondences{m: m}, nil
}

// Lookup returns the target index paired with the given source index.
func (c *Correspondences) Lookup(sourceIndex int) (targetIndex int, ok bool) {
	if c == nil {
		return 0, false
	}
	targetIndex, ok = c.m[sourceIndex]
	return targetIndex, ok
}

// Len returns the number of distinct source indices with a correspondence.
func (c *Correspondences) Len() int {
	if c == nil {
		return 0
	}
	return len(c.m)
}

// Pairs returns a copy of the source→target index map, for diagnostics and
// tests. Mutating the copy does not affect the Correspondences.
func (c *Correspondences) Pairs() map[int]int {
	if c == nil {
		return nil
	}
	pairs := make(map[int]int, len(c.m))
	for src, tgt := range c.m {
		pairs[src] = tgt
	}
	return pairs
}
