// Package pointcloud holds the point and cloud value types shared by the
// registration model and the sample-consensus driver.
//
// Clouds are owned by the caller: the rest of the library borrows them for
// the lifetime of a fitting session and never mutates or copies them.
package pointcloud

import "math"

// Point is a single point in Cartesian 3-space (metres).
type Point struct {
	X, Y, Z float64
}

// Cloud is an ordered, fixed-size sequence of points.
type Cloud []Point

// SequentialIndices returns the full index subset 0..len(c)-1. It is the
// subset used when a caller assigns a cloud without naming one.
func (c Cloud) SequentialIndices() []int {
	indices := make([]int, len(c))
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// Gather resolves indices to points, preserving order. Indices must be valid
// for the cloud.
func (c Cloud) Gather(indices []int) []Point {
	points := make([]Point, len(indices))
	for i, idx := range indices {
		points[i] = c[idx]
	}
	return points
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// SquaredDistance returns the squared Euclidean distance between two points.
// It is the form compared against the sample distance threshold, which is
// itself in squared units.
func SquaredDistance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// Centroid returns the mean position of the given points. The zero Point is
// returned for an empty slice.
func Centroid(points []Point) Point {
	n := len(points)
	if n == 0 {
		return Point{}
	}
	var sumX, sumY, sumZ float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumZ += p.Z
	}
	nf := float64(n)
	return Point{X: sumX / nf, Y: sumY / nf, Z: sumZ / nf}
}
