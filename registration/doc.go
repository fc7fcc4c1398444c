// Package registration implements the correspondence-based registration
// model used for point-to-point outlier rejection.
//
// Responsibilities: maintaining the source→target correspondence index,
// estimating the PCA-derived sample distance threshold, solving the
// closed-form similarity transform (absolute orientation via SVD), and
// classifying inliers by residual distance.
// Key types: Model, Correspondences.
//
// The package is the "model" half of a sample-consensus system; the driver
// half lives in package sac and depends only on the sac.Model interface.
// All operations are synchronous and CPU-bound. The Model provides no
// locking: callers must complete SetSource/SetTarget before issuing
// evaluation calls and must not reassign clouds concurrently with them.
package registration
