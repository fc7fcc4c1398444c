package sac_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbillys/FeatureBasedAlignment/pointcloud"
	"github.com/vbillys/FeatureBasedAlignment/registration"
	"github.com/vbillys/FeatureBasedAlignment/sac"
)

// rotZ90 is the row-major rotation matrix for 90 degrees about Z.
var rotZ90 = [9]float64{
	0, -1, 0,
	1, 0, 0,
	0, 0, 1,
}

func applySimilarity(scale float64, r [9]float64, tx, ty, tz float64, p pointcloud.Point) pointcloud.Point {
	return pointcloud.Point{
		X: scale*(r[0]*p.X+r[1]*p.Y+r[2]*p.Z) + tx,
		Y: scale*(r[3]*p.X+r[4]*p.Y+r[5]*p.Z) + ty,
		Z: scale*(r[6]*p.X+r[7]*p.Y+r[8]*p.Z) + tz,
	}
}

// RANSAC over correspondences where a quarter are corrupt: the clean
// majority must be recovered and the refined transform must match the
// ground truth.
func TestRANSAC_RejectsCorruptCorrespondences(t *testing.T) {
	const (
		pointCount   = 40
		corruptCount = 10
	)
	rng := rand.New(rand.NewSource(7))

	source := make(pointcloud.Cloud, pointCount)
	for i := range source {
		source[i] = pointcloud.Point{
			X: rng.Float64() * 10,
			Y: rng.Float64() * 10,
			Z: rng.Float64() * 10,
		}
	}

	scale := 2.0
	tx, ty, tz := 1.0, 2.0, 3.0
	target := make(pointcloud.Cloud, pointCount)
	for i, p := range source {
		target[i] = applySimilarity(scale, rotZ90, tx, ty, tz, p)
	}
	// Corrupt a minority of correspondences with large incoherent offsets.
	for i := 0; i < corruptCount; i++ {
		target[i].X += 40 + rng.Float64()*20
		target[i].Y -= 30 + rng.Float64()*20
		target[i].Z += 25 + rng.Float64()*20
	}

	model, err := registration.NewModel(source, nil)
	require.NoError(t, err)
	require.NoError(t, model.SetTarget(target, nil))

	driver := sac.NewRANSAC(model, 1e-4)
	driver.Seed(42)
	require.NoError(t, driver.Compute())

	inliers := driver.Inliers()
	require.Len(t, inliers, pointCount-corruptCount)
	for _, idx := range inliers {
		assert.GreaterOrEqual(t, idx, corruptCount, "corrupted correspondence %d must not be an inlier", idx)
	}

	refined, err := driver.Refine()
	require.NoError(t, err)
	require.True(t, model.IsValid(refined))

	want := []float64{
		scale * rotZ90[0], scale * rotZ90[1], scale * rotZ90[2], tx,
		scale * rotZ90[3], scale * rotZ90[4], scale * rotZ90[5], ty,
		scale * rotZ90[6], scale * rotZ90[7], scale * rotZ90[8], tz,
		0, 0, 0, 1,
	}
	for i := range want {
		if math.Abs(want[i]-refined[i]) > 1e-6 {
			t.Fatalf("refined coefficient %d: expected %v, got %v", i, want[i], refined[i])
		}
	}
}

func TestRANSAC_NoConsensusOnCollinearCloud(t *testing.T) {
	// Every minimal sample of a collinear cloud is degenerate, so no
	// candidate can ever fit.
	source := make(pointcloud.Cloud, 10)
	for i := range source {
		source[i] = pointcloud.Point{X: float64(i)}
	}
	target := make(pointcloud.Cloud, 10)
	copy(target, source)

	model, err := registration.NewModel(source, nil)
	require.NoError(t, err)
	require.NoError(t, model.SetTarget(target, nil))

	driver := sac.NewRANSAC(model, 0.1)
	driver.Seed(1)
	driver.MaxIterations = 50

	err = driver.Compute()
	assert.True(t, errors.Is(err, sac.ErrNoConsensus), "got %v", err)
	assert.Nil(t, driver.Coefficients())
	assert.Nil(t, driver.Inliers())

	_, err = driver.Refine()
	assert.True(t, errors.Is(err, sac.ErrNoConsensus))
}

func TestRANSAC_TooFewIndices(t *testing.T) {
	source := pointcloud.Cloud{{X: 0}, {X: 5}}
	model, err := registration.NewModel(source, nil)
	require.NoError(t, err)
	require.NoError(t, model.SetTarget(source, nil))

	driver := sac.NewRANSAC(model, 0.1)
	assert.Error(t, driver.Compute())
}
