package anomaly_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetcarbon/compliance-backend/internal/anomaly"
)

// clusterWithOutlier returns n points on a small grid around the origin plus one far point at the end.
func clusterWithOutlier(n int) [][]float64 {
	X := make([][]float64, 0, n+1)
	for i := range n {
		X = append(X, []float64{float64(i%5) * 0.1, float64(i%3) * 0.1})
	}
	return append(X, []float64{10, 10})
}

func TestForest_Fit_Empty(t *testing.T) {
	f := anomaly.NewForest(anomaly.ForestOptions{Seed: 1})

	err := f.Fit(nil)

	assert.ErrorIs(t, err, anomaly.ErrNoData)
}

func TestForest_ScoresInRange(t *testing.T) {
	X := clusterWithOutlier(40)
	f := anomaly.NewForest(anomaly.ForestOptions{Seed: 7})
	require.NoError(t, f.Fit(X))

	for _, s := range f.ScoreSamples(X) {
		assert.GreaterOrEqual(t, s, -1.0)
		assert.LessOrEqual(t, s, 0.0)
	}
}

func TestForest_OutlierScoresLowest(t *testing.T) {
	X := clusterWithOutlier(40)
	f := anomaly.NewForest(anomaly.ForestOptions{Seed: 42})
	require.NoError(t, f.Fit(X))

	scores := f.ScoreSamples(X)
	last := scores[len(scores)-1]
	for i, s := range scores[:len(scores)-1] {
		assert.Less(t, last, s, "point %d", i)
	}
}

func TestForest_SameSeedSameScores(t *testing.T) {
	X := clusterWithOutlier(30)

	a := anomaly.NewForest(anomaly.ForestOptions{Seed: 42})
	b := anomaly.NewForest(anomaly.ForestOptions{Seed: 42})
	require.NoError(t, a.Fit(X))
	require.NoError(t, b.Fit(X))

	assert.Equal(t, a.ScoreSamples(X), b.ScoreSamples(X))
}

func TestForest_IdenticalPointsScoreEqually(t *testing.T) {
	X := make([][]float64, 12)
	for i := range X {
		X[i] = []float64{1, 2, 3}
	}
	f := anomaly.NewForest(anomaly.ForestOptions{Seed: 3})
	require.NoError(t, f.Fit(X))

	scores := f.ScoreSamples(X)
	for _, s := range scores {
		assert.Equal(t, scores[0], s)
	}
	assert.NotContains(t, anomaly.Predict(scores, 0.1), true)
}

func TestOffset_LinearInterpolation(t *testing.T) {
	scores := []float64{-0.9, -0.5, -0.4, -0.3, -0.2}

	// position 0.25*4 = 1 lands exactly on the second value
	assert.InDelta(t, -0.5, anomaly.Offset(scores, 0.25), 1e-12)
	// position 0.1*4 = 0.4 is 40% of the way from -0.9 to -0.5
	assert.InDelta(t, -0.74, anomaly.Offset(scores, 0.1), 1e-12)
}

func TestPredict_StrictlyBelowOffset(t *testing.T) {
	scores := []float64{-0.3, -0.9, -0.5, -0.4, -0.2}

	got := anomaly.Predict(scores, 0.25)

	assert.Equal(t, []bool{false, true, false, false, false}, got)
}
