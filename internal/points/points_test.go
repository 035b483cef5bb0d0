package points_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/points"
)

func TestCompute_Static(t *testing.T) {
	task := &models.Task{ID: 1, Reward: models.StaticReward{Points: 15}}

	pts, err := points.Compute(task, models.SubmissionDetails{})
	require.NoError(t, err)
	assert.Equal(t, 15, pts)

	// Quantity is ignored for static tasks.
	pts, err = points.Compute(task, models.SubmissionDetails{Quantity: 99})
	require.NoError(t, err)
	assert.Equal(t, 15, pts)
}

func TestCompute_DynamicScalesAndRounds(t *testing.T) {
	task := &models.Task{ID: 2, Reward: models.DynamicReward{Unit: models.UnitDistance, PointsPerUnit: 2.5}}

	pts, err := points.Compute(task, models.SubmissionDetails{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 10, pts)

	task.Reward = models.DynamicReward{Unit: models.UnitMinutes, PointsPerUnit: 1.333}
	pts, err = points.Compute(task, models.SubmissionDetails{Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, pts, "3 * 1.333 = 3.999 rounds to 4")

	// Round half up.
	task.Reward = models.DynamicReward{Unit: models.UnitMinutes, PointsPerUnit: 0.5}
	pts, err = points.Compute(task, models.SubmissionDetails{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, pts)
}

func TestCompute_DynamicRejectsNonPositiveQuantity(t *testing.T) {
	task := &models.Task{ID: 3, Reward: models.DynamicReward{Unit: models.UnitMinutes, PointsPerUnit: 2}}

	_, err := points.Compute(task, models.SubmissionDetails{Quantity: 0})
	assert.Error(t, err)

	_, err = points.Compute(task, models.SubmissionDetails{Quantity: -1})
	assert.Error(t, err)
}

func TestCompute_Collectible(t *testing.T) {
	task := &models.Task{ID: 4, Reward: models.CollectibleReward{
		Points:      5,
		AvailableOn: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}}

	pts, err := points.Compute(task, models.SubmissionDetails{})
	require.NoError(t, err)
	assert.Equal(t, 5, pts)
}

func TestCompute_MissingReward(t *testing.T) {
	task := &models.Task{ID: 5}

	_, err := points.Compute(task, models.SubmissionDetails{})
	assert.Error(t, err)
}
