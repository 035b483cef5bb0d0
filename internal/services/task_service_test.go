package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/cache"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

type taskFixture struct {
	clock *testClock
	store *cache.Store
	repo  *fakeTaskRepo
	svc   services.TaskService
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	clock := newTestClock()
	store := cache.NewWithClock(0, clock.Now)
	repo := newFakeTaskRepo()
	svc := services.NewTaskService(repo, store, 3*time.Minute, time.Second, clock.Now)
	return &taskFixture{clock: clock, store: store, repo: repo, svc: svc}
}

func TestTaskCreate_Validation(t *testing.T) {
	f := newTaskFixture(t)
	var verr *services.ValidationError

	_, err := f.svc.Create(context.Background(), &models.Task{Difficulty: 1, Reward: models.StaticReward{Points: 5}})
	assert.ErrorAs(t, err, &verr, "title required")

	_, err = f.svc.Create(context.Background(), &models.Task{Title: "X", Difficulty: 4, Reward: models.StaticReward{Points: 5}})
	assert.ErrorAs(t, err, &verr, "difficulty out of range")

	_, err = f.svc.Create(context.Background(), &models.Task{Title: "X", Difficulty: 1})
	assert.ErrorAs(t, err, &verr, "a reward mode is required")

	_, err = f.svc.Create(context.Background(), &models.Task{
		Title: "X", Difficulty: 1,
		Reward: models.DynamicReward{Unit: "steps", PointsPerUnit: 1},
	})
	assert.ErrorAs(t, err, &verr, "unknown dynamic unit")

	expires := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.Create(context.Background(), &models.Task{
		Title: "X", Difficulty: 1, ExpiresAt: &expires,
		Reward: models.CollectibleReward{Points: 5, AvailableOn: time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)},
	})
	assert.ErrorAs(t, err, &verr, "collectibles reject expires_at")

	limit := 3
	_, err = f.svc.Create(context.Background(), &models.Task{
		Title: "X", Difficulty: 1, MaxSubmissions: &limit,
		Reward: models.CollectibleReward{Points: 5, AvailableOn: time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC)},
	})
	assert.ErrorAs(t, err, &verr, "collectibles reject max_submissions")

	created, err := f.svc.Create(context.Background(), &models.Task{
		Title: "Valid", Difficulty: 2, Reward: models.StaticReward{Points: 5},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestTaskList_DerivedStatusFilter(t *testing.T) {
	f := newTaskFixture(t)
	now := f.clock.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	f.repo.add(&models.Task{Title: "open", Difficulty: 1, Reward: models.StaticReward{Points: 5}, ExpiresAt: &future})
	f.repo.add(&models.Task{Title: "expired", Difficulty: 1, Reward: models.StaticReward{Points: 5}, ExpiresAt: &past})
	f.repo.add(&models.Task{Title: "hidden", Difficulty: 1, Reward: models.StaticReward{Points: 5}, Hidden: true})

	status := models.TaskPending
	page, err := f.svc.List(context.Background(), models.TaskFilter{Status: &status, Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "open", page.Items[0].Title)

	status = models.TaskCompleted
	page, err = f.svc.List(context.Background(), models.TaskFilter{Status: &status, Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 1, "hidden tasks stay out without include_hidden")
	assert.Equal(t, "expired", page.Items[0].Title)

	page, err = f.svc.List(context.Background(), models.TaskFilter{Status: &status, IncludeHidden: true, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestTaskList_PaginationBoundary(t *testing.T) {
	f := newTaskFixture(t)
	for i := 0; i < 6; i++ {
		f.repo.add(&models.Task{Title: "t", Difficulty: 1, Reward: models.StaticReward{Points: 5}})
	}

	page, err := f.svc.List(context.Background(), models.TaskFilter{Page: 0, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasMore)

	// Exactly-full last page still reports more; the next page comes back
	// empty rather than erroring.
	page, err = f.svc.List(context.Background(), models.TaskFilter{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasMore)

	page, err = f.svc.List(context.Background(), models.TaskFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
}

func TestTaskList_ReadThroughCache(t *testing.T) {
	f := newTaskFixture(t)
	f.repo.add(&models.Task{Title: "one", Difficulty: 1, Reward: models.StaticReward{Points: 5}})

	filter := models.TaskFilter{Limit: 20}
	page, err := f.svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	// Within TTL the repo is not consulted at all.
	f.repo.failWith = errors.New("store down")
	cached, err := f.svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, page, cached)

	// Past TTL with a healthy store the entry is refreshed.
	f.repo.failWith = nil
	f.repo.add(&models.Task{Title: "two", Difficulty: 1, Reward: models.StaticReward{Points: 5}})
	f.clock.Advance(5 * time.Minute)
	fresh, err := f.svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, fresh.Items, 2)
}

func TestTaskGetByID_StaleFallbackOnTimeout(t *testing.T) {
	f := newTaskFixture(t)
	task := f.repo.add(&models.Task{Title: "one", Difficulty: 1, Reward: models.StaticReward{Points: 5}})

	got, err := f.svc.GetByID(context.Background(), task.ID)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	f.repo.failWith = context.DeadlineExceeded

	stale, err := f.svc.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stale)

	// Without a cached copy the timeout surfaces.
	_, err = f.svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, services.ErrUpstreamTimeout)
}

func TestTaskUpdate_InvalidatesCatalogViews(t *testing.T) {
	f := newTaskFixture(t)
	task := f.repo.add(&models.Task{Title: "old title", Difficulty: 1, Reward: models.StaticReward{Points: 5}})

	_, err := f.svc.List(context.Background(), models.TaskFilter{Limit: 20})
	require.NoError(t, err)
	_, err = f.svc.GetByID(context.Background(), task.ID)
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), task.ID, &models.Task{
		Title: "new title", Difficulty: 1, Reward: models.StaticReward{Points: 8},
	})
	require.NoError(t, err)

	got, err := f.svc.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title, "cached copy was dropped by the update")

	page, err := f.svc.List(context.Background(), models.TaskFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "new title", page.Items[0].Title)
}

func TestTaskSetVisibility(t *testing.T) {
	f := newTaskFixture(t)
	task := f.repo.add(&models.Task{Title: "t", Difficulty: 1, Reward: models.StaticReward{Points: 5}})

	require.NoError(t, f.svc.SetVisibility(context.Background(), task.ID, true))

	page, err := f.svc.List(context.Background(), models.TaskFilter{Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	assert.ErrorIs(t, f.svc.SetVisibility(context.Background(), 999, true), services.ErrNotFound)
}
