// internal/services/task_service.go
package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/cache"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/repositories"
)

// TaskService is the read-mostly catalog plus the admin mutations on it.
type TaskService interface {
	List(ctx context.Context, filter models.TaskFilter) (*models.TaskPage, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id int64, task *models.Task) (*models.Task, error)
	SetVisibility(ctx context.Context, id int64, hidden bool) error
}

type taskService struct {
	repo    repositories.TaskRepository
	cache   *cache.Store
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

// NewTaskService creates a new instance of TaskService. The cache instance is
// injected so tests can supply a fake clock and a fresh store.
func NewTaskService(repo repositories.TaskRepository, store *cache.Store, ttl, timeout time.Duration, now func() time.Time) TaskService {
	if now == nil {
		now = time.Now
	}
	return &taskService{repo: repo, cache: store, ttl: ttl, timeout: timeout, now: now}
}

func (s *taskService) List(ctx context.Context, filter models.TaskFilter) (*models.TaskPage, error) {
	key := taskListKey(filter)
	if v, ok := s.cache.Get(key); ok {
		if page, ok := v.(*models.TaskPage); ok {
			return page, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	items, err := s.repo.FindAll(ctx, filter, s.now())
	if err != nil {
		werr := upstream(err)
		if isTimeout(werr) {
			if v, ok := s.cache.GetStale(key); ok {
				if page, ok := v.(*models.TaskPage); ok {
					log.Printf("[task][list][stale] store timeout, serving stale key=%s", key)
					return page, nil
				}
			}
		}
		return nil, werr
	}
	if items == nil {
		items = []models.Task{}
	}
	page := &models.TaskPage{Items: items, HasMore: len(items) == filter.Limit}
	s.cache.Set(key, page, s.ttl)
	return page, nil
}

func (s *taskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	key := taskKey(id)
	if v, ok := s.cache.Get(key); ok {
		if task, ok := v.(*models.Task); ok {
			return task, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		werr := upstream(err)
		if isTimeout(werr) {
			if v, ok := s.cache.GetStale(key); ok {
				if task, ok := v.(*models.Task); ok {
					log.Printf("[task][get][stale] store timeout, serving stale id=%d", id)
					return task, nil
				}
			}
		}
		return nil, werr
	}
	s.cache.Set(key, task, s.ttl)
	return task, nil
}

func (s *taskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := validateTask(task); err != nil {
		return nil, err
	}
	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Store(ctx, task); err != nil {
		return nil, upstream(err)
	}
	s.cache.Invalidate("tasks:")
	return task, nil
}

func (s *taskService) Update(ctx context.Context, id int64, task *models.Task) (*models.Task, error) {
	if err := validateTask(task); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, upstream(err)
	}

	task.ID = existing.ID
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, upstream(err)
	}
	// A definition change affects every cached task view (and nothing else).
	s.cache.Invalidate("tasks:")
	return task, nil
}

func (s *taskService) SetVisibility(ctx context.Context, id int64, hidden bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.SetHidden(ctx, id, hidden); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return upstream(err)
	}
	s.cache.Invalidate("tasks:")
	return nil
}

// validateTask checks the admin-supplied definition; the reward variant keeps
// "exactly one mode" by construction, so only mode-internal fields need rules.
func validateTask(task *models.Task) error {
	if task.Title == "" {
		return validationf("title is required")
	}
	if task.Difficulty < 1 || task.Difficulty > 3 {
		return validationf("difficulty must be between 1 and 3")
	}
	switch r := task.Reward.(type) {
	case models.StaticReward:
		if r.Points <= 0 {
			return validationf("static tasks need a positive point value")
		}
	case models.DynamicReward:
		if r.Unit != models.UnitMinutes && r.Unit != models.UnitDistance {
			return validationf("dynamic unit must be %q or %q", models.UnitMinutes, models.UnitDistance)
		}
		if r.PointsPerUnit <= 0 {
			return validationf("dynamic tasks need a positive points_per_unit")
		}
	case models.CollectibleReward:
		if r.Points <= 0 {
			return validationf("collectible tasks need a positive point value")
		}
		if r.AvailableOn.IsZero() {
			return validationf("collectible tasks need an available_on date")
		}
		if task.ExpiresAt != nil {
			return validationf("collectible tasks are bounded by available_on, not expires_at")
		}
		if task.MaxSubmissions != nil {
			return validationf("collectible tasks are always limited to one claim")
		}
	default:
		return validationf("exactly one reward mode must be set")
	}
	return nil
}
