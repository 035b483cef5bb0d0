// internal/services/submission_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/cache"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/points"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/repositories"
)

// SubmissionService drives the submission lifecycle: eligibility-guarded
// creation, idempotent approval/rejection with point accounting, owner
// deletion while pending, and the cache invalidation each transition owes.
type SubmissionService interface {
	List(ctx context.Context, filter models.SubmissionFilter) (*models.SubmissionPage, error)
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	Create(ctx context.Context, userID int, taskID int64, evidence string, details models.SubmissionDetails) (*models.Submission, error)
	// Preview returns the points a submission would earn right now. Same
	// calculator as approval, so the estimate can never diverge.
	Preview(ctx context.Context, taskID int64, details models.SubmissionDetails) (int, error)
	Approve(ctx context.Context, id int64, comment string) (*models.Submission, error)
	Reject(ctx context.Context, id int64, comment string) (*models.Submission, error)
	Delete(ctx context.Context, id int64, userID int) error
	// ArchiveExpired sweeps terminal submissions past the retention window.
	ArchiveExpired(ctx context.Context) (int64, error)
}

type submissionService struct {
	repo      repositories.SubmissionRepository
	tasks     repositories.TaskRepository
	users     repositories.UserRepository
	cache     *cache.Store
	emails    EmailService     // nil-safe, decision notifications
	tg        *TelegramService // nil-safe, admin pings
	userTTL   time.Duration
	adminTTL  time.Duration
	timeout   time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewSubmissionService(
	repo repositories.SubmissionRepository,
	tasks repositories.TaskRepository,
	users repositories.UserRepository,
	store *cache.Store,
	emails EmailService,
	tg *TelegramService,
	userTTL, adminTTL, timeout, retention time.Duration,
	now func() time.Time,
) SubmissionService {
	if now == nil {
		now = time.Now
	}
	return &submissionService{
		repo: repo, tasks: tasks, users: users, cache: store,
		emails: emails, tg: tg,
		userTTL: userTTL, adminTTL: adminTTL, timeout: timeout, retention: retention,
		now: now,
	}
}

func (s *submissionService) List(ctx context.Context, filter models.SubmissionFilter) (*models.SubmissionPage, error) {
	key := submissionListKey(filter)
	if v, ok := s.cache.Get(key); ok {
		if page, ok := v.(*models.SubmissionPage); ok {
			return page, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		werr := upstream(err)
		if isTimeout(werr) {
			if v, ok := s.cache.GetStale(key); ok {
				if page, ok := v.(*models.SubmissionPage); ok {
					log.Printf("[submission][list][stale] store timeout, serving stale key=%s", key)
					return page, nil
				}
			}
		}
		return nil, werr
	}
	if items == nil {
		items = []models.Submission{}
	}
	page := &models.SubmissionPage{Items: items, HasMore: len(items) == filter.Limit}
	// Per-user views are volatile, admin/global listings less so.
	ttl := s.adminTTL
	if filter.UserID != nil || filter.UserEmail != nil {
		ttl = s.userTTL
	}
	s.cache.Set(key, page, ttl)
	return page, nil
}

func (s *submissionService) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, upstream(err)
	}
	return sub, nil
}

// Create runs every eligibility guard before touching storage; a failed guard
// therefore never leaves partial state.
func (s *submissionService) Create(ctx context.Context, userID int, taskID int64, evidence string, details models.SubmissionDetails) (*models.Submission, error) {
	if evidence == "" {
		return nil, validationf("evidence upload is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, upstream(err)
	}
	now := s.now()
	if task.Hidden {
		return nil, eligibilityf("this task is no longer available")
	}

	switch r := task.Reward.(type) {
	case models.CollectibleReward:
		if !r.AvailableAt(now) {
			return nil, eligibilityf("this collectible can only be claimed on %s", r.AvailableOn.Format("2006-01-02"))
		}
		count, err := s.repo.CountActiveForUserTask(ctx, userID, taskID)
		if err != nil {
			return nil, upstream(err)
		}
		if count >= 1 {
			return nil, eligibilityf("you have already claimed this collectible")
		}
	case models.DynamicReward:
		if task.Expired(now) {
			return nil, eligibilityf("this task has expired")
		}
		if details.Quantity <= 0 {
			return nil, validationf("a positive %s value is required", r.Unit)
		}
		if err := s.checkQuota(ctx, task, userID); err != nil {
			return nil, err
		}
	default:
		if task.Expired(now) {
			return nil, eligibilityf("this task has expired")
		}
		if err := s.checkQuota(ctx, task, userID); err != nil {
			return nil, err
		}
	}

	sub := &models.Submission{
		TaskID:    taskID,
		UserID:    userID,
		Evidence:  evidence,
		Details:   details,
		Status:    models.SubmissionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Store(ctx, sub); err != nil {
		return nil, upstream(err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err == nil {
		sub.UserEmail = user.Email
	}
	s.invalidateFor(sub, false)
	s.cache.Invalidate("tasks:")

	if s.tg != nil && user != nil {
		s.tg.NotifyNewSubmission(user.Email, task.Title, sub.ID)
	}
	log.Printf("[submission][create][ok] id=%d user=%d task=%d", sub.ID, userID, taskID)
	return sub, nil
}

// checkQuota enforces max_submissions against pending+approved rows.
func (s *submissionService) checkQuota(ctx context.Context, task *models.Task, userID int) error {
	if task.MaxSubmissions == nil {
		return nil
	}
	count, err := s.repo.CountActiveForUserTask(ctx, userID, task.ID)
	if err != nil {
		return upstream(err)
	}
	if count >= *task.MaxSubmissions {
		return eligibilityf("submission limit of %d reached for this task", *task.MaxSubmissions)
	}
	return nil
}

func (s *submissionService) Preview(ctx context.Context, taskID int64, details models.SubmissionDetails) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, upstream(err)
	}
	pts, err := points.Compute(task, details)
	if err != nil {
		return 0, validationf("%v", err)
	}
	return pts, nil
}

// Approve recomputes points against the task definition as it stands now, not
// as it stood at submission time, and freezes that value onto the row.
func (s *submissionService) Approve(ctx context.Context, id int64, comment string) (*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, upstream(err)
	}
	if !canTransition(sub.Status, models.SubmissionApproved) {
		return nil, conflictf("submission %d already processed", id)
	}

	task, err := s.tasks.FindByID(ctx, sub.TaskID)
	if err != nil {
		return nil, upstream(err)
	}
	pts, err := points.Compute(task, sub.Details)
	if err != nil {
		return nil, validationf("%v", err)
	}

	updated, err := s.repo.Approve(ctx, id, pts, comment)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotPending):
			// Raced another admin: the points side effect already happened
			// exactly once, so this attempt reports a conflict.
			return nil, conflictf("submission %d already processed", id)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrNotFound
		default:
			// The transaction may have committed even though the result
			// read failed; drop the affected views rather than risk
			// serving pre-approval data until TTL.
			s.invalidateFor(sub, true)
			return nil, upstream(err)
		}
	}

	// Cumulative points changed: the leaderboard goes too.
	s.invalidateFor(updated, true)

	s.notifyDecision(updated, task, true)
	log.Printf("[submission][approve][ok] id=%d points=%d", id, pts)
	return updated, nil
}

func (s *submissionService) Reject(ctx context.Context, id int64, comment string) (*models.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, upstream(err)
	}
	if !canTransition(sub.Status, models.SubmissionRejected) {
		return nil, conflictf("submission %d already processed", id)
	}

	updated, err := s.repo.Reject(ctx, id, comment)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotPending):
			return nil, conflictf("submission %d already processed", id)
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrNotFound
		default:
			// Same as approval: the rejection may have committed, so the
			// cached views cannot be trusted anymore.
			s.invalidateFor(sub, false)
			return nil, upstream(err)
		}
	}

	// No point impact, so the leaderboard cache stays valid.
	s.invalidateFor(updated, false)

	task, err := s.tasks.FindByID(ctx, updated.TaskID)
	if err == nil {
		s.notifyDecision(updated, task, false)
	}
	log.Printf("[submission][reject][ok] id=%d", id)
	return updated, nil
}

func (s *submissionService) Delete(ctx context.Context, id int64, userID int) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return upstream(err)
	}
	if sub.UserID != userID {
		return eligibilityf("only the submitting user can remove a submission")
	}

	if err := s.repo.DeletePending(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotPending) {
			return conflictf("submission %d already processed", id)
		}
		return upstream(err)
	}
	s.invalidateFor(sub, false)
	s.cache.Invalidate("tasks:")
	log.Printf("[submission][delete][ok] id=%d user=%d", id, userID)
	return nil
}

func (s *submissionService) ArchiveExpired(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.repo.ArchiveOlderThan(ctx, s.now().Add(-s.retention))
	if err != nil {
		return 0, upstream(err)
	}
	if n > 0 {
		// Points already granted persist on the user record; only listings move.
		s.cache.Invalidate("submissions:")
		log.Printf("[submission][archive][ok] archived=%d", n)
	}
	return n, nil
}

// invalidateFor drops every cached view this submission could appear in:
// the owner's listings, the global/admin listing, anything filtered to its
// task, and - when points moved - the leaderboard.
func (s *submissionService) invalidateFor(sub *models.Submission, pointsChanged bool) {
	s.cache.Invalidate(fmt.Sprintf("submissions:user=%d:", sub.UserID))
	if sub.UserEmail != "" {
		s.cache.Invalidate(fmt.Sprintf("submissions:email=%s:", sub.UserEmail))
	}
	s.cache.Invalidate("submissions:all:")
	s.cache.Invalidate(fmt.Sprintf(":task=%d:", sub.TaskID))
	if pointsChanged {
		s.cache.Invalidate("leaderboard:")
	}
}

func (s *submissionService) notifyDecision(sub *models.Submission, task *models.Task, approved bool) {
	if s.emails == nil || sub.UserEmail == "" {
		return
	}
	pts := 0
	if sub.Points != nil {
		pts = *sub.Points
	}
	if err := s.emails.SendSubmissionDecision(sub.UserEmail, task.Title, approved, pts, sub.AdminComment); err != nil {
		// notification failure never rolls back a decision
		log.Printf("[submission][notify][warn] id=%d email=%s: %v", sub.ID, sub.UserEmail, err)
	}
}
