package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/repositories"
)

// In-memory repository fakes. Each carries a failWith error that, when set,
// makes every call fail; tests use context.DeadlineExceeded there to simulate
// a data store that blew its time budget.

// testClock drives both the service clock and the cache clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) SetDate(year int, month time.Month, day int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

type fakeTaskRepo struct {
	mu       sync.Mutex
	tasks    map[int64]*models.Task
	nextID   int64
	failWith error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int64]*models.Task), nextID: 1}
}

func (r *fakeTaskRepo) add(task *models.Task) *models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	task.ID = r.nextID
	r.nextID++
	cp := *task
	r.tasks[task.ID] = &cp
	return task
}

func (r *fakeTaskRepo) Store(ctx context.Context, task *models.Task) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.add(task)
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

// FindAll mirrors the SQL path: visibility and the derived status filter are
// applied before pagination.
func (r *fakeTaskRepo) FindAll(ctx context.Context, filter models.TaskFilter, now time.Time) ([]models.Task, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Task
	for _, task := range r.tasks {
		if task.Hidden && !filter.IncludeHidden {
			continue
		}
		if filter.Category != nil && task.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && task.Status(now) != *filter.Status {
			continue
		}
		all = append(all, *task)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	start := filter.Page * filter.Limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) SetHidden(ctx context.Context, id int64, hidden bool) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return repositories.ErrNotFound
	}
	task.Hidden = hidden
	return nil
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[int]*models.User
	nextID   int
	failWith error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) SetVerified(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Verified = true
	return nil
}

func (r *fakeUserRepo) UpdateRefresh(ctx context.Context, id int, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = &token
	user.RefreshExpiresAt = &expiresAt
	user.RefreshRevoked = false
	return nil
}

func (r *fakeUserRepo) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.RefreshToken != nil && *user.RefreshToken == token {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.RefreshToken != nil && *user.RefreshToken == oldToken {
			user.RefreshToken = &newToken
			user.RefreshExpiresAt = &expiresAt
			cp := *user
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) Leaderboard(ctx context.Context, offset, limit int) ([]models.LeaderboardRow, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var verified []*models.User
	for _, user := range r.users {
		if user.Verified {
			verified = append(verified, user)
		}
	}
	sort.Slice(verified, func(i, j int) bool {
		a, b := verified[i], verified[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	var out []models.LeaderboardRow
	for i := offset; i < len(verified) && len(out) < limit; i++ {
		u := verified[i]
		out = append(out, models.LeaderboardRow{Rank: i + 1, UserID: u.ID, Name: u.Name, Points: u.Points})
	}
	return out, nil
}

func (r *fakeUserRepo) SumPoints(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for _, user := range r.users {
		sum += user.Points
	}
	return sum, nil
}

type fakeSubmissionRepo struct {
	mu sync.Mutex
	// users is wired in so Approve can bump the running total the way the
	// real repository does inside one transaction.
	users    *fakeUserRepo
	subs     map[int64]*models.Submission
	nextID   int64
	failWith error
	// finalizeReadErr is returned by Approve/Reject after the state change
	// has been applied, simulating a committed transaction whose result
	// read failed.
	finalizeReadErr error
}

func newFakeSubmissionRepo(users *fakeUserRepo) *fakeSubmissionRepo {
	return &fakeSubmissionRepo{users: users, subs: make(map[int64]*models.Submission), nextID: 1}
}

func (r *fakeSubmissionRepo) Store(ctx context.Context, sub *models.Submission) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub.ID = r.nextID
	r.nextID++
	cp := *sub
	// the real store joins users for the email column
	if r.users != nil {
		r.users.mu.Lock()
		if user, ok := r.users.users[sub.UserID]; ok {
			cp.UserEmail = user.Email
		}
		r.users.mu.Unlock()
	}
	r.subs[sub.ID] = &cp
	return nil
}

func (r *fakeSubmissionRepo) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubmissionRepo) FindAll(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.Submission
	for _, sub := range r.subs {
		if sub.Archived && !filter.IncludeArchived {
			continue
		}
		if filter.UserID != nil && sub.UserID != *filter.UserID {
			continue
		}
		if filter.UserEmail != nil && sub.UserEmail != *filter.UserEmail {
			continue
		}
		if filter.TaskID != nil && sub.TaskID != *filter.TaskID {
			continue
		}
		if filter.Status != nil && sub.Status != *filter.Status {
			continue
		}
		all = append(all, *sub)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	start := filter.Page * filter.Limit
	if start >= len(all) {
		return nil, nil
	}
	end := start + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (r *fakeSubmissionRepo) CountActiveForUserTask(ctx context.Context, userID int, taskID int64) (int, error) {
	if r.failWith != nil {
		return 0, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, sub := range r.subs {
		if sub.UserID == userID && sub.TaskID == taskID &&
			(sub.Status == models.SubmissionPending || sub.Status == models.SubmissionApproved) {
			count++
		}
	}
	return count, nil
}

func (r *fakeSubmissionRepo) Approve(ctx context.Context, id int64, pts int, comment string) (*models.Submission, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if sub.Status != models.SubmissionPending {
		return nil, repositories.ErrNotPending
	}
	sub.Status = models.SubmissionApproved
	sub.Points = &pts
	sub.AdminComment = comment
	if r.users != nil {
		r.users.mu.Lock()
		if user, ok := r.users.users[sub.UserID]; ok {
			user.Points += pts
		}
		r.users.mu.Unlock()
	}
	if r.finalizeReadErr != nil {
		return nil, r.finalizeReadErr
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubmissionRepo) Reject(ctx context.Context, id int64, comment string) (*models.Submission, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if sub.Status != models.SubmissionPending {
		return nil, repositories.ErrNotPending
	}
	sub.Status = models.SubmissionRejected
	sub.AdminComment = comment
	if r.finalizeReadErr != nil {
		return nil, r.finalizeReadErr
	}
	cp := *sub
	return &cp, nil
}

func (r *fakeSubmissionRepo) DeletePending(ctx context.Context, id int64, userID int) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok || sub.UserID != userID {
		return repositories.ErrNotFound
	}
	if sub.Status != models.SubmissionPending {
		return repositories.ErrNotPending
	}
	delete(r.subs, id)
	return nil
}

func (r *fakeSubmissionRepo) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.failWith != nil {
		return 0, r.failWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, sub := range r.subs {
		if sub.Status != models.SubmissionPending && !sub.Archived && sub.UpdatedAt.Before(cutoff) {
			sub.Archived = true
			n++
		}
	}
	return n, nil
}

func (r *fakeSubmissionRepo) SumApprovedPoints(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := 0
	for _, sub := range r.subs {
		if sub.Status == models.SubmissionApproved && sub.Points != nil {
			sum += *sub.Points
		}
	}
	return sum, nil
}
