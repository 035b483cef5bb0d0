package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/authz"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/config"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/handlers"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

func testTTL() config.CacheConfig {
	return config.CacheConfig{
		TaskTTLSeconds:        180,
		LeaderboardTTLSeconds: 180,
		UserListTTLSeconds:    60,
		AdminListTTLSeconds:   300,
	}
}

// stubTaskService returns canned values and records nothing else.
type stubTaskService struct {
	page *models.TaskPage
	task *models.Task
	err  error
	got  models.TaskFilter
}

func (s *stubTaskService) List(ctx context.Context, filter models.TaskFilter) (*models.TaskPage, error) {
	s.got = filter
	return s.page, s.err
}
func (s *stubTaskService) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	return s.task, s.err
}
func (s *stubTaskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	return task, s.err
}
func (s *stubTaskService) Update(ctx context.Context, id int64, task *models.Task) (*models.Task, error) {
	return task, s.err
}
func (s *stubTaskService) SetVisibility(ctx context.Context, id int64, hidden bool) error {
	return s.err
}

type stubSubmissionService struct {
	page *models.SubmissionPage
	err  error
	got  models.SubmissionFilter
}

func (s *stubSubmissionService) List(ctx context.Context, filter models.SubmissionFilter) (*models.SubmissionPage, error) {
	s.got = filter
	return s.page, s.err
}
func (s *stubSubmissionService) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	return nil, s.err
}
func (s *stubSubmissionService) Create(ctx context.Context, userID int, taskID int64, evidence string, details models.SubmissionDetails) (*models.Submission, error) {
	return nil, s.err
}
func (s *stubSubmissionService) Preview(ctx context.Context, taskID int64, details models.SubmissionDetails) (int, error) {
	return 0, s.err
}
func (s *stubSubmissionService) Approve(ctx context.Context, id int64, comment string) (*models.Submission, error) {
	return nil, s.err
}
func (s *stubSubmissionService) Reject(ctx context.Context, id int64, comment string) (*models.Submission, error) {
	return nil, s.err
}
func (s *stubSubmissionService) Delete(ctx context.Context, id int64, userID int) error {
	return s.err
}
func (s *stubSubmissionService) ArchiveExpired(ctx context.Context) (int64, error) {
	return 0, s.err
}

// asUser injects the identity claims the auth middleware would have set.
func asUser(userID, roleID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role_id", roleID)
		c.Next()
	}
}

func newTaskRouter(svc services.TaskService, userID, roleID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewTaskHandler(svc, testTTL())
	r.Use(asUser(userID, roleID))
	r.GET("/tasks", h.List)
	r.GET("/tasks/:id", h.GetByID)
	return r
}

func TestTaskList_SetsSharedCacheControl(t *testing.T) {
	svc := &stubTaskService{page: &models.TaskPage{Items: []models.Task{}}}
	r := newTaskRouter(svc, 1, authz.RoleUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	cc := w.Header().Get("Cache-Control")
	assert.Contains(t, cc, "public")
	assert.Contains(t, cc, "max-age=180")
	assert.Contains(t, cc, "stale-while-revalidate")
}

func TestTaskList_RejectsUnknownStatus(t *testing.T) {
	svc := &stubTaskService{page: &models.TaskPage{}}
	r := newTaskRouter(svc, 1, authz.RoleUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks?status=bogus", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskList_HiddenOnlyForAdmins(t *testing.T) {
	svc := &stubTaskService{page: &models.TaskPage{Items: []models.Task{}}}
	r := newTaskRouter(svc, 1, authz.RoleUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks?include_hidden=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, svc.got.IncludeHidden, "a regular user cannot opt into hidden tasks")

	r = newTaskRouter(svc, 2, authz.RoleAdmin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks?include_hidden=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.got.IncludeHidden)
}

func TestTaskList_PaginationClamped(t *testing.T) {
	svc := &stubTaskService{page: &models.TaskPage{Items: []models.Task{}}}
	r := newTaskRouter(svc, 1, authz.RoleUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks?page=-3&limit=5000", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, svc.got.Page)
	assert.Equal(t, 20, svc.got.Limit)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &services.ValidationError{Reason: "bad input"}, http.StatusBadRequest},
		{"eligibility", &services.EligibilityError{Reason: "task expired"}, http.StatusUnprocessableEntity},
		{"conflict", &services.ConflictError{Reason: "already processed"}, http.StatusConflict},
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"timeout", services.ErrUpstreamTimeout, http.StatusServiceUnavailable},
		{"upstream", &services.UpstreamError{Err: assert.AnError}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubTaskService{err: tc.err}
			r := newTaskRouter(svc, 1, authz.RoleUser)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/7", nil))
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestErrorMapping_TimeoutSetsRetryAfter(t *testing.T) {
	svc := &stubTaskService{err: services.ErrUpstreamTimeout}
	r := newTaskRouter(svc, 1, authz.RoleUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/7", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
}

func newSubmissionRouter(svc services.SubmissionService, userID, roleID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handlers.NewSubmissionHandler(svc, testTTL())
	r.Use(asUser(userID, roleID))
	r.GET("/submissions", h.List)
	r.POST("/submissions", h.Create)
	return r
}

func TestSubmissionList_UsersSeeOnlyTheirOwn(t *testing.T) {
	svc := &stubSubmissionService{page: &models.SubmissionPage{Items: []models.Submission{}}}
	r := newSubmissionRouter(svc, 7, authz.RoleUser)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/submissions?user_email=other@test.dev&include_archived=true", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, svc.got.UserID)
	assert.Equal(t, 7, *svc.got.UserID, "the filter is pinned to the caller")
	assert.Nil(t, svc.got.UserEmail, "a user cannot browse someone else's submissions")
	assert.False(t, svc.got.IncludeArchived)

	cc := w.Header().Get("Cache-Control")
	assert.Contains(t, cc, "private")
	assert.Contains(t, cc, "max-age=60")
}

func TestSubmissionList_AdminFilters(t *testing.T) {
	svc := &stubSubmissionService{page: &models.SubmissionPage{Items: []models.Submission{}}}
	r := newSubmissionRouter(svc, 1, authz.RoleAdmin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/submissions?user_email=alice@test.dev&include_archived=true&task_id=3", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Nil(t, svc.got.UserID)
	require.NotNil(t, svc.got.UserEmail)
	assert.Equal(t, "alice@test.dev", *svc.got.UserEmail)
	assert.True(t, svc.got.IncludeArchived)
	require.NotNil(t, svc.got.TaskID)
	assert.Equal(t, int64(3), *svc.got.TaskID)

	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age=300")
}

func TestSubmissionCreate_BindingRejectsMissingFields(t *testing.T) {
	svc := &stubSubmissionService{}
	r := newSubmissionRouter(svc, 7, authz.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submissions", strings.NewReader(`{"task_id": 1}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
