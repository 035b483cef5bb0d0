package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/authz"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/config"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

type TaskHandler struct {
	service services.TaskService
	ttl     config.CacheConfig
}

func NewTaskHandler(service services.TaskService, ttl config.CacheConfig) *TaskHandler {
	return &TaskHandler{service: service, ttl: ttl}
}

// taskRequest carries the flattened reward fields of the admin create/edit
// forms; buildReward folds them back into exactly one variant.
type taskRequest struct {
	Title          string  `json:"title" binding:"required"`
	Description    string  `json:"description"`
	Category       string  `json:"category" binding:"required"`
	Difficulty     int     `json:"difficulty" binding:"required"`
	RewardMode     string  `json:"reward_mode" binding:"required"` // static|dynamic|collectible
	Points         int     `json:"points"`
	Unit           string  `json:"unit"`
	PointsPerUnit  float64 `json:"points_per_unit"`
	AvailableOn    string  `json:"available_on"` // YYYY-MM-DD
	ExpiresAt      string  `json:"expires_at"`   // RFC3339
	MaxSubmissions *int    `json:"max_submissions"`
	Hidden         bool    `json:"hidden"`
}

func (req *taskRequest) toTask() (*models.Task, error) {
	task := &models.Task{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Difficulty:     req.Difficulty,
		MaxSubmissions: req.MaxSubmissions,
		Hidden:         req.Hidden,
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, &services.ValidationError{Reason: "invalid expires_at (RFC3339)"}
		}
		task.ExpiresAt = &t
	}
	switch models.RewardMode(req.RewardMode) {
	case models.RewardStatic:
		task.Reward = models.StaticReward{Points: req.Points}
	case models.RewardDynamic:
		task.Reward = models.DynamicReward{
			Unit:          models.DynamicUnit(req.Unit),
			PointsPerUnit: req.PointsPerUnit,
		}
	case models.RewardCollectible:
		day, err := time.Parse("2006-01-02", req.AvailableOn)
		if err != nil {
			return nil, &services.ValidationError{Reason: "invalid available_on (YYYY-MM-DD)"}
		}
		pts := req.Points
		if pts == 0 {
			pts = 5 // default collectible reward
		}
		task.Reward = models.CollectibleReward{Points: pts, AvailableOn: day}
	default:
		return nil, &services.ValidationError{Reason: "reward_mode must be static, dynamic or collectible"}
	}
	return task, nil
}

// GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[task][list] call by userID=%d role=%d q=%v", userID, roleID, c.Request.URL.RawQuery)

	var filter models.TaskFilter
	if v, ok := c.GetQuery("category"); ok {
		cat := v
		filter.Category = &cat
	}
	if v, ok := c.GetQuery("status"); ok {
		st := models.TaskStatus(v)
		if st != models.TaskPending && st != models.TaskCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be pending or completed"})
			return
		}
		filter.Status = &st
	}
	// admins may list hidden tasks for editing
	filter.IncludeHidden = authz.IsAdmin(roleID) && c.Query("include_hidden") == "true"
	filter.Page, filter.Limit = getPagination(c)

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "task", "list", err)
		return
	}
	setCacheControl(c, h.ttl.TaskTTL(), true)
	log.Printf("[task][list][ok] count=%d has_more=%v", len(page.Items), page.HasMore)
	c.JSON(http.StatusOK, page)
}

// GET /tasks/:id
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "task", "get", err)
		return
	}
	setCacheControl(c, h.ttl.TaskTTL(), true)
	c.JSON(http.StatusOK, task)
}

// POST /tasks (admin)
func (h *TaskHandler) Create(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := req.toTask()
	if err != nil {
		respondError(c, "task", "create", err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), task)
	if err != nil {
		respondError(c, "task", "create", err)
		return
	}
	log.Printf("[task][create][ok] id=%d by=%d title=%q", created.ID, userID, created.Title)
	c.JSON(http.StatusCreated, created)
}

// PUT /tasks/:id (admin)
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := req.toTask()
	if err != nil {
		respondError(c, "task", "update", err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, task)
	if err != nil {
		respondError(c, "task", "update", err)
		return
	}
	log.Printf("[task][update][ok] id=%d", id)
	c.JSON(http.StatusOK, updated)
}

// POST /tasks/:id/visibility (admin)
func (h *TaskHandler) SetVisibility(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Hidden *bool `json:"hidden" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetVisibility(c.Request.Context(), id, *req.Hidden); err != nil {
		respondError(c, "task", "visibility", err)
		return
	}
	log.Printf("[task][visibility][ok] id=%d hidden=%v", id, *req.Hidden)
	c.JSON(http.StatusOK, gin.H{"message": "visibility updated"})
}
