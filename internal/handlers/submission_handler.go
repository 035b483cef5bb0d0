package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/authz"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/config"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/models"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

type SubmissionHandler struct {
	service services.SubmissionService
	ttl     config.CacheConfig
}

func NewSubmissionHandler(service services.SubmissionService, ttl config.CacheConfig) *SubmissionHandler {
	return &SubmissionHandler{service: service, ttl: ttl}
}

// GET /submissions
// Regular users always see their own submissions; admins may filter freely.
func (h *SubmissionHandler) List(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[submission][list] call by userID=%d role=%d q=%v", userID, roleID, c.Request.URL.RawQuery)

	var filter models.SubmissionFilter
	if authz.IsAdmin(roleID) {
		if v, ok := c.GetQuery("user_email"); ok {
			email := v
			filter.UserEmail = &email
		}
		filter.IncludeArchived = c.Query("include_archived") == "true"
	} else {
		uid := userID
		filter.UserID = &uid
	}
	if v, ok := c.GetQuery("task_id"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.TaskID = &id
		} else {
			log.Printf("[submission][list][warn] bad task_id=%q: %v", v, err)
		}
	}
	if v, ok := c.GetQuery("status"); ok {
		st := models.SubmissionStatus(v)
		filter.Status = &st
	}
	filter.Page, filter.Limit = getPagination(c)

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "submission", "list", err)
		return
	}
	if authz.IsAdmin(roleID) {
		setCacheControl(c, h.ttl.AdminListTTL(), false)
	} else {
		setCacheControl(c, h.ttl.UserListTTL(), false)
	}
	log.Printf("[submission][list][ok] count=%d has_more=%v", len(page.Items), page.HasMore)
	c.JSON(http.StatusOK, page)
}

// POST /submissions
func (h *SubmissionHandler) Create(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	var req struct {
		TaskID   int64                    `json:"task_id" binding:"required"`
		Evidence string                   `json:"evidence" binding:"required"`
		Details  models.SubmissionDetails `json:"details"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.service.Create(c.Request.Context(), userID, req.TaskID, req.Evidence, req.Details)
	if err != nil {
		respondError(c, "submission", "create", err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// GET /submissions/preview?task_id=&quantity=
// Points estimate shown in the form before submitting.
func (h *SubmissionHandler) Preview(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Query("task_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task_id"})
		return
	}
	var details models.SubmissionDetails
	if v, ok := c.GetQuery("quantity"); ok {
		q, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quantity"})
			return
		}
		details.Quantity = q
	}

	pts, err := h.service.Preview(c.Request.Context(), taskID, details)
	if err != nil {
		respondError(c, "submission", "preview", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": pts})
}

// POST /submissions/:id/approve (admin)
func (h *SubmissionHandler) Approve(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.service.Approve(c.Request.Context(), id, req.Comment)
	if err != nil {
		respondError(c, "submission", "approve", err)
		return
	}
	log.Printf("[submission][approve][ok] id=%d by=%d", id, userID)
	c.JSON(http.StatusOK, sub)
}

// POST /submissions/:id/reject (admin)
func (h *SubmissionHandler) Reject(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.service.Reject(c.Request.Context(), id, req.Comment)
	if err != nil {
		respondError(c, "submission", "reject", err)
		return
	}
	log.Printf("[submission][reject][ok] id=%d by=%d", id, userID)
	c.JSON(http.StatusOK, sub)
}

// DELETE /submissions/:id (owner, while pending)
func (h *SubmissionHandler) Delete(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, userID); err != nil {
		respondError(c, "submission", "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "submission removed"})
}
