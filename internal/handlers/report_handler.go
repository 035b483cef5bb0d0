package handlers

import (
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

type ReportHandler struct {
	service services.ReportService
}

func NewReportHandler(service services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// GET /reports/leaderboard (admin)
func (h *ReportHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	path, err := h.service.LeaderboardPDF(c.Request.Context(), limit)
	if err != nil {
		respondError(c, "report", "leaderboard", err)
		return
	}
	log.Printf("[report][leaderboard][ok] file=%s", path)
	c.FileAttachment(path, filepath.Base(path))
}

// GET /reports/submissions?user_email= (admin)
func (h *ReportHandler) Submissions(c *gin.Context) {
	email := c.Query("user_email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_email is required"})
		return
	}

	path, err := h.service.UserSubmissionsPDF(c.Request.Context(), email)
	if err != nil {
		respondError(c, "report", "submissions", err)
		return
	}
	log.Printf("[report][submissions][ok] email=%s file=%s", email, path)
	c.FileAttachment(path, filepath.Base(path))
}
