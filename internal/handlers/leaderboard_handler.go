package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/config"
	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

type LeaderboardHandler struct {
	service services.LeaderboardService
	ttl     config.CacheConfig
}

func NewLeaderboardHandler(service services.LeaderboardService, ttl config.CacheConfig) *LeaderboardHandler {
	return &LeaderboardHandler{service: service, ttl: ttl}
}

// GET /leaderboard
func (h *LeaderboardHandler) Get(c *gin.Context) {
	page, limit := getPagination(c)

	result, err := h.service.Get(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, "leaderboard", "get", err)
		return
	}
	setCacheControl(c, h.ttl.LeaderboardTTL(), true)
	log.Printf("[leaderboard][get][ok] page=%d count=%d", page, len(result.Items))
	c.JSON(http.StatusOK, result)
}
