package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

// respondError maps the service error taxonomy onto HTTP. Write endpoints
// never degrade: they either fully succeed or report a specific reason.
func respondError(c *gin.Context, area, op string, err error) {
	var (
		vErr *services.ValidationError
		eErr *services.EligibilityError
		cErr *services.ConflictError
		uErr *services.UpstreamError
	)
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Reason})
	case errors.As(err, &eErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": eErr.Reason})
	case errors.As(err, &cErr):
		c.JSON(http.StatusConflict, gin.H{"error": "already processed", "reason": cErr.Reason})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrUpstreamTimeout):
		log.Printf("[%s][%s][timeout] %v", area, op, err)
		c.Header("Retry-After", "5")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, retry later"})
	case errors.As(err, &uErr):
		log.Printf("[%s][%s][err] %v", area, op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service error"})
	default:
		log.Printf("[%s][%s][err] %v", area, op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service error"})
	}
}
