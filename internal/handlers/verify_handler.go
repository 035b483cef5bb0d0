package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

type VerifyHandler struct {
	Verify *services.VerificationService
}

func NewVerifyHandler(v *services.VerificationService) *VerifyHandler { return &VerifyHandler{Verify: v} }

// POST /register/confirm
func (h *VerifyHandler) ConfirmUser(c *gin.Context) {
	var req struct {
		UserID int    `json:"user_id" binding:"required"`
		Code   string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := h.Verify.Confirm(c.Request.Context(), req.UserID, req.Code)
	if err != nil {
		switch err {
		case services.ErrCodeExpired:
			c.JSON(http.StatusBadRequest, gin.H{"error": "code expired, please resend"})
			return
		case services.ErrTooManyAttempts:
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many attempts, please resend"})
			return
		case services.ErrCodeInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
			return
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation failed"})
			return
		}
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// POST /register/resend
func (h *VerifyHandler) ResendUser(c *gin.Context) {
	var req struct {
		UserID int    `json:"user_id" binding:"required"`
		Email  string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Verify.SendCode(c.Request.Context(), req.UserID, req.Email); err != nil {
		if err == services.ErrResendThrottled {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many resends, try again later"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resend code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Code sent"})
}
