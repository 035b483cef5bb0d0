package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chris123-crypto-ship-it/Sportpass-2025-sub000/internal/services"
)

type UserHandler struct {
	userService services.UserService
	verify      *services.VerificationService
}

func NewUserHandler(userService services.UserService, verify *services.VerificationService) *UserHandler {
	return &UserHandler{userService: userService, verify: verify}
}

// POST /register
func (h *UserHandler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, "user", "register", err)
		return
	}

	if h.verify != nil {
		if err := h.verify.SendCode(c.Request.Context(), user.ID, user.Email); err != nil {
			// the account exists; user can request a resend
			log.Printf("[user][register][warn] verification send failed userID=%d: %v", user.ID, err)
		}
	}
	log.Printf("[user][register][ok] id=%d email=%s", user.ID, user.Email)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Registered. Check your inbox for the verification code.",
		"user":    user,
	})
}

// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
