package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-frontend/internal/auth/credentials"
	"auth-frontend/internal/logger"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	user, err := h.credentials.Register(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, credentials.ErrAlreadyRegistered):
		c.JSON(http.StatusConflict, gin.H{"message": "User already exists"})
		return
	case errors.Is(err, credentials.ErrInvalidEmail), errors.Is(err, credentials.ErrEmptyPassword):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	case err != nil:
		logger.Error("signup failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	logger.Info("user registered", map[string]any{"user_id": user.ID, "ip": c.ClientIP()})
	h.sessionResponse(c, http.StatusCreated, "User created", user)
}
