package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-frontend/internal/logger"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	user, err := h.credentials.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Info("login rejected", map[string]any{"ip": c.ClientIP()})
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	logger.Info("login succeeded", map[string]any{"user_id": user.ID, "ip": c.ClientIP()})
	h.sessionResponse(c, http.StatusOK, "", user)
}
