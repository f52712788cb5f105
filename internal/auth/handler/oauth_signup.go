package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"auth-frontend/internal/auth/resolver"
	"auth-frontend/internal/logger"
)

type googleSignupRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

// GoogleSignup finds or creates the account for a profile the client got
// from Google. The email doubles as the provider user id because the client
// only forwards email and name. Accounts with a password are refused with
// 409 since nothing here proves the caller owns the email.
func (h *Handler) GoogleSignup(c *gin.Context) {
	var req googleSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required"})
		return
	}

	email := strings.TrimSpace(req.Email)
	user, err := h.resolver.Resolve(c.Request.Context(), resolver.Identity{
		Provider:       "google",
		ProviderUserID: strings.ToLower(email),
		Email:          email,
		Name:           req.Name,
		EmailVerified:  true,
	})
	if errors.Is(err, resolver.ErrPasswordAccount) {
		logger.Warn("google signup refused for password account", map[string]any{"ip": c.ClientIP()})
		c.JSON(http.StatusConflict, gin.H{"message": "An account with this email already exists. Log in with your password."})
		return
	}
	if err != nil {
		logger.Error("google signup failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	logger.Info("google user resolved", map[string]any{"user_id": user.ID, "ip": c.ClientIP()})
	h.sessionResponse(c, http.StatusOK, "User signed in", user)
}
