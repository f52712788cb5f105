package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-frontend/internal/auth/credentials"
	"auth-frontend/internal/auth/resolver"
	"auth-frontend/internal/db"
	"auth-frontend/internal/logger"
	"auth-frontend/internal/middleware"
)

// TokenIssuer mints the session token returned to clients.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type Handler struct {
	credentials *credentials.Service
	resolver    resolver.Resolver
	users       db.Store
	tokens      TokenIssuer
	auth        *middleware.AuthMiddleware
}

func NewHandler(
	creds *credentials.Service,
	res resolver.Resolver,
	users db.Store,
	tokens TokenIssuer,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		credentials: creds,
		resolver:    res,
		users:       users,
		tokens:      tokens,
		auth:        auth,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	users := r.Group("/api/users")
	users.POST("/signup", h.Signup)
	users.POST("/login", h.Login)
	users.POST("/google-signup", h.GoogleSignup)
	users.GET("/me", middleware.GinRequireAuth(h.auth), h.Me)
}

// sessionResponse issues a token for u and writes {message, userId, token}.
func (h *Handler) sessionResponse(c *gin.Context, status int, message string, u db.User) {
	tok, err := h.tokens.Issue(u.ID)
	if err != nil {
		logger.Error("token issue failed", map[string]any{"user_id": u.ID, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "session error"})
		return
	}

	body := gin.H{"userId": u.ID, "token": tok}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	u, err := h.users.UserByID(c.Request.Context(), userID)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	if err != nil {
		logger.Error("user lookup failed", map[string]any{"user_id": userID, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": u.ID,
		"email":  u.Email,
		"name":   u.Name,
	})
}
