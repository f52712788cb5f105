package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"auth-frontend/internal/auth/credentials"
	"auth-frontend/internal/auth/handler"
	"auth-frontend/internal/auth/resolver"
	"auth-frontend/internal/config"
	"auth-frontend/internal/logger"
	"auth-frontend/internal/middleware"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	authHandler := handler.NewHandler(
		credentials.NewService(infra.Store),
		resolver.NewStoreResolver(infra.Store),
		infra.Store,
		infra.Tokens,
		middleware.NewAuthMiddleware(infra.Tokens),
	)

	router := gin.New()
	router.Use(gin.Recovery(), requestLog())

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for _, route := range router.Routes() {
		logger.Debug("route registered", map[string]any{"method": route.Method, "path": route.Path})
	}

	return router, infra.Store.Close, nil
}

func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("request", map[string]any{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": c.Writer.Status(),
		})
	}
}
