package app

import (
	"context"

	"auth-frontend/internal/auth/token"
	"auth-frontend/internal/config"
	"auth-frontend/internal/db"
	"auth-frontend/internal/logger"
)

type Infra struct {
	Store  db.Store
	Tokens *token.Issuer
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	var store db.Store
	if cfg.Server.DatabaseDSN != "" {
		pg, err := db.OpenPostgres(ctx, cfg.Server.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		store = pg
		logger.Info("database ready", map[string]any{"backend": "postgres"})
	} else {
		store = db.NewMemory()
		logger.Warn("no database configured, accounts live in memory", nil)
	}

	if cfg.Server.JWTSecret == "" {
		logger.Warn("no jwt secret configured, tokens will not survive a restart", nil)
	}
	tokens, err := token.NewIssuer(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Infra{
		Store:  store,
		Tokens: tokens,
	}, nil
}
