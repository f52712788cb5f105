package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"auth-frontend/internal/auth/provider"
	"auth-frontend/internal/auth/provider/google"
	"auth-frontend/internal/auth/provider/keycloak"
	"auth-frontend/internal/config"
	"auth-frontend/internal/flow"
	"auth-frontend/internal/identity"
	"auth-frontend/internal/logger"
	"auth-frontend/internal/redis"
	"auth-frontend/internal/session"
	"auth-frontend/internal/view"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}
	// the terminal owns stdout
	logger.Init(os.Stderr, cfg.Log.Level)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open session store", map[string]any{"error": err.Error()})
	}
	defer closeStore()

	client := identity.NewClient(
		cfg.Identity.BaseURL,
		identity.WithHTTPClient(&http.Client{Timeout: cfg.Identity.Timeout}),
	)

	delegate, err := newDelegate(ctx, cfg)
	if err != nil {
		// credential sign-in still works without a provider
		logger.Warn("oauth provider disabled", map[string]any{"error": err.Error()})
	}

	providerLabel := ""
	if delegate != nil {
		providerLabel = delegate.ProviderName()
	}

	term := view.NewTerminal(os.Stdin, os.Stdout, view.Config{
		Home:     cfg.Navigation.Home,
		Provider: providerLabel,
		Sessions: store,
		Account:  client,
	})

	newController := func() *flow.Controller {
		deps := flow.Deps{
			Identity:  client,
			Sessions:  store,
			Navigator: term,
			Notifier:  term,
			Home:      cfg.Navigation.Home,
		}
		if delegate != nil {
			deps.OAuth = delegate
		}
		return flow.New(deps, flow.Options{RequestTimeout: cfg.Identity.Timeout})
	}

	if err := term.Run(ctx, newController); err != nil && ctx.Err() == nil {
		logger.Error("terminal stopped", map[string]any{"error": err.Error()})
	}
}

func newSessionStore(ctx context.Context, cfg config.Config) (session.Store, func(), error) {
	switch cfg.Session.Backend {
	case "", "file":
		return session.NewFileStore(cfg.Session.Path), func() {}, nil
	case "redis":
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return session.NewRedisStore(client.Client, cfg.Session.KeyPrefix), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}

func newDelegate(ctx context.Context, cfg config.Config) (*provider.Delegate, error) {
	opener := func(authURL string) error {
		fmt.Fprintf(os.Stdout, "\nOpen this URL to continue:\n%s\n\n", authURL)
		return nil
	}

	var (
		p   provider.OAuthProvider
		err error
	)
	switch cfg.OAuth.Provider {
	case "google":
		p, err = google.New(ctx, google.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			Issuer:       cfg.OAuth.Issuer,
			UserInfoURL:  cfg.OAuth.UserInfoURL,
			CallbackAddr: cfg.OAuth.CallbackAddr,
			Scopes:       cfg.OAuth.Scopes,
			Opener:       opener,
		})
	case "keycloak":
		p, err = keycloak.New(ctx, keycloak.Config{
			Issuer:       cfg.OAuth.Issuer,
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			CallbackAddr: cfg.OAuth.CallbackAddr,
			Scopes:       cfg.OAuth.Scopes,
			Opener:       opener,
		})
	case "":
		return nil, fmt.Errorf("no provider configured")
	default:
		return nil, fmt.Errorf("unknown oauth provider %q", cfg.OAuth.Provider)
	}
	if err != nil {
		return nil, err
	}

	registry := provider.NewRegistry(p)
	selected, err := registry.Get(cfg.OAuth.Provider)
	if err != nil {
		return nil, err
	}
	return provider.NewDelegate(selected, cfg.OAuth.ConsentTimeout, cfg.Identity.Timeout), nil
}
