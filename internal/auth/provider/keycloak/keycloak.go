package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"auth-frontend/internal/auth"
	"auth-frontend/internal/auth/provider"
	"auth-frontend/internal/auth/provider/loopback"
)

const providerName = "keycloak"

type Config struct {
	// Issuer is the realm issuer URL, e.g.
	// http://localhost:8081/realms/auth-service
	Issuer       string
	ClientID     string
	ClientSecret string // empty for public clients
	CallbackAddr string
	Scopes       []string
	Opener       loopback.Opener
	HTTPClient   *http.Client
}

// Provider signs users in against a Keycloak realm, or any OIDC issuer
// that advertises a userinfo endpoint.
type Provider struct {
	consent     *loopback.Consent
	userInfoURL string
	httpClient  *http.Client
}

var _ provider.OAuthProvider = (*Provider)(nil)

// New initializes the provider using OIDC discovery.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Issuer == "" || cfg.ClientID == "" {
		return nil, errors.New("keycloak oauth config missing required fields")
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init keycloak oidc provider: %w", err)
	}

	var discovery struct {
		UserInfoURL string `json:"userinfo_endpoint"`
	}
	if err := oidcProvider.Claims(&discovery); err != nil {
		return nil, fmt.Errorf("keycloak discovery claims parse failed: %w", err)
	}
	if discovery.UserInfoURL == "" {
		return nil, errors.New("keycloak issuer advertises no userinfo endpoint")
	}

	oauthCfg := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       cfg.Scopes,
	}

	return &Provider{
		consent:     loopback.New(oauthCfg, cfg.CallbackAddr, cfg.Opener),
		userInfoURL: discovery.UserInfoURL,
		httpClient:  cfg.HTTPClient,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Consent(ctx context.Context) (auth.Token, error) {
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return p.consent.Run(ctx)
}

// FetchProfile reads the userinfo endpoint. Keycloak falls back to
// preferred_username when the user has no display name.
func (p *Provider) FetchProfile(ctx context.Context, token auth.Token) (auth.Profile, error) {
	return provider.FetchUserInfo(ctx, p.httpClient, p.userInfoURL, token)
}
