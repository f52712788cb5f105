package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"auth-frontend/internal/auth"
	"auth-frontend/internal/auth/provider"
	"auth-frontend/internal/auth/provider/loopback"
)

const (
	providerName = "google"

	DefaultIssuer      = "https://accounts.google.com"
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"
)

type Config struct {
	ClientID     string
	ClientSecret string
	Issuer       string
	UserInfoURL  string
	CallbackAddr string
	Scopes       []string
	Opener       loopback.Opener
	HTTPClient   *http.Client
}

type Provider struct {
	consent     *loopback.Consent
	userInfoURL string
	httpClient  *http.Client
}

var _ provider.OAuthProvider = (*Provider)(nil)

// New discovers Google's endpoints and prepares a loopback consent flow.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google oauth config missing required fields")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	if cfg.HTTPClient != nil {
		ctx = oidc.ClientContext(ctx, cfg.HTTPClient)
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init google oidc provider: %w", err)
	}

	oauthCfg := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       cfg.Scopes,
	}

	return &Provider{
		consent:     loopback.New(oauthCfg, cfg.CallbackAddr, cfg.Opener),
		userInfoURL: cfg.UserInfoURL,
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

// FetchProfile calls the v1 userinfo endpoint, which expects the token both
// as the access_token query parameter and as a bearer header.
func (p *Provider) FetchProfile(ctx context.Context, token auth.Token) (auth.Profile, error) {
	u, err := url.Parse(p.userInfoURL)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("google userinfo url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", token.AccessToken)
	u.RawQuery = q.Encode()

	return provider.FetchUserInfo(ctx, p.httpClient, u.String(), token)
}
