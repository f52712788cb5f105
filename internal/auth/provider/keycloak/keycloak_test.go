package keycloak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-frontend/internal/auth"
)

func newIssuer(t *testing.T, advertiseUserInfo bool) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		doc := map[string]any{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/protocol/openid-connect/auth",
			"token_endpoint":         srv.URL + "/protocol/openid-connect/token",
			"jwks_uri":               srv.URL + "/protocol/openid-connect/certs",
		}
		if advertiseUserInfo {
			doc["userinfo_endpoint"] = srv.URL + "/protocol/openid-connect/userinfo"
		}
		_ = json.NewEncoder(w).Encode(doc)
	})
	mux.HandleFunc("/protocol/openid-connect/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer kc-at" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"sub":"1","email":"k@example.com","preferred_username":"kay"}`))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchProfileFromDiscoveredEndpoint(t *testing.T) {
	issuer := newIssuer(t, true)

	p, err := New(context.Background(), Config{Issuer: issuer.URL, ClientID: "frontend"})
	require.NoError(t, err)
	assert.Equal(t, "keycloak", p.Name())

	profile, err := p.FetchProfile(context.Background(), auth.Token{AccessToken: "kc-at"})
	require.NoError(t, err)
	assert.Equal(t, auth.Profile{Email: "k@example.com", Name: "kay"}, profile)

	_, err = p.FetchProfile(context.Background(), auth.Token{AccessToken: "wrong"})
	assert.Error(t, err)
}

func TestNewRequiresUserInfoEndpoint(t *testing.T) {
	issuer := newIssuer(t, false)

	_, err := New(context.Background(), Config{Issuer: issuer.URL, ClientID: "frontend"})
	assert.ErrorContains(t, err, "no userinfo endpoint")
}

func TestNewRequiresIssuerAndClient(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "frontend"})
	assert.Error(t, err)
}
