package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auth-frontend/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGoogle serves discovery, token and v1 userinfo endpoints.
type fakeGoogle struct {
	*httptest.Server
	userinfoQuery  url.Values
	userinfoHeader string
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                 f.URL,
			"authorization_endpoint": f.URL + "/auth",
			"token_endpoint":         f.URL + "/token",
			"jwks_uri":               f.URL + "/certs",
			"userinfo_endpoint":      f.URL + "/v3/userinfo",
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"google-at","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/oauth2/v1/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.userinfoQuery = r.URL.Query()
		f.userinfoHeader = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"email":"g@example.com","name":"Gee"}`))
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func TestNewRequiresClientCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{ClientID: "id"})
	assert.Error(t, err)
}

func TestNewRejectsUnreachableIssuer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(context.Background(), Config{ClientID: "id", ClientSecret: "s", Issuer: srv.URL})
	assert.ErrorContains(t, err, "failed to init google oidc provider")
}

func TestConsentThenProfile(t *testing.T) {
	g := newFakeGoogle(t)

	opener := func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		assert.Equal(t, g.URL+"/auth", u.Scheme+"://"+u.Host+u.Path)

		q := u.Query()
		redirect := q.Get("redirect_uri") + "?" + url.Values{
			"code":  {"c"},
			"state": {q.Get("state")},
		}.Encode()
		resp, err := http.Get(redirect)
		require.NoError(t, err)
		return resp.Body.Close()
	}

	p, err := New(context.Background(), Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Issuer:       g.URL,
		UserInfoURL:  g.URL + "/oauth2/v1/userinfo",
		Opener:       opener,
	})
	require.NoError(t, err)
	assert.Equal(t, "google", p.Name())

	tok, err := p.Consent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, auth.Token{AccessToken: "google-at"}, tok)

	profile, err := p.FetchProfile(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, auth.Profile{Email: "g@example.com", Name: "Gee"}, profile)
	assert.Equal(t, "google-at", g.userinfoQuery.Get("access_token"))
	assert.Equal(t, "Bearer google-at", g.userinfoHeader)
}
