package loopback

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// tokenServer is a fake provider token endpoint that records the exchange.
type tokenServer struct {
	*httptest.Server
	mu       sync.Mutex
	code     string
	verifier string
	calls    int
}

func newTokenServer(t *testing.T, status int) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		ts.mu.Lock()
		ts.calls++
		ts.code = r.Form.Get("code")
		ts.verifier = r.Form.Get("code_verifier")
		ts.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"access_token":"provider-at","token_type":"Bearer","expires_in":3600}`))
			return
		}
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func oauthConfig(tokenURL string) oauth2.Config {
	return oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://provider.test/authorize",
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: []string{"openid", "email"},
	}
}

// browser simulates the user's browser: it follows the consent URL back to
// the loopback redirect with the given query.
func browser(t *testing.T, captured *url.Values, query func(state string) url.Values) Opener {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		q := u.Query()
		*captured = q

		redirect, err := url.Parse(q.Get("redirect_uri"))
		require.NoError(t, err)
		redirect.RawQuery = query(q.Get("state")).Encode()

		resp, err := http.Get(redirect.String())
		require.NoError(t, err)
		_ = resp.Body.Close()
		return nil
	}
}

func TestConsentSuccess(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK)

	var authQuery url.Values
	c := New(oauthConfig(ts.URL), "127.0.0.1:0", browser(t, &authQuery, func(state string) url.Values {
		return url.Values{"code": {"the-code"}, "state": {state}}
	}))

	tok, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "provider-at", tok.AccessToken)

	assert.Equal(t, "code", authQuery.Get("response_type"))
	assert.Equal(t, "client-id", authQuery.Get("client_id"))
	assert.Equal(t, "S256", authQuery.Get("code_challenge_method"))
	assert.Contains(t, authQuery.Get("redirect_uri"), CallbackPath)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	assert.Equal(t, "the-code", ts.code)
	sum := sha256.Sum256([]byte(ts.verifier))
	assert.Equal(t, authQuery.Get("code_challenge"), base64.RawURLEncoding.EncodeToString(sum[:]))
}

func TestConsentDeniedSkipsExchange(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK)

	var authQuery url.Values
	c := New(oauthConfig(ts.URL), "", browser(t, &authQuery, func(state string) url.Values {
		return url.Values{"error": {"access_denied"}, "state": {state}}
	}))

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrConsentDenied)

	ts.mu.Lock()
	defer ts.mu.Unlock()
	assert.Zero(t, ts.calls)
}

func TestConsentStateMismatch(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK)

	var authQuery url.Values
	c := New(oauthConfig(ts.URL), "", browser(t, &authQuery, func(string) url.Values {
		return url.Values{"code": {"the-code"}, "state": {"forged"}}
	}))

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrStateMismatch)
}

func TestConsentMissingCode(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK)

	var authQuery url.Values
	c := New(oauthConfig(ts.URL), "", browser(t, &authQuery, func(state string) url.Values {
		return url.Values{"state": {state}}
	}))

	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingCode)
}

func TestConsentExchangeFailure(t *testing.T) {
	ts := newTokenServer(t, http.StatusBadRequest)

	var authQuery url.Values
	c := New(oauthConfig(ts.URL), "", browser(t, &authQuery, func(state string) url.Values {
		return url.Values{"code": {"the-code"}, "state": {state}}
	}))

	_, err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token exchange failed")
}

func TestConsentTimesOutWithoutCallback(t *testing.T) {
	ts := newTokenServer(t, http.StatusOK)

	c := New(oauthConfig(ts.URL), "", func(string) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
