// Package loopback runs the authorization-code consent flow for a native
// client: it listens on a local address, sends the user to the provider's
// consent page and waits for the provider to redirect back with a code.
package loopback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"auth-frontend/internal/auth"
	"auth-frontend/internal/logger"
	"auth-frontend/internal/utils"
)

// CallbackPath is where the provider redirects after consent.
const CallbackPath = "/oauth/callback"

var (
	ErrConsentDenied = errors.New("consent denied")
	ErrStateMismatch = errors.New("oauth state mismatch")
	ErrMissingCode   = errors.New("oauth callback missing code")
)

// Opener presents the consent URL to the user, typically by printing it or
// launching a browser.
type Opener func(authURL string) error

type Consent struct {
	oauthConfig oauth2.Config
	addr        string
	open        Opener
}

// New prepares a consent flow. cfg.RedirectURL is ignored; it is derived
// from the address the listener actually binds, so addr may use port 0.
func New(cfg oauth2.Config, addr string, open Opener) *Consent {
	if addr == "" {
		addr = "127.0.0.1:0"
	}
	if open == nil {
		open = func(authURL string) error {
			logger.Info("open the consent url in a browser", map[string]any{"url": authURL})
			return nil
		}
	}
	return &Consent{oauthConfig: cfg, addr: addr, open: open}
}

type callbackResult struct {
	code string
	err  error
}

// Run blocks until the provider redirects back or ctx ends, then exchanges
// the code for an access token.
func (c *Consent) Run(ctx context.Context) (auth.Token, error) {
	ln, err := net.Listen("tcp", c.addr)
	if err != nil {
		return auth.Token{}, fmt.Errorf("loopback listen %s: %w", c.addr, err)
	}

	cfg := c.oauthConfig
	cfg.RedirectURL = "http://" + ln.Addr().String() + CallbackPath

	state, err := utils.RandomString(32)
	if err != nil {
		_ = ln.Close()
		return auth.Token{}, fmt.Errorf("generate oauth state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(CallbackPath, callbackHandler(state, results))

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("loopback server failed", map[string]any{"error": err.Error()})
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
	)
	if err := c.open(authURL); err != nil {
		return auth.Token{}, fmt.Errorf("open consent url: %w", err)
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return auth.Token{}, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return auth.Token{}, res.err
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return auth.Token{}, fmt.Errorf("token exchange failed: %w", err)
	}
	if tok.AccessToken == "" {
		return auth.Token{}, errors.New("token exchange returned no access token")
	}

	return auth.Token{AccessToken: tok.AccessToken}, nil
}

func callbackHandler(state string, results chan<- callbackResult) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := readCallback(c, state)

		// only the first callback counts
		select {
		case results <- res:
		default:
		}

		if res.err != nil {
			c.String(http.StatusBadRequest, "Sign-in failed. You can close this window.")
			return
		}
		c.String(http.StatusOK, "Sign-in complete. You can close this window.")
	}
}

func readCallback(c *gin.Context, state string) callbackResult {
	if got := c.Query("state"); got == "" || got != state {
		return callbackResult{err: ErrStateMismatch}
	}

	if errParam := c.Query("error"); errParam != "" {
		return callbackResult{err: fmt.Errorf("%w: %s %s", ErrConsentDenied, errParam, c.Query("error_description"))}
	}

	code := c.Query("code")
	if code == "" {
		return callbackResult{err: ErrMissingCode}
	}
	return callbackResult{code: code}
}
