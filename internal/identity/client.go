// Package identity talks to the remote identity service. Every call is
// single-shot: no retries, and the service's own failure message is passed
// through verbatim when it supplies one.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"auth-frontend/internal/auth"
)

const (
	signupPath      = "/api/users/signup"
	loginPath       = "/api/users/login"
	oauthSignupPath = "/api/users/google-signup"
	mePath          = "/api/users/me"

	// caps how much of an error body is read
	maxBody = 1 << 20
)

var ErrMissingSession = errors.New("identity: response missing token or userId")

// RequestError is any non-success answer or transport failure.
// Status is zero when the service was unreachable.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("identity %s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("identity %s: status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("identity %s: %v", e.Op, e.Err)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// Result is the outcome of signup and oauth-signup. Session is set only when
// the service chose to return credentials alongside the status.
type Result struct {
	Status  int
	Session *auth.Session
}

// User is the account view returned by Me.
type User struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type oauthSignupBody struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionBody struct {
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b sessionBody) session() *auth.Session {
	s := auth.Session{UserID: b.UserID, Token: b.Token}
	if !s.Valid() {
		return nil
	}
	return &s
}

func (b sessionBody) message() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// Signup registers a new account. Only 201 Created counts as success.
func (c *Client) Signup(ctx context.Context, email, password string) (Result, error) {
	status, body, err := c.post(ctx, "signup", signupPath, credentialsBody{Email: email, Password: password})
	if err != nil {
		return Result{}, err
	}
	if status != http.StatusCreated {
		return Result{}, &RequestError{Op: "signup", Status: status, Message: body.message()}
	}
	return Result{Status: status, Session: body.session()}, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (auth.Session, error) {
	status, body, err := c.post(ctx, "login", loginPath, credentialsBody{Email: email, Password: password})
	if err != nil {
		return auth.Session{}, err
	}
	if status != http.StatusOK {
		return auth.Session{}, &RequestError{Op: "login", Status: status, Message: body.message()}
	}

	s := body.session()
	if s == nil {
		return auth.Session{}, &RequestError{Op: "login", Status: status, Err: ErrMissingSession}
	}
	return *s, nil
}

// OAuthSignup registers or signs in the account behind a provider profile.
// Only 200 OK counts as success.
func (c *Client) OAuthSignup(ctx context.Context, email, name string) (Result, error) {
	status, body, err := c.post(ctx, "oauth-signup", oauthSignupPath, oauthSignupBody{Email: email, Name: name})
	if err != nil {
		return Result{}, err
	}
	if status != http.StatusOK {
		return Result{}, &RequestError{Op: "oauth-signup", Status: status, Message: body.message()}
	}
	return Result{Status: status, Session: body.session()}, nil
}

// Me returns the account the session token belongs to.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+mePath, nil)
	if err != nil {
		return User{}, &RequestError{Op: "me", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return User{}, &RequestError{Op: "me", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body sessionBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body)
		return User{}, &RequestError{Op: "me", Status: resp.StatusCode, Message: body.message()}
	}

	var u User
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&u); err != nil {
		return User{}, &RequestError{Op: "me", Status: resp.StatusCode, Err: err}
	}
	return u, nil
}

// post sends a JSON body and decodes whatever JSON comes back. A body that
// is not JSON is tolerated; only the status decides success.
func (c *Client) post(ctx context.Context, op, path string, payload any) (int, sessionBody, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, sessionBody{}, &RequestError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, sessionBody{}, &RequestError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, sessionBody{}, &RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	var body sessionBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body)

	return resp.StatusCode, body, nil
}
