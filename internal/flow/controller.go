// Package flow owns the authentication state of the front end. It validates
// credentials before they are sent, runs either the direct credential path
// or the delegated OAuth path, and converges both on the same outcome:
// a session written to the store followed by one navigation event.
package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"auth-frontend/internal/auth"
	"auth-frontend/internal/auth/password"
	"auth-frontend/internal/auth/provider"
	"auth-frontend/internal/identity"
	"auth-frontend/internal/logger"
	"auth-frontend/internal/session"
)

// DefaultHome is the authenticated area navigated to after success.
const DefaultHome = "/home"

const (
	NoticeSignedUp = "User created successfully!"
	NoticeLoggedIn = "Login successful!"
	NoticeOAuth    = "Logged in successfully!"

	msgSignupFailed  = "Error signing up"
	msgLoginFailed   = "Error logging in. Please check your credentials."
	msgStorageFailed = "Could not save your session. Please try again."
)

// Mode selects which credential form is active.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

// Phase is where the controller is in the life of one attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseDone
	// PhaseFailed is Idle after a failed request; the error stays visible
	// until the next attempt or toggle.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Input is the form content as typed. Only the controller holds it.
type Input struct {
	Email    string
	Password string
}

// Identity is the subset of the identity service the controller calls.
type Identity interface {
	Signup(ctx context.Context, email, password string) (identity.Result, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	OAuthSignup(ctx context.Context, email, name string) (identity.Result, error)
}

// Authorizer yields the profile of a user who consented at a provider.
// *provider.Delegate implements it.
type Authorizer interface {
	ProviderName() string
	Authorize(ctx context.Context) (auth.Profile, error)
}

// Navigator moves the user to another screen after success.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Notifier delivers transient messages to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Deps are the collaborators a Controller drives.
type Deps struct {
	Identity  Identity
	OAuth     Authorizer // nil disables the OAuth entry point
	Sessions  session.Store
	Navigator Navigator
	Notifier  Notifier
	Home      string
}

// Options bound the identity requests and the session write. Zero means
// no bound beyond the caller's context. The OAuth stages are bounded by the
// Authorizer itself.
type Options struct {
	RequestTimeout time.Duration
}

// Controller serializes authentication attempts for one form. It is safe
// for concurrent use; at most one attempt is in flight at a time.
type Controller struct {
	deps Deps
	opts Options

	mu      sync.Mutex
	mode    Mode
	phase   Phase
	input   Input
	lastErr *Error
}

// New returns a controller in login mode. Navigator and Notifier default
// to no-ops and Home to DefaultHome.
func New(deps Deps, opts Options) *Controller {
	if deps.Home == "" {
		deps.Home = DefaultHome
	}
	if deps.Navigator == nil {
		deps.Navigator = NavigatorFunc(func(string) {})
	}
	if deps.Notifier == nil {
		deps.Notifier = NotifierFunc(func(string) {})
	}
	return &Controller{deps: deps, opts: opts}
}

// Mode reports the active form.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Phase reports the attempt state.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// View returns a snapshot of the active form.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := Form{
		Email:       c.input.Email,
		PasswordSet: c.input.Password != "",
		Busy:        c.phase == PhaseSubmitting,
	}
	if c.lastErr != nil {
		f.Error = c.lastErr.Message
	}

	if c.mode == ModeSignup {
		return SignupView{Form: f, Policy: password.PolicyMessage}
	}
	return LoginView{Form: f}
}

// SetEmail stores the email exactly as entered. It is sent unchanged so the
// identity service sees the same pair the user typed.
func (c *Controller) SetEmail(email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.acceptLocked("email"); err != nil {
		return err
	}
	c.input.Email = email
	return nil
}

func (c *Controller) SetPassword(pw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.acceptLocked("password"); err != nil {
		return err
	}
	c.input.Password = pw
	return nil
}

// Toggle switches between the login and signup forms and clears the input.
// It is refused while an attempt is in flight rather than queued.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.acceptLocked("toggle"); err != nil {
		return err
	}

	if c.mode == ModeLogin {
		c.mode = ModeSignup
	} else {
		c.mode = ModeLogin
	}
	c.input = Input{}
	c.lastErr = nil
	c.phase = PhaseIdle

	logger.Debug("auth mode toggled", map[string]any{"mode": c.mode.String()})
	return nil
}

// Submit sends the current input through the active form's path.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if err := c.acceptLocked("submit"); err != nil {
		c.mu.Unlock()
		return err
	}

	mode, in := c.mode, c.input

	if mode == ModeSignup && !password.Validate(in.Password) {
		e := &Error{Kind: KindValidation, Message: password.PolicyMessage, Err: password.ErrWeakPassword}
		c.lastErr = e
		c.phase = PhaseIdle
		c.mu.Unlock()

		logger.Info("signup rejected by password policy", nil)
		return e
	}

	c.phase = PhaseSubmitting
	c.lastErr = nil
	c.mu.Unlock()

	if mode == ModeSignup {
		return c.signup(ctx, in)
	}
	return c.login(ctx, in)
}

// OAuth runs consent, profile fetch and oauth-signup in order. Any failure
// stops the chain, leaves the input alone and sends a generic notice.
func (c *Controller) OAuth(ctx context.Context) error {
	if c.deps.OAuth == nil {
		return ErrNoProvider
	}

	c.mu.Lock()
	if err := c.acceptLocked("oauth"); err != nil {
		c.mu.Unlock()
		return err
	}
	c.phase = PhaseSubmitting
	c.lastErr = nil
	c.mu.Unlock()

	profile, err := c.deps.OAuth.Authorize(ctx)
	if err != nil {
		return c.oauthFailed(classifyOAuth(err))
	}

	reqCtx, cancel := withTimeout(ctx, c.opts.RequestTimeout)
	res, err := c.deps.Identity.OAuthSignup(reqCtx, profile.Email, profile.Name)
	cancel()
	if err != nil {
		return c.oauthFailed(&Error{Kind: KindRequest, Message: requestMessage(err, ""), Err: err})
	}

	return c.establish(ctx, "oauth-signup", res.Session, NoticeOAuth)
}

func (c *Controller) signup(ctx context.Context, in Input) error {
	reqCtx, cancel := withTimeout(ctx, c.opts.RequestTimeout)
	res, err := c.deps.Identity.Signup(reqCtx, in.Email, in.Password)
	cancel()
	if err != nil {
		return c.fail("signup", &Error{Kind: KindRequest, Message: requestMessage(err, msgSignupFailed), Err: err})
	}
	return c.establish(ctx, "signup", res.Session, NoticeSignedUp)
}

func (c *Controller) login(ctx context.Context, in Input) error {
	reqCtx, cancel := withTimeout(ctx, c.opts.RequestTimeout)
	s, err := c.deps.Identity.Login(reqCtx, in.Email, in.Password)
	cancel()
	if err != nil {
		return c.fail("login", &Error{Kind: KindRequest, Message: msgLoginFailed, Err: err})
	}
	return c.establish(ctx, "login", &s, NoticeLoggedIn)
}

// establish is the single terminal action both paths converge on. A nil
// session means the service accepted the request without issuing one.
func (c *Controller) establish(ctx context.Context, op string, s *auth.Session, notice string) error {
	if s != nil {
		setCtx, cancel := withTimeout(ctx, c.opts.RequestTimeout)
		err := c.deps.Sessions.Set(setCtx, *s)
		cancel()
		if err != nil {
			return c.fail(op, &Error{Kind: KindStorage, Message: msgStorageFailed, Err: err})
		}
	}

	c.mu.Lock()
	c.phase = PhaseDone
	c.input = Input{}
	c.lastErr = nil
	c.mu.Unlock()

	fields := map[string]any{"op": op, "session_written": s != nil}
	if s != nil {
		fields["user_id"] = s.UserID
	}
	logger.Info("authentication succeeded", fields)

	c.deps.Notifier.Notify(notice)
	c.deps.Navigator.Navigate(c.deps.Home)
	return nil
}

// fail returns to Failed keeping the email. The password is cleared so it
// is not resent by accident.
func (c *Controller) fail(op string, e *Error) error {
	c.mu.Lock()
	c.phase = PhaseFailed
	c.input.Password = ""
	c.lastErr = e
	c.mu.Unlock()

	logger.Warn("authentication failed", map[string]any{
		"op":    op,
		"kind":  e.Kind.String(),
		"error": e.Error(),
	})
	return e
}

func (c *Controller) oauthFailed(e *Error) error {
	c.mu.Lock()
	c.phase = PhaseIdle
	c.mu.Unlock()

	logger.Warn("oauth sign-in failed", map[string]any{
		"provider": c.deps.OAuth.ProviderName(),
		"kind":     e.Kind.String(),
		"error":    e.Error(),
	})

	e.Message = oauthNotice(c.deps.OAuth.ProviderName())
	c.deps.Notifier.Notify(e.Message)
	return e
}

// acceptLocked gates every intent. c.mu must be held.
func (c *Controller) acceptLocked(intent string) error {
	switch c.phase {
	case PhaseDone:
		return ErrFinished
	case PhaseSubmitting:
		logger.Debug("intent ignored while submitting", map[string]any{"intent": intent})
		return ErrBusy
	}
	return nil
}

func classifyOAuth(err error) *Error {
	var stageErr *provider.StageError
	if errors.As(err, &stageErr) && stageErr.Stage == provider.StageProfile {
		return &Error{Kind: KindProfileFetch, Err: err}
	}
	return &Error{Kind: KindOAuth, Err: err}
}

// requestMessage prefers the identity service's own message.
func requestMessage(err error, fallback string) string {
	var reqErr *identity.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return fallback
}

func oauthNotice(providerName string) string {
	if providerName == "" {
		return "Sign-in failed. Please try again."
	}
	return strings.ToUpper(providerName[:1]) + providerName[1:] + " sign-in failed. Please try again."
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
