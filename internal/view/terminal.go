package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"auth-frontend/internal/flow"
	"auth-frontend/internal/identity"
	"auth-frontend/internal/logger"
	"auth-frontend/internal/session"
)

// Account looks up who a session token belongs to.
type Account interface {
	Me(ctx context.Context, token string) (identity.User, error)
}

type Config struct {
	Home     string
	Provider string // label of the OAuth command; empty hides it
	Sessions session.Store
	Account  Account
}

// Terminal is a line-oriented front end. It is also the controller's
// Navigator and Notifier, so attempts running in the background can move
// it to the home screen and print notices.
type Terminal struct {
	cfg Config
	in  io.Reader

	outMu sync.Mutex
	out   io.Writer

	mu    sync.Mutex
	route string

	// inflight counts attempts whose result has not been received yet.
	// Only the Run goroutine touches it.
	inflight int
}

func NewTerminal(in io.Reader, out io.Writer, cfg Config) *Terminal {
	if cfg.Home == "" {
		cfg.Home = flow.DefaultHome
	}
	return &Terminal{cfg: cfg, in: in, out: out}
}

func (t *Terminal) Navigate(route string) {
	t.mu.Lock()
	t.route = route
	t.mu.Unlock()

	logger.Debug("navigated", map[string]any{"route": route})
}

func (t *Terminal) Notify(message string) {
	t.printf("* %s\n", message)
}

func (t *Terminal) atHome() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.route == t.cfg.Home
}

// Run reads commands until quit, end of input or ctx ends. At end of input
// it first waits for attempts still in flight, so piped scripts complete.
// newController is called again after logout since a controller that
// succeeded is done.
func (t *Terminal) Run(ctx context.Context, newController func() *flow.Controller) error {
	t.inflight = 0
	lines := make(chan string)
	go t.scan(ctx, lines)

	existing, err := t.cfg.Sessions.Get(ctx)
	if err != nil {
		logger.Warn("session lookup failed", map[string]any{"error": err.Error()})
	}
	if existing != nil {
		t.Navigate(t.cfg.Home)
	}

	ctrl := newController()
	results := make(chan error)

	t.redraw(ctx, ctrl)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-results:
			t.inflight--
			t.report(err)
			t.redraw(ctx, ctrl)
			if lines == nil && t.inflight == 0 {
				return nil
			}

		case line, ok := <-lines:
			if !ok {
				if t.inflight == 0 {
					return nil
				}
				lines = nil
				continue
			}
			cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
			if cmd == "" {
				continue
			}
			if cmd == "quit" || cmd == "exit" {
				return nil
			}

			if t.atHome() {
				if t.homeCommand(ctx, cmd) {
					ctrl = newController()
				}
				t.redraw(ctx, ctrl)
				continue
			}

			if t.formCommand(ctx, ctrl, cmd, strings.TrimSpace(arg), results) {
				t.redraw(ctx, ctrl)
			}
		}
	}
}

// formCommand dispatches one intent. It reports whether the form should be
// redrawn right away; attempts redraw when they finish.
func (t *Terminal) formCommand(ctx context.Context, ctrl *flow.Controller, cmd, arg string, results chan<- error) bool {
	var err error
	switch cmd {
	case "email":
		err = ctrl.SetEmail(arg)
	case "password":
		err = ctrl.SetPassword(arg)
	case "toggle":
		err = ctrl.Toggle()
	case "submit":
		t.attempt(ctx, results, ctrl.Submit)
		return false
	case "oauth", t.cfg.Provider:
		if t.cfg.Provider == "" {
			t.printf("unknown command %q\n", cmd)
			return false
		}
		t.printf("complete sign-in in your browser...\n")
		t.attempt(ctx, results, ctrl.OAuth)
		return false
	case "help":
		return true
	default:
		t.printf("unknown command %q\n", cmd)
		return false
	}

	t.report(err)
	return err == nil
}

// homeCommand handles the authenticated area. It reports whether the user
// logged out.
func (t *Terminal) homeCommand(ctx context.Context, cmd string) bool {
	switch cmd {
	case "logout":
		if err := t.cfg.Sessions.Clear(ctx); err != nil {
			logger.Error("session clear failed", map[string]any{"error": err.Error()})
			t.printf("! could not sign out: %v\n", err)
			return false
		}
		logger.Info("signed out", nil)
		t.Navigate("")
		t.printf("* Signed out.\n")
		return true
	case "me", "help":
		return false
	default:
		t.printf("unknown command %q\n", cmd)
		return false
	}
}

func (t *Terminal) attempt(ctx context.Context, results chan<- error, fn func(context.Context) error) {
	t.inflight++
	go func() {
		err := fn(ctx)
		select {
		case results <- err:
		case <-ctx.Done():
		}
	}()
}

// report prints errors the form itself does not show. Validation and
// request failures appear in the redrawn form; OAuth failures arrive as
// notices.
func (t *Terminal) report(err error) {
	if err == nil {
		return
	}
	var fe *flow.Error
	if errors.As(err, &fe) {
		return
	}
	t.printf("! %v\n", err)
}

func (t *Terminal) redraw(ctx context.Context, ctrl *flow.Controller) {
	if t.atHome() {
		t.printf("%s> ", RenderHome(t.account(ctx)))
		return
	}
	t.printf("%s> ", Render(ctrl.View(), t.cfg.Provider))
}

func (t *Terminal) account(ctx context.Context) string {
	s, err := t.cfg.Sessions.Get(ctx)
	if err != nil {
		logger.Warn("session lookup failed", map[string]any{"error": err.Error()})
		return ""
	}
	if s == nil {
		return "Account created. Log out and log in to start a session."
	}
	if t.cfg.Account == nil {
		return fmt.Sprintf("Signed in as user %s", s.UserID)
	}

	u, err := t.cfg.Account.Me(ctx, s.Token)
	if err != nil {
		logger.Warn("account lookup failed", map[string]any{"user_id": s.UserID, "error": err.Error()})
		return fmt.Sprintf("Signed in as user %s (account details unavailable)", s.UserID)
	}
	return fmt.Sprintf("Signed in as %s (%s)", u.Email, u.UserID)
}

func (t *Terminal) scan(ctx context.Context, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(t.in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-ctx.Done():
			return
		}
	}
}

func (t *Terminal) printf(format string, args ...any) {
	t.outMu.Lock()
	defer t.outMu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}
