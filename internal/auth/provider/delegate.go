package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-frontend/internal/auth"
	"auth-frontend/internal/logger"
)

type Stage string

const (
	StageConsent Stage = "consent"
	StageProfile Stage = "profile"
)

var ErrIncompleteProfile = errors.New("provider profile has no email")

// StageError records which stage of the delegated flow failed.
// A failed stage never lets a later stage run.
type StageError struct {
	Provider string
	Stage    Stage
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Delegate runs consent then profile retrieval against one provider.
type Delegate struct {
	provider       OAuthProvider
	consentTimeout time.Duration
	profileTimeout time.Duration
}

// NewDelegate wraps p. A zero timeout leaves that stage bounded only by
// the caller's context.
func NewDelegate(p OAuthProvider, consentTimeout, profileTimeout time.Duration) *Delegate {
	return &Delegate{
		provider:       p,
		consentTimeout: consentTimeout,
		profileTimeout: profileTimeout,
	}
}

func (d *Delegate) ProviderName() string {
	return d.provider.Name()
}

// Authorize returns the provider profile of the user who just consented.
// Errors are always *StageError.
func (d *Delegate) Authorize(ctx context.Context) (auth.Profile, error) {
	token, err := d.consent(ctx)
	if err != nil {
		return auth.Profile{}, d.fail(StageConsent, err)
	}

	profile, err := d.profile(ctx, token)
	if err != nil {
		return auth.Profile{}, d.fail(StageProfile, err)
	}

	logger.Info("oauth profile resolved", map[string]any{
		"provider":      d.provider.Name(),
		"email_present": profile.Email != "",
		"name_present":  profile.Name != "",
	})

	return profile, nil
}

func (d *Delegate) consent(ctx context.Context) (auth.Token, error) {
	ctx, cancel := withTimeout(ctx, d.consentTimeout)
	defer cancel()

	token, err := d.provider.Consent(ctx)
	if err != nil {
		return auth.Token{}, err
	}
	if token.AccessToken == "" {
		return auth.Token{}, errors.New("provider returned empty access token")
	}
	return token, nil
}

func (d *Delegate) profile(ctx context.Context, token auth.Token) (auth.Profile, error) {
	ctx, cancel := withTimeout(ctx, d.profileTimeout)
	defer cancel()

	profile, err := d.provider.FetchProfile(ctx, token)
	if err != nil {
		return auth.Profile{}, err
	}
	if profile.Email == "" {
		return auth.Profile{}, ErrIncompleteProfile
	}
	return profile, nil
}

func (d *Delegate) fail(stage Stage, err error) error {
	logger.Warn("oauth stage failed", map[string]any{
		"provider": d.provider.Name(),
		"stage":    string(stage),
		"error":    err.Error(),
	})
	return &StageError{Provider: d.provider.Name(), Stage: stage, Err: err}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
