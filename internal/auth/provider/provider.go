package provider

import (
	"context"

	"auth-frontend/internal/auth"
)

// OAuthProvider defines the contract every third-party sign-in provider
// must implement. Implementations hand back identity facts only and
// must not call the identity service or touch the session store.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "google", "keycloak").
	Name() string

	// Consent drives the user through the provider's consent screen and
	// returns the resulting access token. It blocks until the provider
	// calls back, the user denies, or ctx ends.
	Consent(ctx context.Context) (auth.Token, error)

	// FetchProfile reads the user's email and name from the provider's
	// profile endpoint using the bearer token from Consent.
	FetchProfile(ctx context.Context, token auth.Token) (auth.Profile, error)
}
