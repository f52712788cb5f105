package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"auth-frontend/internal/auth"
)

// FetchUserInfo GETs a provider profile endpoint with the access token as a
// bearer credential and decodes the standard email/name claims.
// preferred_username stands in when a provider omits name.
func FetchUserInfo(ctx context.Context, hc *http.Client, url string, token auth.Token) (auth.Profile, error) {
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return auth.Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return auth.Profile{}, fmt.Errorf("profile request failed: status %d", resp.StatusCode)
	}

	var payload struct {
		Email             string `json:"email"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return auth.Profile{}, fmt.Errorf("profile decode failed: %w", err)
	}

	name := payload.Name
	if name == "" {
		name = payload.PreferredUsername
	}

	return auth.Profile{Email: payload.Email, Name: name}, nil
}
