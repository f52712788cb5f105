package auth

// Session is the terminal artifact of a successful authentication.
// It is the only auth state persisted on the client.
type Session struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// Valid reports whether both halves of the session are present.
func (s Session) Valid() bool {
	return s.UserID != "" && s.Token != ""
}

// Token is the provider access token handed back by the consent stage.
// It must never be persisted.
type Token struct {
	AccessToken string
}

// Profile is the identity reported by an OAuth provider's profile endpoint.
// It contains facts only, no decisions.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
