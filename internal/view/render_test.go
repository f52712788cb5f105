package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"auth-frontend/internal/auth/password"
	"auth-frontend/internal/flow"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		view     flow.View
		provider string
		contains []string
		absent   []string
	}{
		{
			name:     "empty login form",
			view:     flow.LoginView{},
			provider: "google",
			contains: []string{"== Log in ==", "toggle (sign up)", "| google |"},
			absent:   []string{"********", "!"},
		},
		{
			name: "signup shows policy and masks password",
			view: flow.SignupView{
				Form:   flow.Form{Email: "a@b.com", PasswordSet: true},
				Policy: password.PolicyMessage,
			},
			contains: []string{"== Sign up ==", password.PolicyMessage, "email:    a@b.com", "password: ********", "toggle (log in)"},
			absent:   []string{"google"},
		},
		{
			name:     "error and busy",
			view:     flow.LoginView{Form: flow.Form{Error: "Error logging in. Please check your credentials.", Busy: true}},
			contains: []string{"! Error logging in. Please check your credentials.", "(working...)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(tt.view, tt.provider)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestRenderHome(t *testing.T) {
	out := RenderHome("Signed in as a@b.com (u-1)")
	assert.Contains(t, out, "== Home ==")
	assert.Contains(t, out, "Signed in as a@b.com (u-1)")
	assert.Contains(t, out, "logout")
}
