// Package view draws the controller's state for a terminal and turns typed
// commands into controller intents.
package view

import (
	"fmt"
	"strings"

	"auth-frontend/internal/flow"
)

// Render draws one form. It depends only on v and the provider label.
func Render(v flow.View, provider string) string {
	var b strings.Builder
	f := v.Fields()

	switch v := v.(type) {
	case flow.SignupView:
		b.WriteString("== Sign up ==\n")
		b.WriteString(v.Policy + "\n")
	default:
		b.WriteString("== Log in ==\n")
	}

	fmt.Fprintf(&b, "email:    %s\n", f.Email)
	if f.PasswordSet {
		b.WriteString("password: ********\n")
	} else {
		b.WriteString("password:\n")
	}

	if f.Error != "" {
		fmt.Fprintf(&b, "! %s\n", f.Error)
	}
	if f.Busy {
		b.WriteString("(working...)\n")
	}

	other := "sign up"
	if v.Mode() == flow.ModeSignup {
		other = "log in"
	}
	fmt.Fprintf(&b, "commands: email <addr> | password <pw> | submit | toggle (%s)", other)
	if provider != "" {
		fmt.Fprintf(&b, " | %s", provider)
	}
	b.WriteString(" | quit\n")

	return b.String()
}

// RenderHome draws the authenticated area.
func RenderHome(account string) string {
	var b strings.Builder
	b.WriteString("== Home ==\n")
	if account != "" {
		fmt.Fprintf(&b, "%s\n", account)
	}
	b.WriteString("commands: me | logout | quit\n")
	return b.String()
}
