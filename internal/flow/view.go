package flow

// Form is the state common to both credential forms. The password itself
// never leaves the controller.
type Form struct {
	Email       string
	PasswordSet bool
	Error       string
	Busy        bool
}

// View is a snapshot of the active form: LoginView or SignupView.
type View interface {
	Mode() Mode
	Fields() Form
}

type LoginView struct {
	Form
}

func (LoginView) Mode() Mode { return ModeLogin }
func (v LoginView) Fields() Form { return v.Form }

// SignupView also carries the password policy so it can be shown up front.
type SignupView struct {
	Form
	Policy string
}

func (SignupView) Mode() Mode { return ModeSignup }
func (v SignupView) Fields() Form { return v.Form }
