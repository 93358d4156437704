package forms

import (
	"context"

	"github.com/beautycrafthq/bchq/internal/route"
	"github.com/beautycrafthq/bchq/pkg/client"
)

// MsgSignUpFailed is shown when registration fails without a backend message.
const MsgSignUpFailed = "Registration failed. Please try again."

// MsgPasswordMismatch is the local validation failure for the confirmation field.
const MsgPasswordMismatch = "Passwords do not match."

// SignUp is the account registration form.
type SignUp struct {
	Email           string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
}

// Validate checks presence of every field and that the passwords match.
func (f SignUp) Validate() error {
	switch {
	case blank(f.Email):
		return invalid("email", "Email is required.")
	case blank(f.FirstName):
		return invalid("first_name", "First name is required.")
	case blank(f.LastName):
		return invalid("last_name", "Last name is required.")
	case f.Password == "":
		return invalid("password", "Password is required.")
	case f.Password != f.ConfirmPassword:
		return invalid("confirm_password", MsgPasswordMismatch)
	}
	return nil
}

// Submit registers the account. Registration does not sign the user in; the
// returned route is the sign-in page.
func (f SignUp) Submit(ctx context.Context, api Registrar) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	_, err := api.Register(ctx, client.RegisterRequest{
		Email:           f.Email,
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	})
	if err != nil {
		return "", backendError(err, MsgSignUpFailed)
	}
	return route.Login, nil
}
