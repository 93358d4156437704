package forms

import (
	"context"

	"github.com/beautycrafthq/bchq/internal/plan"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/client"
)

// MsgSignInFailed is shown when the backend rejects a sign-in without saying why.
const MsgSignInFailed = "Login failed. Please check your credentials."

// SignIn is the email and password sign-in form.
type SignIn struct {
	Email      string
	Password   string
	RememberMe bool
}

// Validate checks that both credentials are present.
func (f SignIn) Validate() error {
	if blank(f.Email) {
		return invalid("email", "Email is required.")
	}
	if f.Password == "" {
		return invalid("password", "Password is required.")
	}
	return nil
}

// Submit signs in and stores the session. It returns the route to continue
// to: checkout when a paid plan was picked beforehand, home otherwise.
func (f SignIn) Submit(ctx context.Context, api Authenticator, sess Session, persist storage.Store) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	resp, err := api.Login(ctx, client.LoginRequest{
		Email:      f.Email,
		Password:   f.Password,
		RememberMe: f.RememberMe,
	})
	if err != nil {
		return "", backendError(err, MsgSignInFailed)
	}
	if err := sess.Login(*resp.User, resp.AccessToken); err != nil {
		return "", err
	}
	return plan.NextRoute(persist), nil
}
