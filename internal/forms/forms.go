// Package forms implements the credential forms: sign-in, sign-up and the
// two-step phone verification. Each form validates its input locally, issues
// one backend request and hands the outcome to the session store.
package forms

import (
	"context"
	"strings"

	"github.com/beautycrafthq/bchq/pkg/client"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

// Error is a form failure carrying the message to show the user. Field names
// the offending input for local validation failures and is empty otherwise.
type Error struct {
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func invalid(field, msg string) *Error {
	return &Error{Field: field, Message: msg}
}

// backendError surfaces the backend's message verbatim, or fallback when the
// response carried none.
func backendError(err error, fallback string) *Error {
	return &Error{Message: client.Message(err, fallback), Err: err}
}

// Authenticator is the slice of the API client used by SignIn.
type Authenticator interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error)
}

// Registrar is the slice of the API client used by SignUp.
type Registrar interface {
	Register(ctx context.Context, req client.RegisterRequest) (*domain.User, error)
}

// PhoneVerifier is the slice of the API client used by PhoneVerification.
// It must authenticate with the session's bearer token.
type PhoneVerifier interface {
	RequestPhoneVerification(ctx context.Context, phone string) error
	VerifyPhone(ctx context.Context, phone, code string) error
}

// Session is the part of the session store the forms write to.
type Session interface {
	Login(user domain.User, token string) error
	UpdateUser(patch domain.UserPatch) error
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
