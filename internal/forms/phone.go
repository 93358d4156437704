package forms

import (
	"context"
	"strings"
	"sync"

	"github.com/beautycrafthq/bchq/internal/plan"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

// Fallback messages of the phone verification form.
const (
	MsgSendCodeFailed = "Failed to send verification code."
	MsgVerifyFailed   = "Invalid verification code."
)

// Step is the position in the phone verification flow.
type Step int

const (
	StepRequestCode Step = iota
	StepVerifyCode
	StepVerified
)

func (s Step) String() string {
	switch s {
	case StepRequestCode:
		return "request_code"
	case StepVerifyCode:
		return "verify_code"
	case StepVerified:
		return "verified"
	default:
		return "unknown"
	}
}

// PhoneVerification walks a signed-in user through requesting a code by text
// message and submitting it.
type PhoneVerification struct {
	api     PhoneVerifier
	sess    Session
	persist storage.Store

	mu    sync.Mutex
	step  Step
	phone string
}

// NewPhoneVerification starts the flow at StepRequestCode. api must carry the
// session's bearer token.
func NewPhoneVerification(api PhoneVerifier, sess Session, persist storage.Store) *PhoneVerification {
	return &PhoneVerification{api: api, sess: sess, persist: persist}
}

// Step returns the current step.
func (p *PhoneVerification) Step() Step {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step
}

// Phone returns the number the code was sent to.
func (p *PhoneVerification) Phone() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phone
}

// RequestCode texts a code to phone and advances to StepVerifyCode. Calling it
// again from StepVerifyCode resends to the new number.
func (p *PhoneVerification) RequestCode(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return invalid("phone_number", "Phone number is required.")
	}
	if p.Step() == StepVerified {
		return invalid("", "Phone number is already verified.")
	}
	if err := p.api.RequestPhoneVerification(ctx, phone); err != nil {
		return backendError(err, MsgSendCodeFailed)
	}

	p.mu.Lock()
	p.phone = phone
	p.step = StepVerifyCode
	p.mu.Unlock()
	return nil
}

// Verify submits code. On success the session user is marked verified and the
// returned route is where to continue.
func (p *PhoneVerification) Verify(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	p.mu.Lock()
	step, phone := p.step, p.phone
	p.mu.Unlock()

	if step != StepVerifyCode {
		return "", invalid("", "Request a verification code first.")
	}
	if code == "" {
		return "", invalid("code", "Verification code is required.")
	}
	if err := p.api.VerifyPhone(ctx, phone, code); err != nil {
		return "", backendError(err, MsgVerifyFailed)
	}

	p.mu.Lock()
	p.step = StepVerified
	p.mu.Unlock()

	verified := true
	if err := p.sess.UpdateUser(domain.UserPatch{IsVerified: &verified}); err != nil {
		return "", err
	}
	return plan.NextRoute(p.persist), nil
}

// ChangeNumber returns to StepRequestCode.
func (p *PhoneVerification) ChangeNumber() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.step == StepVerifyCode {
		p.step = StepRequestCode
	}
}
