package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/beautycrafthq/bchq/internal/forms"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

// ErrNotInteractive is returned when input is missing and stdin is not a terminal.
var ErrNotInteractive = errors.New("missing input and no terminal to prompt on")

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func run(fields ...huh.Field) error {
	if len(fields) == 0 {
		return nil
	}
	if !ShouldPrompt() {
		return ErrNotInteractive
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// PromptSignIn asks for whichever sign-in fields are still empty.
func PromptSignIn(f *forms.SignIn) error {
	var fields []huh.Field
	if f.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&f.Email).Validate(required("email")))
	}
	if f.Password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password).Validate(required("password")))
	}
	return run(fields...)
}

// PromptSignUp asks for whichever registration fields are still empty.
func PromptSignUp(f *forms.SignUp) error {
	var fields []huh.Field
	if f.Email == "" {
		fields = append(fields, huh.NewInput().Title("Email").Value(&f.Email).Validate(required("email")))
	}
	if f.FirstName == "" {
		fields = append(fields, huh.NewInput().Title("First name").Value(&f.FirstName).Validate(required("first name")))
	}
	if f.LastName == "" {
		fields = append(fields, huh.NewInput().Title("Last name").Value(&f.LastName).Validate(required("last name")))
	}
	if f.Password == "" {
		fields = append(fields, huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&f.Password).Validate(required("password")))
	}
	if f.ConfirmPassword == "" {
		fields = append(fields, huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&f.ConfirmPassword))
	}
	return run(fields...)
}

// PromptPhone asks for the number to text a code to.
func PromptPhone(phone *string) error {
	if *phone != "" {
		return nil
	}
	return run(huh.NewInput().
		Title("Phone number").
		Description("Include the country code, e.g. +15551234567").
		Value(phone).
		Validate(required("phone number")))
}

// PromptCode asks for the code received by text message.
func PromptCode(phone string, code *string) error {
	if *code != "" {
		return nil
	}
	return run(huh.NewInput().
		Title("Verification code").
		Description("Sent to " + phone).
		Value(code).
		Validate(required("code")))
}

// PromptPlan asks for a plan and billing cycle.
func PromptPlan(planID, cycle *string) error {
	var fields []huh.Field
	if *planID == "" {
		opts := make([]huh.Option[string], len(domain.Plans))
		for i, p := range domain.Plans {
			opts[i] = huh.NewOption(p, p)
		}
		fields = append(fields, huh.NewSelect[string]().Title("Plan").Options(opts...).Value(planID))
	}
	if *cycle == "" {
		fields = append(fields, huh.NewSelect[string]().Title("Billing").Options(
			huh.NewOption(domain.BillingMonthly, domain.BillingMonthly),
			huh.NewOption(domain.BillingYearly, domain.BillingYearly),
		).Value(cycle))
	}
	return run(fields...)
}

// IsInteractive returns true if stdin is a terminal (not piped).
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown. Prompts are disabled
// in CI environments or when stdin is not a terminal.
func ShouldPrompt() bool {
	for _, envVar := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "BUILDKITE"} {
		if os.Getenv(envVar) != "" {
			return false
		}
	}
	return IsInteractive()
}
