package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beautycrafthq/bchq/internal/browser"
	"github.com/beautycrafthq/bchq/internal/forms"
	"github.com/beautycrafthq/bchq/internal/oauth"
	"github.com/beautycrafthq/bchq/internal/route"
	"github.com/beautycrafthq/bchq/internal/session"
	"github.com/beautycrafthq/bchq/internal/tui"
)

func newLoginCmd(c *cli) *cobra.Command {
	var form forms.SignIn
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tui.PromptSignIn(&form); err != nil {
				return err
			}
			return c.withApp(func(a *app) error {
				next, err := form.Submit(cmd.Context(), a.anonymous(), a.store, a.persist)
				if err != nil {
					return err
				}
				printSignedIn(c.out, a.store.Snapshot())
				return c.follow(cmd.Context(), a, next)
			})
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().BoolVar(&form.RememberMe, "remember-me", false, "ask for a long-lived session")
	return cmd
}

func newSignupCmd(c *cli) *cobra.Command {
	var form forms.SignUp
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tui.PromptSignUp(&form); err != nil {
				return err
			}
			return c.withApp(func(a *app) error {
				next, err := form.Submit(cmd.Context(), a.anonymous())
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Account created for %s.\n", form.Email)
				return c.follow(cmd.Context(), a, next)
			})
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&form.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "password again")
	return cmd
}

func newGoogleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "google",
		Short: "Sign in with Google in your browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				return c.runGoogle(cmd.Context(), a)
			})
		},
	}
}

func (c *cli) runGoogle(ctx context.Context, a *app) error {
	srv, err := oauth.Listen(a.logger)
	if err != nil {
		return err
	}
	defer srv.Close() //nolint:errcheck

	loginURL := a.anonymous().GoogleLoginURL(srv.RedirectURI())
	switch c.openURL(loginURL) {
	case browser.Opened:
		fmt.Fprintln(c.out, "Opening browser to sign in with Google...")
	case browser.Copied:
		fmt.Fprintf(c.out, "Could not open a browser. The sign-in link is on your clipboard:\n  %s\n", loginURL)
	default:
		fmt.Fprintf(c.out, "Could not open a browser. Visit this URL to sign in:\n  %s\n", loginURL)
	}

	params, err := srv.Wait(ctx, a.cfg.CallbackTimeout)
	if err != nil {
		return err
	}

	h := oauth.NewHandler(a.store, a.persist, session.NewClientFactory(a.cfg.RequestTimeout), oauth.Config{
		BaseURL:       a.cfg.APIURL,
		RedirectDelay: a.cfg.RedirectDelay,
		Logger:        a.logger,
	})
	res, err := h.Handle(ctx, params)
	if err != nil {
		return err
	}
	if res.State == oauth.StateError {
		return errors.New(res.Message)
	}
	printSignedIn(c.out, a.store.Snapshot())
	return c.follow(ctx, a, res.Target)
}

func newVerifyPhoneCmd(c *cli) *cobra.Command {
	var phone, code string
	cmd := &cobra.Command{
		Use:   "verify-phone",
		Short: "Verify your phone number with a texted code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				return c.runVerifyPhone(cmd.Context(), a, phone, code)
			})
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number including country code")
	cmd.Flags().StringVar(&code, "code", "", "code received by text (prompted when omitted)")
	return cmd
}

func (c *cli) runVerifyPhone(ctx context.Context, a *app, phone, code string) error {
	if a.store.Token() == "" {
		return errors.New("not signed in: run `bchq login` first")
	}
	pv := forms.NewPhoneVerification(a.client(), a.store, a.persist)

	if err := tui.PromptPhone(&phone); err != nil {
		return err
	}
	if err := pv.RequestCode(ctx, phone); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Code sent to %s.\n", pv.Phone())

	if err := tui.PromptCode(pv.Phone(), &code); err != nil {
		return err
	}
	next, err := pv.Verify(ctx, code)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Phone number verified.")
	return c.follow(ctx, a, next)
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear your session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				if a.store.Token() == "" && !a.store.Snapshot().IsAuthenticated {
					fmt.Fprintln(c.out, "Already logged out.")
					return nil
				}
				if err := a.store.Logout(); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Logged out.")
				return nil
			})
		},
	}
}

// follow carries the user on to target once an auth flow has finished.
func (c *cli) follow(ctx context.Context, a *app, target string) error {
	switch route.Path(target) {
	case route.VerifyPhone:
		fmt.Fprintln(c.out, "Your account needs a verified phone number.")
		if !tui.ShouldPrompt() {
			fmt.Fprintln(c.out, "Run `bchq verify-phone` to continue.")
			return nil
		}
		return c.runVerifyPhone(ctx, a, "", "")
	case route.Subscribe:
		u := route.Absolute(route.WebURL(a.cfg.APIURL), target)
		switch c.openURL(u) {
		case browser.Opened:
			fmt.Fprintln(c.out, "Opening checkout in your browser...")
		case browser.Copied:
			fmt.Fprintf(c.out, "Checkout link copied to clipboard:\n  %s\n", u)
		default:
			fmt.Fprintf(c.out, "Finish checkout at:\n  %s\n", u)
		}
	case route.Login:
		fmt.Fprintln(c.out, "Sign in with `bchq login`.")
	default:
		fmt.Fprintln(c.out, "Run `bchq` to open your dashboard.")
	}
	return nil
}
