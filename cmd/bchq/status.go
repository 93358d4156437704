package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/beautycrafthq/bchq/internal/plan"
	"github.com/beautycrafthq/bchq/internal/session"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

// statusReport is the --json shape of `bchq status`.
type statusReport struct {
	APIURL         string       `json:"api_url"`
	Authenticated  bool         `json:"authenticated"`
	Outcome        string       `json:"outcome"`
	User           *domain.User `json:"user,omitempty"`
	TokenExpiresAt *time.Time   `json:"token_expires_at,omitempty"`
	SelectedPlan   string       `json:"selected_plan,omitempty"`
	BillingCycle   string       `json:"billing_cycle,omitempty"`
}

func newStatusCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check your session against the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				outcome := a.boot.Bootstrap(cmd.Context(), a.cfg.APIURL)
				st := a.store.Snapshot()

				report := statusReport{
					APIURL:        a.cfg.APIURL,
					Authenticated: st.IsAuthenticated,
					Outcome:       outcome.String(),
					User:          st.User,
				}
				if exp, ok := session.TokenExpiry(a.store.Token()); ok {
					report.TokenExpiresAt = &exp
				}
				if sel, ok, err := plan.Load(a.persist); err == nil && ok {
					report.SelectedPlan = sel.Plan
					report.BillingCycle = sel.BillingCycle
				}

				if asJSON {
					enc := json.NewEncoder(c.out)
					enc.SetIndent("", "  ")
					return enc.Encode(report)
				}
				printStatus(c.out, report, outcome)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")
	return cmd
}

func printStatus(w io.Writer, r statusReport, outcome session.Outcome) {
	switch {
	case r.Authenticated && r.User != nil:
		fmt.Fprintf(w, "Signed in as %s <%s>\n", r.User.DisplayName(), r.User.Email)
		if r.User.SubscriptionType != "" {
			fmt.Fprintf(w, "Plan: %s\n", r.User.SubscriptionType)
		}
		if !r.User.IsVerified {
			fmt.Fprintln(w, "Phone: not verified (run `bchq verify-phone`)")
		}
	case outcome == session.OutcomeEmptyIdentity:
		fmt.Fprintln(w, "Token accepted, but the server returned no account.")
	default:
		fmt.Fprintln(w, "Not signed in.")
	}
	switch outcome {
	case session.OutcomeRejected:
		fmt.Fprintln(w, "Your session had expired and was cleared.")
	case session.OutcomeTransient:
		fmt.Fprintln(w, "Could not reach the server; showing the saved session.")
	}
	if r.TokenExpiresAt != nil {
		fmt.Fprintf(w, "Token expires: %s\n", r.TokenExpiresAt.Local().Format(time.RFC1123))
	}
	if r.SelectedPlan != "" {
		fmt.Fprintf(w, "Selected plan: %s (%s)\n", r.SelectedPlan, r.BillingCycle)
	}
}
