package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beautycrafthq/bchq/internal/plan"
	"github.com/beautycrafthq/bchq/internal/tui"
)

func newPlanCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Pick the plan to continue to after signing in",
	}

	var cycle string
	selectCmd := &cobra.Command{
		Use:   "select [plan]",
		Short: "Select a plan: free, starter, professional or enterprise",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var planID string
			if len(args) == 1 {
				planID = args[0]
				if cycle == "" {
					cycle = "monthly"
				}
			}
			if err := tui.PromptPlan(&planID, &cycle); err != nil {
				return err
			}
			return c.withApp(func(a *app) error {
				sel := plan.Selection{Plan: planID, BillingCycle: cycle}
				if err := plan.Save(a.persist, sel); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Selected %s (%s).\n", sel.Plan, sel.BillingCycle)
				if sel.IsPaid() && !a.store.Snapshot().IsAuthenticated {
					fmt.Fprintln(c.out, "Sign in to continue to checkout.")
				}
				return nil
			})
		},
	}
	selectCmd.Flags().StringVar(&cycle, "cycle", "", "billing cycle: monthly or yearly")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the selected plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				sel, ok, err := plan.Load(a.persist)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(c.out, "No plan selected.")
					return nil
				}
				fmt.Fprintf(c.out, "%s (%s)\n", sel.Plan, sel.BillingCycle)
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the selected plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				if err := plan.Clear(a.persist); err != nil {
					return err
				}
				fmt.Fprintln(c.out, "Plan selection cleared.")
				return nil
			})
		},
	}

	cmd.AddCommand(selectCmd, showCmd, clearCmd)
	return cmd
}
