package main

import (
	"github.com/spf13/cobra"

	"github.com/beautycrafthq/bchq/internal/tui"
)

func newDashboardCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the account dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDashboard(cmd)
		},
	}
}

func (c *cli) runDashboard(cmd *cobra.Command) error {
	return c.withApp(func(a *app) error {
		if a.store.Token() == "" {
			printWelcome(c.out)
			return nil
		}
		dash := tui.NewApp(tui.Options{
			Context:   cmd.Context(),
			Session:   a.store,
			Validator: a.boot,
			Persist:   a.persist,
			APIURL:    a.cfg.APIURL,
			Version:   version,
			OpenURL:   c.openURL,
		})
		defer dash.Close()
		return c.runTUI(cmd.Context(), dash)
	})
}
