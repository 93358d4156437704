package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/beautycrafthq/bchq/internal/browser"
	"github.com/beautycrafthq/bchq/internal/config"
	"github.com/beautycrafthq/bchq/internal/logging"
	"github.com/beautycrafthq/bchq/internal/session"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/internal/tui"
	"github.com/beautycrafthq/bchq/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{
		out:        os.Stdout,
		errOut:     os.Stderr,
		loadConfig: config.Load,
		openURL:    browser.OpenOrCopy,
		runTUI:     runProgram,
	}
	if err := newRootCmd(c).ExecuteContext(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Fprintln(os.Stderr, "\ncancelled")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the process-level dependencies every command shares.
type cli struct {
	out        io.Writer
	errOut     io.Writer
	loadConfig func() (config.Config, error)
	openURL    func(url string) browser.Handoff
	runTUI     func(ctx context.Context, app tui.App) error

	apiURL string // --api-url
}

func runProgram(ctx context.Context, app tui.App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// app is the session layer wired from configuration.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	persist storage.Store
	store   *session.Store
	boot    *session.Bootstrapper
}

// open loads configuration and opens persisted storage. With BCHQ_TOKEN set
// the session lives in memory, seeded with that token, and nothing is written
// to disk.
func (c *cli) open() (*app, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, c.errOut)

	var persist storage.Store
	if cfg.Token != "" {
		mem := storage.NewMemory()
		mem.Put(map[string]string{storage.KeyToken: cfg.Token}) //nolint:errcheck // memory store never fails
		persist = mem
		logger.Debug("using session token from environment")
	} else {
		persist, err = storage.Open(cfg.Store, cfg.StateDir)
		if err != nil {
			return nil, err
		}
	}

	store := session.NewStore(persist, logger)
	return &app{
		cfg:     cfg,
		logger:  logger,
		persist: persist,
		store:   store,
		boot:    session.NewBootstrapper(store, session.NewClientFactory(cfg.RequestTimeout), logger),
	}, nil
}

func (a *app) Close() error {
	return a.persist.Close()
}

// client returns an API client authenticated as the current session.
func (a *app) client() *client.Client {
	return client.NewWithTokenSource(a.cfg.APIURL, a.store.TokenSource()).WithTimeout(a.cfg.RequestTimeout)
}

// anonymous returns an API client without credentials.
func (a *app) anonymous() *client.Client {
	return client.New(a.cfg.APIURL, "").WithTimeout(a.cfg.RequestTimeout)
}

// withApp opens the session layer for the duration of fn.
func (c *cli) withApp(fn func(a *app) error) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck
	return fn(a)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "bchq",
		Short:         "Beauty Craft HQ from your terminal",
		Long:          "bchq signs you in to Beauty Craft HQ and shows your account and plan.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDashboard(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "backend URL (overrides BCHQ_API_URL)")

	root.AddCommand(
		newDashboardCmd(c),
		newLoginCmd(c),
		newSignupCmd(c),
		newGoogleCmd(c),
		newVerifyPhoneCmd(c),
		newLogoutCmd(c),
		newStatusCmd(c),
		newPlanCmd(c),
		newVersionCmd(c),
	)
	return root
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(c.out, "bchq "+version)
		},
	}
}
