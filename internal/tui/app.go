// Package tui is the bchq terminal dashboard. It renders the session store,
// revalidates it against the backend and edits the plan selection.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/beautycrafthq/bchq/internal/browser"
	"github.com/beautycrafthq/bchq/internal/route"
	"github.com/beautycrafthq/bchq/internal/session"
	"github.com/beautycrafthq/bchq/internal/storage"
)

type view int

const (
	viewAccount view = iota
	viewPlans
)

// Session is the part of the session store the dashboard reads and logs out of.
type Session interface {
	Snapshot() session.State
	Subscribe() (<-chan session.State, func())
	Token() string
	Logout() error
}

// Validator revalidates the session against the backend. Ensure runs once per
// base URL; Bootstrap always runs.
type Validator interface {
	Ensure(ctx context.Context, baseURL string) session.Outcome
	Bootstrap(ctx context.Context, baseURL string) session.Outcome
}

// Options wires the dashboard to the session layer.
type Options struct {
	Context   context.Context
	Session   Session
	Validator Validator
	Persist   storage.Store
	APIURL    string
	Version   string
	// OpenURL hands a URL to the user; defaults to browser.OpenOrCopy.
	OpenURL func(url string) browser.Handoff
}

// stateMsg carries a session change from the store subscription.
type stateMsg session.State

// outcomeMsg carries the result of a revalidation.
type outcomeMsg session.Outcome

// logoutMsg reports the end of a logout.
type logoutMsg struct{ err error }

// App is the root Bubbletea model.
type App struct {
	opts        Options
	view        view
	account     accountModel
	plans       plansModel
	spinner     spinner.Model
	state       session.State
	updates     <-chan session.State
	unsubscribe func()
	validating  bool
	status      string
	statusStyle func(...string) string
	width       int
	height      int
	frame       int
}

// NewApp creates the dashboard and subscribes it to the session store. Call
// Close once the program has exited.
func NewApp(opts Options) App {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.OpenURL == nil {
		opts.OpenURL = browser.OpenOrCopy
	}
	updates, unsubscribe := opts.Session.Subscribe()
	a := App{
		opts:        opts,
		account:     newAccountModel(),
		plans:       newPlansModel(opts.Persist),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		updates:     updates,
		unsubscribe: unsubscribe,
		statusStyle: metaStyle.Render,
	}
	a.setState(opts.Session.Snapshot())
	return a
}

// Close detaches the dashboard from the session store.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(shimmerTickCmd(), a.spinner.Tick, waitForState(a.updates), a.ensureValidated())
}

func waitForState(ch <-chan session.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

// ensureValidated is the startup check. It is skipped when the session was
// already validated against the same backend in this process.
func (a App) ensureValidated() tea.Cmd {
	if a.opts.Validator == nil {
		return nil
	}
	v, ctx, baseURL := a.opts.Validator, a.opts.Context, a.opts.APIURL
	return func() tea.Msg {
		return outcomeMsg(v.Ensure(ctx, baseURL))
	}
}

func (a App) revalidate() tea.Cmd {
	if a.opts.Validator == nil {
		return nil
	}
	v, ctx, baseURL := a.opts.Validator, a.opts.Context, a.opts.APIURL
	return func() tea.Msg {
		return outcomeMsg(v.Bootstrap(ctx, baseURL))
	}
}

func (a App) logout() tea.Cmd {
	s := a.opts.Session
	return func() tea.Msg {
		return logoutMsg{err: s.Logout()}
	}
}

func (a *App) setState(st session.State) {
	a.state = st
	a.account.state = st
	a.account.token = a.opts.Session.Token()
}

func (a *App) notify(msg string, style func(...string) string) {
	a.status = msg
	a.statusStyle = style
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case stateMsg:
		a.setState(session.State(msg))
		return a, waitForState(a.updates)

	case outcomeMsg:
		a.validating = false
		a.notifyOutcome(session.Outcome(msg))
		return a, nil

	case logoutMsg:
		if msg.err != nil {
			a.notify("Signed out here, but the saved session could not be erased: "+msg.err.Error(), errorStyle.Render)
		} else {
			a.notify("Signed out.", okStyle.Render)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) notifyOutcome(o session.Outcome) {
	switch o {
	case session.OutcomeValidated:
		a.notify("Session confirmed.", okStyle.Render)
	case session.OutcomeNoToken:
		a.notify("Not signed in.", metaStyle.Render)
	case session.OutcomeRejected:
		a.notify("Your session has expired. Run `bchq login` to sign in again.", errorStyle.Render)
	case session.OutcomeEmptyIdentity:
		a.notify("The server returned no account for this session.", warnStyle.Render)
	case session.OutcomeTransient:
		a.notify("Could not reach Beauty Craft HQ. Showing the saved session.", warnStyle.Render)
	case session.OutcomeSkipped:
		a.notify("A refresh is already running.", metaStyle.Render)
	case session.OutcomeStale:
		a.notify("Session changed during refresh.", metaStyle.Render)
	}
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Account):
		a.view = viewAccount
		return a, nil
	case key.Matches(msg, keys.Plans):
		a.view = viewPlans
		return a, nil
	case key.Matches(msg, keys.Revalidate):
		if a.validating {
			return a, nil
		}
		a.validating = true
		a.notify("", metaStyle.Render)
		return a, a.revalidate()
	case key.Matches(msg, keys.Logout):
		if !a.state.IsAuthenticated {
			return a, nil
		}
		return a, a.logout()
	}

	if a.view != viewPlans {
		return a, nil
	}
	switch {
	case key.Matches(msg, keys.Up):
		a.plans.move(-1)
	case key.Matches(msg, keys.Down):
		a.plans.move(1)
	case key.Matches(msg, keys.Cycle):
		a.plans.toggleCycle()
	case key.Matches(msg, keys.Select):
		if err := a.plans.save(); err != nil {
			a.notify(err.Error(), errorStyle.Render)
		} else {
			a.notify("Saved "+a.plans.selected.Plan+" ("+a.plans.selected.BillingCycle+").", okStyle.Render)
		}
	case key.Matches(msg, keys.Clear):
		if err := a.plans.clear(); err != nil {
			a.notify(err.Error(), errorStyle.Render)
		} else {
			a.notify("Plan selection cleared.", metaStyle.Render)
		}
	case key.Matches(msg, keys.Checkout):
		target := a.plans.checkoutTarget()
		if target == "" {
			a.notify("Select a paid plan first.", warnStyle.Render)
			return a, nil
		}
		u := route.Absolute(route.WebURL(a.opts.APIURL), target)
		switch a.opts.OpenURL(u) {
		case browser.Opened:
			a.notify("Opened checkout in your browser.", okStyle.Render)
		case browser.Copied:
			a.notify("Checkout link copied to clipboard.", okStyle.Render)
		default:
			a.notify("Open "+u, normalStyle.Render)
		}
	}
	return a, nil
}

func (a App) View() string {
	header := center(renderShimmerLogo(a.frame), a.width) + "\n"
	if u := a.state.User; a.state.IsAuthenticated && u != nil {
		header += center(metaStyle.Render(u.Email)+" "+PlanBadge(u.SubscriptionType), a.width)
	}

	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Account", viewAccount},
		{"2", "Plans", viewPlans},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewAccount:
		body = a.account.View()
		help = helpLine(keys.Plans, keys.Revalidate, keys.Logout, keys.Quit)
	case viewPlans:
		body = a.plans.View()
		help = helpLine(keys.Account, keys.Up, keys.Select, keys.Cycle, keys.Clear, keys.Checkout, keys.Quit)
	}

	if a.opts.Version != "" {
		help += "  " + metaStyle.Render(a.opts.Version)
	}

	statusLine := " "
	switch {
	case a.validating || a.state.IsLoading:
		statusLine += a.spinner.View() + " " + metaStyle.Render("checking session...")
	case a.status != "":
		statusLine += a.statusStyle(truncStr(a.status, a.width-2))
	}

	// Chrome: header(2) + tabs(1) + status(1) + help(1)
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, statusLine, help)
}
