package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/beautycrafthq/bchq/internal/browser"
	"github.com/beautycrafthq/bchq/internal/plan"
	"github.com/beautycrafthq/bchq/internal/session"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

type fakeValidator struct {
	outcome     session.Outcome
	calls       int
	ensureCalls int
	ensuredFor  []string
}

func (f *fakeValidator) Ensure(_ context.Context, baseURL string) session.Outcome {
	f.ensureCalls++
	f.ensuredFor = append(f.ensuredFor, baseURL)
	return f.outcome
}

func (f *fakeValidator) Bootstrap(context.Context, string) session.Outcome {
	f.calls++
	return f.outcome
}

type failingLogout struct{ *session.Store }

func (failingLogout) Logout() error { return errors.New("disk full") }

func newTestApp(t *testing.T, signedIn bool) (App, *session.Store, storage.Store) {
	t.Helper()
	mem := storage.NewMemory()
	store := session.NewStore(mem, nil)
	if signedIn {
		u := domain.User{ID: 7, Email: "mia@example.com", FirstName: "Mia", SubscriptionType: "starter", IsActive: true}
		if err := store.Login(u, "T7"); err != nil {
			t.Fatal(err)
		}
	}
	a := NewApp(Options{Session: store, Persist: mem, APIURL: "https://api.beautycrafthq.com"})
	t.Cleanup(a.Close)
	a.width = 80
	a.height = 30
	return a, store, mem
}

func press(t *testing.T, a App, k string) (App, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

func TestAppTabSwitching(t *testing.T) {
	a, _, _ := newTestApp(t, true)
	a, _ = press(t, a, "2")
	if a.view != viewPlans {
		t.Errorf("after '2': view = %d, want viewPlans", a.view)
	}
	a, _ = press(t, a, "1")
	if a.view != viewAccount {
		t.Errorf("after '1': view = %d, want viewAccount", a.view)
	}
}

func TestAppQuit(t *testing.T) {
	a, _, _ := newTestApp(t, false)
	_, cmd := press(t, a, "q")
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAppShowsSignedInUser(t *testing.T) {
	a, _, _ := newTestApp(t, true)
	out := a.View()
	for _, want := range []string{"mia@example.com", "Mia", "[starter]"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestAppFollowsSessionChanges(t *testing.T) {
	a, store, _ := newTestApp(t, true)

	if err := store.Logout(); err != nil {
		t.Fatal(err)
	}
	msg := waitForState(a.updates)()
	model, cmd := a.Update(msg)
	a = model.(App)
	if a.state.IsAuthenticated {
		t.Error("dashboard should observe the logout")
	}
	if cmd == nil {
		t.Error("expected the subscription to be re-armed")
	}
	if !strings.Contains(a.View(), "SIGNED OUT") {
		t.Error("View() should show the signed-out screen")
	}
}

func TestAppRevalidate(t *testing.T) {
	tests := []struct {
		outcome session.Outcome
		want    string
	}{
		{session.OutcomeValidated, "Session confirmed."},
		{session.OutcomeRejected, "expired"},
		{session.OutcomeTransient, "Could not reach"},
	}
	for _, tc := range tests {
		t.Run(tc.outcome.String(), func(t *testing.T) {
			a, _, _ := newTestApp(t, true)
			v := &fakeValidator{outcome: tc.outcome}
			a.opts.Validator = v

			a, cmd := press(t, a, "r")
			if !a.validating || cmd == nil {
				t.Fatal("expected a revalidation to start")
			}
			if !strings.Contains(a.View(), "checking session") {
				t.Error("expected the spinner line while validating")
			}

			// A second press while in flight is ignored.
			if _, again := press(t, a, "r"); again != nil {
				t.Error("expected no second revalidation while one is running")
			}

			model, _ := a.Update(cmd())
			a = model.(App)
			if a.validating {
				t.Error("validating should clear after the outcome")
			}
			if v.calls != 1 {
				t.Errorf("Bootstrap calls = %d, want 1", v.calls)
			}
			if !strings.Contains(a.status, tc.want) {
				t.Errorf("status = %q, want to contain %q", a.status, tc.want)
			}
		})
	}
}

func TestAppStartupValidatesOncePerBackend(t *testing.T) {
	a, _, _ := newTestApp(t, true)
	v := &fakeValidator{outcome: session.OutcomeValidated}
	a.opts.Validator = v

	if a.Init() == nil {
		t.Fatal("Init() returned no command")
	}
	model, _ := a.Update(a.ensureValidated()())
	a = model.(App)
	if v.ensureCalls != 1 || v.calls != 0 {
		t.Errorf("Ensure calls = %d, Bootstrap calls = %d, want 1 and 0", v.ensureCalls, v.calls)
	}
	if len(v.ensuredFor) != 1 || v.ensuredFor[0] != "https://api.beautycrafthq.com" {
		t.Errorf("ensured for %v", v.ensuredFor)
	}
	if a.status != "Session confirmed." {
		t.Errorf("status = %q", a.status)
	}

	// The refresh key always goes to the backend.
	a, cmd := press(t, a, "r")
	a.Update(cmd())
	if v.calls != 1 || v.ensureCalls != 1 {
		t.Errorf("after refresh: Ensure calls = %d, Bootstrap calls = %d, want 1 and 1", v.ensureCalls, v.calls)
	}
}

func TestAppLogout(t *testing.T) {
	a, store, _ := newTestApp(t, true)
	a, cmd := press(t, a, "L")
	if cmd == nil {
		t.Fatal("expected logout command")
	}
	model, _ := a.Update(cmd())
	a = model.(App)
	if store.Snapshot().IsAuthenticated {
		t.Error("store should be signed out")
	}
	if a.status != "Signed out." {
		t.Errorf("status = %q", a.status)
	}
}

func TestAppLogoutFailureIsReported(t *testing.T) {
	a, store, _ := newTestApp(t, true)
	a.opts.Session = failingLogout{store}
	a, cmd := press(t, a, "L")
	model, _ := a.Update(cmd())
	a = model.(App)
	if !strings.Contains(a.status, "disk full") {
		t.Errorf("status = %q, want the persistence error", a.status)
	}
}

func TestAppLogoutIgnoredWhenSignedOut(t *testing.T) {
	a, _, _ := newTestApp(t, false)
	if _, cmd := press(t, a, "L"); cmd != nil {
		t.Error("expected no logout command when signed out")
	}
}

func TestAppPlanSelection(t *testing.T) {
	a, _, mem := newTestApp(t, true)
	a, _ = press(t, a, "2")
	a, _ = press(t, a, "j")
	a, _ = press(t, a, "j") // professional
	a, _ = press(t, a, "c") // yearly
	a, _ = press(t, a, "enter")

	sel, ok, err := plan.Load(mem)
	if err != nil || !ok {
		t.Fatalf("plan.Load() = %v, %v, %v", sel, ok, err)
	}
	if sel.Plan != domain.PlanProfessional || sel.BillingCycle != domain.BillingYearly {
		t.Errorf("saved selection = %+v", sel)
	}

	var opened string
	a.opts.OpenURL = func(u string) browser.Handoff {
		opened = u
		return browser.Copied
	}
	a, _ = press(t, a, "o")
	want := "https://beautycrafthq.com/subscribe?billing_cycle=yearly&plan=professional"
	if opened != want {
		t.Errorf("opened %q, want %q", opened, want)
	}
	if !strings.Contains(a.status, "copied") {
		t.Errorf("status = %q", a.status)
	}

	a, _ = press(t, a, "x")
	if _, ok, _ := plan.Load(mem); ok { //nolint:errcheck
		t.Error("selection should be cleared")
	}
}

func TestAppCheckoutNeedsPaidPlan(t *testing.T) {
	a, _, _ := newTestApp(t, true)
	a, _ = press(t, a, "2")
	a, _ = press(t, a, "enter") // free
	called := false
	a.opts.OpenURL = func(string) browser.Handoff { called = true; return browser.Opened }
	a, _ = press(t, a, "o")
	if called {
		t.Error("checkout should not open for the free plan")
	}
	if !strings.Contains(a.status, "paid plan") {
		t.Errorf("status = %q", a.status)
	}
}

func TestAppPlanKeysIgnoredOnAccountTab(t *testing.T) {
	a, _, mem := newTestApp(t, true)
	a, _ = press(t, a, "enter")
	if _, ok, _ := plan.Load(mem); ok { //nolint:errcheck
		t.Error("enter on the account tab must not save a plan")
	}
}

func TestAppViewFitsHeight(t *testing.T) {
	a, _, _ := newTestApp(t, true)
	a.height = 8
	if lines := strings.Count(a.View(), "\n") + 1; lines > 8 {
		t.Errorf("View() has %d lines, want <= 8", lines)
	}
}

func TestAccountTokenExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newAccountModel()
	m.now = func() time.Time { return now }
	m.state = session.State{IsAuthenticated: true, User: &domain.User{ID: 1, Email: "a@b.c", NeedsSubscription: true}}
	// {"exp": 1767232800} is 2026-01-01T02:00:00Z.
	m.token = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJleHAiOjE3NjcyMzI4MDB9.c2ln"

	out := m.View()
	if !strings.Contains(out, "in 2h") {
		t.Errorf("View() missing token expiry:\n%s", out)
	}
	if !strings.Contains(out, "subscription is required") {
		t.Error("View() should prompt for a subscription")
	}
}
