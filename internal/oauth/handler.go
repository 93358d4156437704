// Package oauth completes the browser sign-in round-trip: it receives the
// identity provider's redirect, trades the bearer token for the user record and
// decides where the user goes next.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beautycrafthq/bchq/internal/logging"
	"github.com/beautycrafthq/bchq/internal/plan"
	"github.com/beautycrafthq/bchq/internal/route"
	"github.com/beautycrafthq/bchq/internal/session"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

// ErrConsumed is returned when a handler is asked to handle a second callback.
var ErrConsumed = errors.New("oauth: callback already handled")

// User-facing messages of the Error state.
const (
	MsgMissingParams  = "Missing authentication parameters. Please try signing in again."
	MsgExchangeFailed = "Failed to complete sign-in. Please try again."
	MsgCancelled      = "Sign-in was cancelled."
)

// DefaultRedirectDelay lets listeners settle before the final navigation.
const DefaultRedirectDelay = 300 * time.Millisecond

// State is a step of the callback flow.
type State int

const (
	StateAwaitingParams State = iota
	StateExchanging
	StateError
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateAwaitingParams:
		return "awaiting_params"
	case StateExchanging:
		return "exchanging"
	case StateError:
		return "error"
	case StateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// Params are the query parameters of the provider's redirect.
type Params struct {
	Token                  string
	UserID                 string
	Error                  string
	NeedsPhoneVerification bool
}

// ParseParams extracts Params from a callback query. Values arrive decoded
// once by the query parser and are used as they are.
func ParseParams(q url.Values) Params {
	return Params{
		Token:                  q.Get("token"),
		UserID:                 q.Get("user_id"),
		Error:                  q.Get("error"),
		NeedsPhoneVerification: q.Get("needs_phone_verification") == "True",
	}
}

// Result is the terminal outcome of a callback.
type Result struct {
	State   State
	Target  string // route to navigate to when State is StateRedirecting
	Message string // user-facing text when State is StateError
}

// LogEntry is one line of the diagnostic trail.
type LogEntry struct {
	At      time.Time
	State   State
	Message string
}

// Session is the part of the session store the handler writes to.
type Session interface {
	Login(user domain.User, token string) error
}

// Config configures a Handler.
type Config struct {
	BaseURL       string
	RedirectDelay time.Duration
	Logger        *slog.Logger
}

// Handler runs one callback through AwaitingParams, Exchanging and one of the
// terminal states Error or Redirecting. A Handler is single-use.
type Handler struct {
	session   Session
	persist   storage.Store
	newClient session.ClientFactory
	baseURL   string
	delay     time.Duration
	logger    *slog.Logger
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error

	consumed atomic.Bool

	mu    sync.Mutex
	state State
	trail []LogEntry
}

// NewHandler creates a handler that logs users into sess.
func NewHandler(sess Session, persist storage.Store, newClient session.ClientFactory, cfg Config) *Handler {
	delay := cfg.RedirectDelay
	if delay < 0 {
		delay = 0
	}
	return &Handler{
		session:   sess,
		persist:   persist,
		newClient: newClient,
		baseURL:   cfg.BaseURL,
		delay:     delay,
		logger:    logging.OrDiscard(cfg.Logger),
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// State returns the current state.
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Trail returns the diagnostic log of every transition so far.
func (h *Handler) Trail() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]LogEntry(nil), h.trail...)
}

// Handle processes p. Cancelling ctx abandons the flow: no login happens if
// the exchange has not finished, and no navigation target is returned.
func (h *Handler) Handle(ctx context.Context, p Params) (Result, error) {
	if !h.consumed.CompareAndSwap(false, true) {
		return Result{}, ErrConsumed
	}
	h.transition(StateAwaitingParams, "callback received")

	if p.Error != "" {
		return h.fail(p.Error), nil
	}
	if p.Token == "" || p.UserID == "" {
		return h.fail(MsgMissingParams), nil
	}

	// Persist before the exchange so a restart mid-flight still finds the token.
	if err := h.persist.Put(map[string]string{storage.KeyToken: p.Token}); err != nil {
		h.logger.Warn("persist callback token", "error", err)
	}
	h.transition(StateExchanging, "fetching user for user_id "+p.UserID)

	me, err := h.newClient(h.baseURL, p.Token).GetMe(ctx)
	if ctx.Err() != nil {
		return h.fail(MsgCancelled), nil
	}
	if err != nil {
		h.logger.Warn("oauth exchange failed", "error", err)
		return h.fail(MsgExchangeFailed), nil
	}
	if strconv.FormatInt(me.ID, 10) != p.UserID {
		h.logger.Warn("callback user_id differs from /auth/me", "user_id", p.UserID, "me_id", me.ID)
	}

	if err := h.session.Login(*me, p.Token); err != nil {
		h.logger.Warn("persist session after oauth", "error", err)
	}
	h.record(StateExchanging, fmt.Sprintf("signed in as user %d", me.ID))

	if p.NeedsPhoneVerification {
		return h.redirect(route.VerifyPhone), nil
	}

	target := plan.NextRoute(h.persist)
	if err := h.sleep(ctx, h.delay); err != nil {
		return h.fail(MsgCancelled), nil
	}
	return h.redirect(target), nil
}

func (h *Handler) fail(msg string) Result {
	h.transition(StateError, msg)
	return Result{State: StateError, Message: msg}
}

func (h *Handler) redirect(target string) Result {
	h.transition(StateRedirecting, "navigating to "+target)
	return Result{State: StateRedirecting, Target: target}
}

func (h *Handler) transition(s State, msg string) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
	h.record(s, msg)
}

func (h *Handler) record(s State, msg string) {
	h.mu.Lock()
	h.trail = append(h.trail, LogEntry{At: h.now(), State: s, Message: msg})
	h.mu.Unlock()
	h.logger.Debug("oauth callback", "state", s.String(), "message", msg)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
