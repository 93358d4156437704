package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/beautycrafthq/bchq/internal/logging"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/client"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

// Outcome describes how a bootstrap run ended.
type Outcome int

const (
	// OutcomeSkipped means another run was in flight, or Ensure had already
	// run for the base URL.
	OutcomeSkipped Outcome = iota
	// OutcomeNoToken means nothing was persisted; no request was made.
	OutcomeNoToken
	// OutcomeValidated means the backend confirmed the token and returned the user.
	OutcomeValidated
	// OutcomeEmptyIdentity means the backend accepted the token but returned no user.
	OutcomeEmptyIdentity
	// OutcomeRejected means the backend rejected the token; the session was cleared.
	OutcomeRejected
	// OutcomeTransient means the request failed for another reason; the
	// optimistic state was kept.
	OutcomeTransient
	// OutcomeStale means a login or logout happened while the request was in
	// flight, so its result was dropped.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoToken:
		return "no_token"
	case OutcomeValidated:
		return "validated"
	case OutcomeEmptyIdentity:
		return "empty_identity"
	case OutcomeRejected:
		return "rejected"
	case OutcomeTransient:
		return "transient"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// MeFetcher is the one backend call the bootstrapper needs.
type MeFetcher interface {
	GetMe(ctx context.Context) (*domain.User, error)
}

// ClientFactory builds a MeFetcher for baseURL authenticated with token.
type ClientFactory func(baseURL, token string) MeFetcher

// NewClientFactory returns a factory producing API clients with the given
// request timeout.
func NewClientFactory(timeout time.Duration) ClientFactory {
	return func(baseURL, token string) MeFetcher {
		return client.New(baseURL, token).WithTimeout(timeout)
	}
}

// Bootstrapper reconciles the persisted session with the backend.
type Bootstrapper struct {
	store     *Store
	newClient ClientFactory
	logger    *slog.Logger

	inFlight atomic.Bool

	mu     sync.Mutex
	ranFor string
	hasRun bool
}

// NewBootstrapper creates a bootstrapper writing into store.
func NewBootstrapper(store *Store, newClient ClientFactory, logger *slog.Logger) *Bootstrapper {
	return &Bootstrapper{
		store:     store,
		newClient: newClient,
		logger:    logging.OrDiscard(logger),
	}
}

// Ensure runs Bootstrap once per base URL: a second call with the same URL is
// skipped, a call with a different URL runs again.
func (b *Bootstrapper) Ensure(ctx context.Context, baseURL string) Outcome {
	b.mu.Lock()
	if b.hasRun && b.ranFor == baseURL {
		b.mu.Unlock()
		return OutcomeSkipped
	}
	b.mu.Unlock()

	out := b.Bootstrap(ctx, baseURL)
	if out != OutcomeSkipped {
		b.mu.Lock()
		b.hasRun = true
		b.ranFor = baseURL
		b.mu.Unlock()
	}
	return out
}

// Bootstrap validates the persisted token against baseURL. At most one run is
// in flight; concurrent callers return OutcomeSkipped at once.
//
// A persisted user is applied optimistically before the request so readers can
// render immediately. The backend's answer then either replaces it, clears the
// session (401), or is ignored (any other failure).
func (b *Bootstrapper) Bootstrap(ctx context.Context, baseURL string) Outcome {
	if !b.inFlight.CompareAndSwap(false, true) {
		b.logger.Debug("bootstrap already in flight")
		return OutcomeSkipped
	}
	defer b.inFlight.Store(false)

	gen := b.store.beginLoading()
	defer b.store.finishLoading()

	out := b.run(ctx, baseURL, gen)
	b.logger.Info("session bootstrap finished", "outcome", out.String())
	return out
}

func (b *Bootstrapper) run(ctx context.Context, baseURL string, gen uint64) Outcome {
	token, user, err := b.store.readPersisted()
	if err != nil {
		b.logger.Warn("read persisted session", "error", err)
		return OutcomeTransient
	}
	if token == "" {
		b.store.applyNoToken(gen)
		return OutcomeNoToken
	}
	if user != nil {
		b.store.applyOptimistic(*user, gen)
	}

	me, err := b.newClient(baseURL, token).GetMe(ctx)
	switch {
	case err == nil:
		if !b.store.applyValidated(*me, gen) {
			return OutcomeStale
		}
		return OutcomeValidated
	case errors.Is(err, client.ErrEmptyBody):
		if !b.store.applyEmptyIdentity(gen) {
			return OutcomeStale
		}
		return OutcomeEmptyIdentity
	case client.IsUnauthorized(err):
		if !b.store.applyRejected(gen) {
			return OutcomeStale
		}
		return OutcomeRejected
	default:
		b.logger.Warn("session validation failed; keeping local state", "error", err)
		return OutcomeTransient
	}
}

// The methods below are the bootstrapper's write-backs. Each one is dropped
// when gen no longer matches the store's generation.

func (s *Store) beginLoading() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = true
	s.publishLocked()
	return s.generation
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = false
	s.publishLocked()
}

func (s *Store) applyNoToken(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.clearLocked()
	s.publishLocked()
	return true
}

func (s *Store) applyOptimistic(user domain.User, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.state.User = &user
	s.state.IsAuthenticated = true
	s.publishLocked()
	return true
}

func (s *Store) applyValidated(user domain.User, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Info("dropping stale validation result")
		return false
	}
	s.state.User = &user
	s.state.IsAuthenticated = true
	if data, err := json.Marshal(user); err != nil {
		s.logger.Warn("marshal validated user", "error", err)
	} else if err := s.persist.Put(map[string]string{storage.KeyUser: string(data)}); err != nil {
		s.logger.Warn("persist validated user", "error", err)
	}
	s.publishLocked()
	return true
}

func (s *Store) applyEmptyIdentity(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.state.IsAuthenticated = false
	s.publishLocked()
	return true
}

func (s *Store) applyRejected(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.logger.Info("dropping stale rejection")
		return false
	}
	s.clearLocked()
	if err := s.persist.Delete(storage.KeyToken, storage.KeyUser); err != nil {
		s.logger.Warn("erase rejected session", "error", err)
	}
	s.publishLocked()
	return true
}
