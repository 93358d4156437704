// Package session holds the client's authentication state: who is signed in,
// whether that identity has been confirmed by the backend, and whether a
// confirmation is in flight.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/beautycrafthq/bchq/internal/logging"
	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

// ErrNoToken is returned by the token source when nobody is signed in.
var ErrNoToken = errors.New("session: no token")

// State is a point-in-time copy of the session.
type State struct {
	User            *domain.User
	IsAuthenticated bool
	IsLoading       bool
}

// Store is the single owner of session state. Every mutation is persisted
// before the mutating call returns and is published to subscribers.
type Store struct {
	persist storage.Store
	logger  *slog.Logger

	mu    sync.Mutex
	state State
	// generation changes on Login and Logout; background write-backs started
	// under an older generation are dropped.
	generation uint64
	subs       map[int]chan State
	nextSub    int
}

// NewStore creates a store and rehydrates it from persisted storage without
// touching the network. A persisted user is trusted optimistically only when a
// token is persisted with it.
func NewStore(persist storage.Store, logger *slog.Logger) *Store {
	s := &Store{
		persist: persist,
		logger:  logging.OrDiscard(logger),
		subs:    make(map[int]chan State),
	}
	token, user, err := s.readPersisted()
	if err != nil {
		s.logger.Warn("read persisted session", "error", err)
		return s
	}
	if token != "" && user != nil {
		s.state.User = user
		s.state.IsAuthenticated = true
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Token returns the persisted bearer token, or "" when there is none.
func (s *Store) Token() string {
	tok, err := storage.GetOptional(s.persist, storage.KeyToken)
	if err != nil {
		s.logger.Warn("read persisted token", "error", err)
		return ""
	}
	return tok
}

// TokenSource exposes the persisted token to HTTP clients.
func (s *Store) TokenSource() oauth2.TokenSource {
	return tokenSource{s: s}
}

type tokenSource struct{ s *Store }

func (ts tokenSource) Token() (*oauth2.Token, error) {
	tok := ts.s.Token()
	if tok == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// Login records user as signed in with token. The caller has already obtained
// both from the backend; nothing is validated here. The returned error reports
// a persistence failure only: the in-memory state is updated regardless.
func (s *Store) Login(user domain.User, token string) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session.Login: marshal user: %w", err)
	}

	s.mu.Lock()
	s.generation++
	s.state.User = &user
	s.state.IsAuthenticated = true
	perr := s.persist.Put(map[string]string{
		storage.KeyToken: token,
		storage.KeyUser:  string(data),
	})
	s.publishLocked()
	s.mu.Unlock()

	if perr != nil {
		return fmt.Errorf("session.Login: persist: %w", perr)
	}
	s.logger.Info("signed in", "user_id", user.ID)
	return nil
}

// Logout clears the session and erases the persisted token and user.
// Calling it while signed out is harmless.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.generation++
	s.clearLocked()
	perr := s.persist.Delete(storage.KeyToken, storage.KeyUser)
	s.publishLocked()
	s.mu.Unlock()

	if perr != nil {
		return fmt.Errorf("session.Logout: persist: %w", perr)
	}
	return nil
}

// UpdateUser merges patch into the current user, or builds the user from patch
// when there is none, and persists the result. IsAuthenticated is unchanged.
func (s *Store) UpdateUser(patch domain.UserPatch) error {
	s.mu.Lock()
	var merged domain.User
	if s.state.User != nil {
		merged = s.state.User.Apply(patch)
	} else {
		merged = patch.User()
	}
	s.state.User = &merged
	data, err := json.Marshal(merged)
	if err != nil {
		s.publishLocked()
		s.mu.Unlock()
		return fmt.Errorf("session.UpdateUser: marshal user: %w", err)
	}
	perr := s.persist.Put(map[string]string{storage.KeyUser: string(data)})
	s.publishLocked()
	s.mu.Unlock()

	if perr != nil {
		return fmt.Errorf("session.UpdateUser: persist: %w", perr)
	}
	return nil
}

// Subscribe returns a channel that receives the state after every change, and
// a function that ends the subscription. Slow readers only see the latest state.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

// readPersisted returns the persisted token and user. A user record without a
// token, or one that does not parse, is erased and reported as absent.
func (s *Store) readPersisted() (string, *domain.User, error) {
	token, err := storage.GetOptional(s.persist, storage.KeyToken)
	if err != nil {
		return "", nil, err
	}
	raw, err := storage.GetOptional(s.persist, storage.KeyUser)
	if err != nil {
		return token, nil, err
	}
	if raw == "" {
		return token, nil, nil
	}
	if token == "" {
		s.logger.Warn("discarding persisted user without token")
		s.discardUser()
		return "", nil, nil
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("discarding corrupted persisted user", "error", err)
		s.discardUser()
		return token, nil, nil
	}
	return token, &u, nil
}

func (s *Store) discardUser() {
	if err := s.persist.Delete(storage.KeyUser); err != nil {
		s.logger.Warn("erase persisted user", "error", err)
	}
}

func (s *Store) clearLocked() {
	s.state.User = nil
	s.state.IsAuthenticated = false
}

func (s *Store) snapshotLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		if u.SubscriptionEndsAt != nil {
			t := *u.SubscriptionEndsAt
			u.SubscriptionEndsAt = &t
		}
		st.User = &u
	}
	return st
}

// publishLocked hands the current state to every subscriber. Each channel
// holds one value; a pending stale value is replaced.
func (s *Store) publishLocked() {
	st := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}
