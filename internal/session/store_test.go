package session

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/beautycrafthq/bchq/internal/storage"
	"github.com/beautycrafthq/bchq/pkg/domain"
)

func persistedUser(t *testing.T, s storage.Store) *domain.User {
	t.Helper()
	raw, err := s.Get(storage.KeyUser)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		t.Fatalf("persisted user does not parse: %v", err)
	}
	return &u
}

func persistedToken(t *testing.T, s storage.Store) string {
	t.Helper()
	tok, err := storage.GetOptional(s, storage.KeyToken)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	return tok
}

func seed(t *testing.T, s storage.Store, token string, u *domain.User) {
	t.Helper()
	values := map[string]string{}
	if token != "" {
		values[storage.KeyToken] = token
	}
	if u != nil {
		data, err := json.Marshal(u)
		if err != nil {
			t.Fatal(err)
		}
		values[storage.KeyUser] = string(data)
	}
	if err := s.Put(values); err != nil {
		t.Fatal(err)
	}
}

func TestLoginPersistsPairAndRehydrates(t *testing.T) {
	mem := storage.NewMemory()
	s := NewStore(mem, nil)

	ends := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	in := domain.User{ID: 2, Email: "b@example.com", SubscriptionType: "starter", SubscriptionEndsAt: &ends, IsActive: true}
	if err := s.Login(in, "T3"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	st := s.Snapshot()
	if !st.IsAuthenticated || st.User == nil || st.User.ID != 2 {
		t.Fatalf("state after login = %+v", st)
	}
	if got := persistedToken(t, mem); got != "T3" {
		t.Errorf("persisted token = %q, want %q", got, "T3")
	}
	got := persistedUser(t, mem)
	if got == nil || got.ID != in.ID || got.Email != in.Email || got.SubscriptionType != in.SubscriptionType ||
		got.SubscriptionEndsAt == nil || !got.SubscriptionEndsAt.Equal(ends) || !got.IsActive {
		t.Errorf("persisted user = %+v, want %+v", got, in)
	}

	fresh := NewStore(mem, nil)
	fst := fresh.Snapshot()
	if fst.User == nil || fst.User.ID != 2 {
		t.Fatalf("rehydrated user = %+v, want id 2", fst.User)
	}
	if !fst.IsAuthenticated {
		t.Error("rehydrated store should be optimistically authenticated")
	}
	if fst.IsLoading {
		t.Error("rehydration must not mark the store loading")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	mem := storage.NewMemory()
	s := NewStore(mem, nil)
	if err := s.Login(domain.User{ID: 1}, "T"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Logout(); err != nil {
			t.Fatalf("Logout() #%d error: %v", i+1, err)
		}
		st := s.Snapshot()
		if st.User != nil || st.IsAuthenticated {
			t.Errorf("after logout #%d state = %+v", i+1, st)
		}
	}
	if persistedToken(t, mem) != "" || persistedUser(t, mem) != nil {
		t.Error("logout should erase the persisted token and user")
	}
}

func TestUpdateUserMergesExisting(t *testing.T) {
	mem := storage.NewMemory()
	s := NewStore(mem, nil)
	if err := s.Login(domain.User{ID: 4, Email: "d@example.com", SubscriptionType: "free"}, "T"); err != nil {
		t.Fatal(err)
	}

	pro := "professional"
	if err := s.UpdateUser(domain.UserPatch{SubscriptionType: &pro}); err != nil {
		t.Fatalf("UpdateUser() error: %v", err)
	}
	st := s.Snapshot()
	if st.User.Email != "d@example.com" || st.User.SubscriptionType != "professional" {
		t.Errorf("merged user = %+v", st.User)
	}
	if !st.IsAuthenticated {
		t.Error("UpdateUser must not change IsAuthenticated")
	}
	if got := persistedUser(t, mem); got.SubscriptionType != "professional" {
		t.Errorf("persisted SubscriptionType = %q", got.SubscriptionType)
	}
}

func TestUpdateUserWithoutUserUsesPatch(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	id := int64(9)
	email := "n@example.com"
	if err := s.UpdateUser(domain.UserPatch{ID: &id, Email: &email}); err != nil {
		t.Fatalf("UpdateUser() error: %v", err)
	}
	st := s.Snapshot()
	if st.User == nil || st.User.ID != 9 || st.User.Email != email {
		t.Errorf("user = %+v, want built from patch", st.User)
	}
	if st.IsAuthenticated {
		t.Error("UpdateUser must not authenticate")
	}
}

func TestRehydrateDiscardsUserWithoutToken(t *testing.T) {
	mem := storage.NewMemory()
	seed(t, mem, "", &domain.User{ID: 3})

	s := NewStore(mem, nil)
	if st := s.Snapshot(); st.User != nil || st.IsAuthenticated {
		t.Errorf("state = %+v, want empty", st)
	}
	if persistedUser(t, mem) != nil {
		t.Error("orphaned user record should be erased")
	}
}

func TestRehydrateDiscardsCorruptedUser(t *testing.T) {
	mem := storage.NewMemory()
	if err := mem.Put(map[string]string{storage.KeyToken: "T", storage.KeyUser: "{broken"}); err != nil {
		t.Fatal(err)
	}

	s := NewStore(mem, nil)
	if st := s.Snapshot(); st.User != nil || st.IsAuthenticated {
		t.Errorf("state = %+v, want empty", st)
	}
	if _, err := mem.Get(storage.KeyUser); !errors.Is(err, storage.ErrNotFound) {
		t.Error("corrupted user record should be erased")
	}
	if persistedToken(t, mem) != "T" {
		t.Error("token should survive a corrupted user record")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	if err := s.Login(domain.User{ID: 1, Email: "a@example.com"}, "T"); err != nil {
		t.Fatal(err)
	}
	st := s.Snapshot()
	st.User.Email = "mutated"
	if s.Snapshot().User.Email != "a@example.com" {
		t.Error("mutating a snapshot changed the store")
	}
}

func TestSubscribeReceivesLatestState(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	ch, cancel := s.Subscribe()
	defer cancel()

	if err := s.Login(domain.User{ID: 1}, "T"); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(); err != nil {
		t.Fatal(err)
	}

	select {
	case st := <-ch:
		if st.IsAuthenticated {
			t.Errorf("got %+v, want the post-logout state", st)
		}
	case <-time.After(time.Second):
		t.Fatal("no state published")
	}

	cancel()
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	cancel() // second call is a no-op
	if err := s.Login(domain.User{ID: 2}, "T"); err != nil {
		t.Fatal(err)
	}
}

func TestTokenSource(t *testing.T) {
	s := NewStore(storage.NewMemory(), nil)
	if _, err := s.TokenSource().Token(); !errors.Is(err, ErrNoToken) {
		t.Errorf("Token() err = %v, want ErrNoToken", err)
	}
	if err := s.Login(domain.User{ID: 1}, "T5"); err != nil {
		t.Fatal(err)
	}
	tok, err := s.TokenSource().Token()
	if err != nil {
		t.Fatalf("Token() error: %v", err)
	}
	if tok.AccessToken != "T5" || tok.Type() != "Bearer" {
		t.Errorf("token = %+v", tok)
	}
}
