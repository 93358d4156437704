package oauth

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCallbackServerDeliversParams(t *testing.T) {
	s, err := Listen(nil)
	if err != nil {
		t.Fatalf("Listen() error: %v", err)
	}
	defer s.Close() //nolint:errcheck

	if !strings.HasPrefix(s.RedirectURI(), "http://127.0.0.1:") {
		t.Errorf("RedirectURI() = %q", s.RedirectURI())
	}

	resp, err := http.Get(s.RedirectURI() + "?token=T4&user_id=9&needs_phone_verification=True")
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	body, _ := io.ReadAll(resp.Body) //nolint:errcheck
	resp.Body.Close()                //nolint:errcheck
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Signed in") {
		t.Errorf("callback response = %d %q", resp.StatusCode, body)
	}

	p, err := s.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait() error: %v", err)
	}
	if p.Token != "T4" || p.UserID != "9" || !p.NeedsPhoneVerification {
		t.Errorf("params = %+v", p)
	}

	second, err := http.Get(s.RedirectURI() + "?token=T5&user_id=9")
	if err != nil {
		t.Fatal(err)
	}
	second.Body.Close() //nolint:errcheck
	if second.StatusCode != http.StatusConflict {
		t.Errorf("second callback status = %d, want 409", second.StatusCode)
	}
}

func TestCallbackServerAcceptsOnlyFirstCallback(t *testing.T) {
	s, err := Listen(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close() //nolint:errcheck

	statuses := make([]int, 0, 3)
	for _, tok := range []string{"T1", "T2", "T3"} {
		resp, err := http.Get(s.RedirectURI() + "?token=" + tok + "&user_id=9")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close() //nolint:errcheck
		statuses = append(statuses, resp.StatusCode)

		if tok == "T1" {
			p, err := s.Wait(context.Background(), time.Second)
			if err != nil || p.Token != "T1" {
				t.Fatalf("Wait() = %+v, %v, want the first callback", p, err)
			}
		}
	}
	want := []int{http.StatusOK, http.StatusConflict, http.StatusConflict}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("callback %d status = %d, want %d", i+1, statuses[i], want[i])
		}
	}

	if p, err := s.Wait(context.Background(), 50*time.Millisecond); err == nil {
		t.Errorf("Wait() after the first callback = %+v, want timeout", p)
	}
}

func TestCallbackServerRejectsWrongNonce(t *testing.T) {
	s, err := Listen(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close() //nolint:errcheck

	base := strings.TrimSuffix(s.RedirectURI(), s.nonce)
	resp, err := http.Get(base + "not-the-nonce?token=T4&user_id=9")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	if _, err := s.Wait(context.Background(), 50*time.Millisecond); err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Wait() err = %v, want timeout", err)
	}
}

func TestCallbackServerWaitCancelled(t *testing.T) {
	s, err := Listen(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Wait(ctx, time.Minute); err != context.Canceled {
		t.Errorf("Wait() err = %v, want context.Canceled", err)
	}
}
