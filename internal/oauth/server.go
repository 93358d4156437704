package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/beautycrafthq/bchq/internal/logging"
)

// DefaultCallbackTimeout bounds how long Wait blocks for the browser.
const DefaultCallbackTimeout = 2 * time.Minute

// CallbackServer is an ephemeral localhost endpoint the provider redirects the
// browser to. The path carries a random nonce; requests without it are refused.
// Only the first callback is accepted.
type CallbackServer struct {
	listener net.Listener
	srv      *http.Server
	nonce    string
	params   chan Params
	errCh    chan error
	logger   *slog.Logger

	done atomic.Bool
}

// Listen starts a callback server on a random 127.0.0.1 port.
func Listen(logger *slog.Logger) (*CallbackServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}

	s := &CallbackServer{
		listener: listener,
		nonce:    uuid.NewString(),
		params:   make(chan Params, 1),
		errCh:    make(chan error, 1),
		logger:   logging.OrDiscard(logger),
	}

	r := chi.NewRouter()
	r.Get("/auth/callback/{nonce}", s.handleCallback)
	s.srv = &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := s.srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errCh <- err:
			default:
			}
		}
	}()
	return s, nil
}

// RedirectURI is the URL to hand to the provider as redirect_uri.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://%s/auth/callback/%s", s.listener.Addr().String(), s.nonce)
}

// Wait blocks until the first valid callback arrives, ctx is done, or timeout
// elapses.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (Params, error) {
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case p := <-s.params:
		return p, nil
	case err := <-s.errCh:
		return Params{}, fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		return Params{}, ctx.Err()
	case <-t.C:
		return Params{}, fmt.Errorf("sign-in timed out: no callback received within %s", timeout)
	}
}

// Close shuts the server down.
func (s *CallbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "nonce") != s.nonce {
		s.logger.Warn("callback with unknown nonce", "remote", r.RemoteAddr)
		http.Error(w, "invalid callback", http.StatusForbidden)
		return
	}

	if !s.done.CompareAndSwap(false, true) {
		http.Error(w, "sign-in already completed", http.StatusConflict)
		return
	}

	p := ParseParams(r.URL.Query())
	s.params <- p

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if p.Error != "" {
		fmt.Fprint(w, callbackFailedHTML) //nolint:errcheck
		return
	}
	fmt.Fprint(w, callbackHTML) //nolint:errcheck
}

const callbackHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Beauty Craft HQ</title>
<style>
body{background:#fdf6f3;color:#3b2a2a;font-family:-apple-system,Segoe UI,sans-serif;
height:100vh;display:flex;align-items:center;justify-content:center;margin:0}
.card{text-align:center}.logo{font-size:22px;font-weight:700;letter-spacing:6px;color:#b5536b}
.msg{margin-top:16px;font-size:14px}.sub{margin-top:6px;font-size:12px;color:#8a7474}
</style></head>
<body><div class="card">
<div class="logo">BEAUTY CRAFT HQ</div>
<div class="msg">Signed in</div>
<div class="sub">You can close this tab and return to your terminal.</div>
</div></body>
</html>`

const callbackFailedHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>Beauty Craft HQ</title></head>
<body style="font-family:-apple-system,Segoe UI,sans-serif;text-align:center;padding-top:20vh">
<p><strong>Sign-in did not complete.</strong></p>
<p>Return to your terminal for details.</p>
</body>
</html>`
