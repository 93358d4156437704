package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/beautycrafthq/bchq/pkg/domain"
)

// ErrEmptyBody is returned when a successful response carries no JSON document.
var ErrEmptyBody = errors.New("empty response body")

const defaultTimeout = 30 * time.Second

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResponse is the body returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type,omitempty"`
	User        *domain.User `json:"user"`
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Client is the Beauty Craft HQ API client.
type Client struct {
	baseURL    string
	source     oauth2.TokenSource
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a client that authenticates with a fixed bearer token.
// An empty token creates an anonymous client.
func New(baseURL, token string) *Client {
	var ts oauth2.TokenSource
	if token != "" {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	}
	return NewWithTokenSource(baseURL, ts)
}

// NewWithTokenSource creates a client that asks ts for the bearer token on every
// request. A nil ts creates an anonymous client.
func NewWithTokenSource(baseURL string, ts oauth2.TokenSource) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		source:  ts,
		timeout: defaultTimeout,
	}
	c.httpClient = c.buildHTTPClient()
	return c
}

func (c *Client) buildHTTPClient() *http.Client {
	hc := &http.Client{Timeout: c.timeout}
	if c.source != nil {
		hc.Transport = &oauth2.Transport{Source: c.source, Base: http.DefaultTransport}
	}
	return hc
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := New(c.baseURL, token)
	return cp.WithTimeout(c.timeout)
}

// WithTimeout returns a copy of c whose requests time out after d.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d <= 0 {
		d = defaultTimeout
	}
	cp := *c
	cp.timeout = d
	cp.httpClient = cp.buildHTTPClient()
	return &cp
}

// BaseURL returns the API base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetMe returns the authenticated user's record.
// A 2xx response without a body yields ErrEmptyBody.
func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, fmt.Errorf("client.GetMe: %w", err)
	}
	return &u, nil
}

// Login exchanges credentials for an access token and the user record.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, fmt.Errorf("client.Login: %w", ErrEmptyBody)
	}
	return &resp, nil
}

// Register creates a new account. The returned user is nil when the backend
// acknowledges without a body.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	var u domain.User
	if err := c.post(ctx, "/auth/register", req, &u); err != nil {
		if errors.Is(err, ErrEmptyBody) {
			return nil, nil
		}
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &u, nil
}

// RequestPhoneVerification asks the backend to text a code to phone.
func (c *Client) RequestPhoneVerification(ctx context.Context, phone string) error {
	body := map[string]string{"phone_number": phone}
	if err := c.post(ctx, "/auth/request-phone-verification", body, nil); err != nil {
		return fmt.Errorf("client.RequestPhoneVerification: %w", err)
	}
	return nil
}

// VerifyPhone submits the code received on phone.
func (c *Client) VerifyPhone(ctx context.Context, phone, code string) error {
	body := map[string]string{"phone_number": phone, "code": code}
	if err := c.post(ctx, "/auth/verify-phone", body, nil); err != nil {
		return fmt.Errorf("client.VerifyPhone: %w", err)
	}
	return nil
}

// GoogleLoginURL returns the browser entry point of the Google sign-in flow.
// It is opened in a browser, never requested by the client itself.
func (c *Client) GoogleLoginURL(redirectURI string) string {
	params := url.Values{}
	params.Set("redirect_uri", redirectURI)
	return c.baseURL + "/auth/google/login?" + params.Encode()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max body
	if resp.StatusCode >= 400 {
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	if readErr != nil {
		return fmt.Errorf("read response: %w", readErr)
	}

	if out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyBody
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the human-readable message from an error body.
// FastAPI-style {"detail": "..."} and {"detail": [{"msg": "..."}]} are
// recognised, as are {"error": "..."} and {"message": "..."}. Any other JSON
// object yields "", and a non-JSON body is returned as text.
func errorMessage(body []byte) string {
	var apiErr struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) != nil {
		return strings.TrimSpace(string(body))
	}
	if len(apiErr.Detail) > 0 {
		var s string
		if json.Unmarshal(apiErr.Detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(apiErr.Detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if apiErr.Error != "" {
		return apiErr.Error
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return ""
}
