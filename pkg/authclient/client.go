// Package authclient is a consumable controller for the authentication API.
// It keeps a cached projection of the signed-in user and notifies subscribers
// when that projection changes, so UIs can derive their state from one place.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// UserInfo is the user projection served by the /me endpoint.
type UserInfo struct {
	Email            string  `json:"email"`
	IsEmailConfirmed bool    `json:"isEmailConfirmed"`
	Picture          *string `json:"picture,omitempty"`
}

// State is the cached authentication projection.
// IsAuthenticated is true only when the last projection fetch succeeded and
// returned a user.
type State struct {
	User            *UserInfo
	IsLoading       bool
	IsAuthenticated bool
}

// LoginRequest carries the credentials for a password login.
type LoginRequest struct {
	Email                 string `json:"email"`
	Password              string `json:"password"`
	TwoFactorCode         string `json:"twoFactorCode,omitempty"`
	TwoFactorRecoveryCode string `json:"twoFactorRecoveryCode,omitempty"`
	RememberMe            bool   `json:"rememberMe"`
}

// APIError is a non-2xx response from the authentication API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("auth api: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// envelope mirrors the server's unified response structure.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

// Client caches the current session's user projection and exposes the
// authentication operations that mutate it. All methods are safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	state State
	// seq orders projection mutations: a response whose request was
	// superseded by a later one is discarded instead of applied.
	seq     uint64
	subs    map[int]func(State)
	nextSub int
}

// New creates a client for the authentication API at baseURL. When httpClient
// is nil a default client with a cookie jar is used; a caller-supplied client
// without a jar gets one attached, since the session rides on a cookie.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create cookie jar")
		}
		httpClient.Jar = jar
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		subs:       make(map[int]func(State)),
	}, nil
}

// State returns a snapshot of the cached projection.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Subscribe registers fn to be called with every state change. The returned
// function removes the subscription.
func (c *Client) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Refresh fetches the user projection. A refresh that was superseded by a
// later call (or by Logout) leaves the cache untouched when it completes.
func (c *Client) Refresh(ctx context.Context) error {
	id := c.begin()

	var user UserInfo
	status, err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &user)

	c.mu.Lock()
	if c.seq != id {
		c.mu.Unlock()

		return err
	}

	switch {
	case err == nil && status == http.StatusOK:
		c.state = State{User: &user, IsAuthenticated: true}
	case status == http.StatusUnauthorized:
		c.state = State{}
		err = nil
	default:
		// Transport failure or unexpected status: keep whatever user we had
		// but stop claiming a load is in flight.
		c.state.IsLoading = false
	}
	c.notifyLocked()

	return err
}

// Login authenticates with a password (and optional second factor) and then
// refreshes the cached projection.
func (c *Client) Login(ctx context.Context, req *LoginRequest) error {
	if _, err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, nil); err != nil {
		return err
	}

	return c.Refresh(ctx)
}

// Logout drops the cached projection first and then asks the server to revoke
// the session, so the UI never shows a stale signed-in user while the revoke
// round-trip is still in flight.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.seq++ // supersede any in-flight refresh
	c.state = State{}
	c.notifyLocked()

	_, err := c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)

	return err
}

// begin marks a new projection fetch as the latest one and flips the cache
// into its loading state.
func (c *Client) begin() uint64 {
	c.mu.Lock()
	c.seq++
	id := c.seq
	c.state.IsLoading = true
	c.notifyLocked()

	return id
}

// notifyLocked snapshots the state and subscribers, releases the lock and
// invokes the callbacks. Callers must hold c.mu; it is released on return.
func (c *Client) notifyLocked() {
	state := c.state
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// doJSON performs one API round-trip. A nil out discards the response data.
// Non-2xx responses are returned as *APIError alongside the status code.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	var env envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil && decodeErr != io.EOF {
		return resp.StatusCode, errors.Wrap(decodeErr, "failed to decode response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
		}

		return resp.StatusCode, apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, errors.Wrap(err, "failed to decode response data")
		}
	}

	return resp.StatusCode, nil
}
