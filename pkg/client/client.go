// Package client is a Go client for the cookbook REST API. A Client sends
// requests on behalf of one Session, attaching its bearer token and
// refreshing it once when the server rejects it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pageza/cookbook/backend/internal/types"
)

type (
	Recipe        = types.RecipeDetail
	RecipeSummary = types.RecipeSummary
	RecipePage    = types.RecipePage
	RecipeInput   = types.RecipeRequest
	Comment       = types.CommentResponse
	User          = types.UserResponse
	Facets        = types.Facets
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
	session *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL, for example
// "http://localhost:8000/api/v1".
func New(baseURL string, session *Session, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if session == nil {
		session = NewSession(nil, SessionOptions{IdleTimeout: DefaultIdleTimeout})
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Session() *Session {
	return c.session
}

type authMode int

const (
	anonymous authMode = iota
	// optional sends the token when a session is active.
	optional
	required
)

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	auth   authMode
}

// do sends r and decodes a 2xx body into out. A request that carries a token
// counts as activity for the inactivity timer. A 401 on such a request
// triggers one shared refresh and one retry.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	var payload []byte
	if r.body != nil {
		var err error
		if payload, err = json.Marshal(r.body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	var token string
	if r.auth != anonymous {
		tokens, err := c.session.Tokens()
		if err != nil && r.auth == required {
			return err
		}
		token = tokens.Access
	}
	if token != "" {
		c.session.Touch()
	}

	resp, body, err := c.send(ctx, r, payload, token)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		token, err = c.session.refresh(ctx, token, c.exchange)
		if err != nil {
			return err
		}
		resp, body, err = c.send(ctx, r, payload, token)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			c.session.End(ReasonSessionExpired)
			return &SessionError{Reason: ReasonSessionExpired}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp, body)
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) send(ctx context.Context, r request, payload []byte, token string) (*http.Response, []byte, error) {
	u := *c.baseURL
	u.Path += r.path
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp, body, nil
}

// exchange calls the refresh endpoint directly so that it never recurses
// into another refresh.
func (c *Client) exchange(ctx context.Context, refresh string) (*Tokens, error) {
	r := request{method: http.MethodPost, path: "/auth/refresh", body: map[string]string{"refresh": refresh}}
	payload, err := json.Marshal(r.body)
	if err != nil {
		return nil, err
	}
	resp, body, err := c.send(ctx, r, payload, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp, body)
	}
	var t Tokens
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	return &t, nil
}

// Login authenticates and starts the session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
		User    User   `json:"user"`
	}
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.session.Start(Tokens{Access: resp.Access, Refresh: resp.Refresh}); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout revokes the refresh token and ends the session. The session ends
// even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	tokens, err := c.session.Tokens()
	if err != nil {
		return err
	}
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/logout",
		body:   map[string]string{"refresh": tokens.Refresh},
		auth:   required,
	}, nil)
	c.session.End(ReasonLogout)
	return err
}

func (c *Client) Register(ctx context.Context, email, firstName, lastName, password string) (*User, error) {
	var user User
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/users",
		body: map[string]string{
			"email":      email,
			"first_name": firstName,
			"last_name":  lastName,
			"password":   password,
		},
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/me", auth: required}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RequestPasswordReset always succeeds for well formed input, whether or not
// the account exists.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/password-reset",
		body:   map[string]string{"email": email},
	}, nil)
}
