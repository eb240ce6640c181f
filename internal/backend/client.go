package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/consul"
	"storefront-service/internal/session"
	"storefront-service/pkg/logkey"

	consulapi "github.com/hashicorp/consul/api"
)

// Resolver yields the base URL of the backend REST API for the next call.
type Resolver func() (string, error)

// ConsulResolver discovers the backend service through consul on every call,
// so instances can come and go without restarting this service.
func ConsulResolver(client *consulapi.Client, serviceName string) Resolver {
	return func() (string, error) {
		address, port, err := consul.GetServiceAddress(client, serviceName)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("http://%s:%d", address, port), nil
	}
}

// StaticResolver pins the backend to a fixed URL. Used in development and
// tests.
func StaticResolver(baseURL string) Resolver {
	return func() (string, error) { return baseURL, nil }
}

// Client wraps every outgoing call to the backend: it resolves the base URL,
// attaches the session's bearer token after a local expiry check, and maps
// 401/403/404 responses to the globally handled sentinel errors.
type Client struct {
	resolve  Resolver
	http     *http.Client
	sessions session.Store
	teardown func(sessionID string)
}

func NewClient(resolve Resolver, sessions session.Store) *Client {
	return &Client{
		resolve:  resolve,
		http:     &http.Client{Timeout: 30 * time.Second},
		sessions: sessions,
	}
}

// OnSessionTeardown registers a hook invoked with the session id whenever the
// client tears a session down over a stale token. The cart registry hooks in
// here so no workflow outlives its session.
func (c *Client) OnSessionTeardown(fn func(sessionID string)) {
	c.teardown = fn
}

type callConfig struct {
	suppressGlobal bool
}

// CallOption tweaks a single request.
type CallOption func(*callConfig)

// SuppressGlobalErrors keeps 401/403/404 from being mapped to the global
// sentinels so the call site can show them inline. The auth endpoints use
// this: a failed login must not bounce the user to the unauthorized page.
func SuppressGlobalErrors() CallOption {
	return func(c *callConfig) { c.suppressGlobal = true }
}

// authorize attaches the bearer header when the session holds a token whose
// expiry claim is still in the future. A stale or undecodable token tears
// the whole session down and the request goes out unauthenticated.
func (c *Client) authorize(ctx context.Context, req *http.Request, sess *session.Session) {
	if sess == nil || sess.Token == "" {
		return
	}
	exp, ok := auth.TokenExpiry(sess.Token)
	if ok && time.Now().Before(exp) {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
		return
	}

	slog.Info("session token expired, tearing session down", slog.String(logkey.UserID, sess.UserID))
	if err := c.sessions.Delete(ctx, sess.ID); err != nil {
		slog.Error("failed to delete expired session", slog.String(logkey.ERROR, err.Error()))
	}
	if c.teardown != nil {
		c.teardown(sess.ID)
	}
	sess.Token = ""
	sess.Roles = nil
	sess.UserID = ""
	sess.Username = ""
}

func (c *Client) do(ctx context.Context, sess *session.Session, method, path string,
	query url.Values, body any, out any, opts ...CallOption) error {

	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	base, err := c.resolve()
	if err != nil {
		return fmt.Errorf("resolving backend address: %w", err)
	}
	fullURL := base + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(ctx, req, sess)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.mapError(resp, method, path, cfg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response of %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) mapError(resp *http.Response, method, path string, cfg callConfig) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if !cfg.suppressGlobal {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
		case http.StatusNotFound:
			return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
}

// stream issues a GET whose body is handed to the caller unread, for binary
// downloads. The caller owns closing the body.
func (c *Client) stream(ctx context.Context, sess *session.Session, path string) (io.ReadCloser, string, error) {
	base, err := c.resolve()
	if err != nil {
		return nil, "", fmt.Errorf("resolving backend address: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	c.authorize(ctx, req, sess)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("calling backend GET %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		return nil, "", c.mapError(resp, http.MethodGet, path, callConfig{})
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}
