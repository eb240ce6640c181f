package backend

import (
	"context"
	"net/http"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuthResponse is what the backend auth endpoints return on success.
type AuthResponse struct {
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

// Login authenticates against the backend. Global error handling is
// suppressed so a 401 surfaces inline instead of redirecting.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, nil, http.MethodPost, "/auth/login", nil, creds, &resp, SuppressGlobalErrors())
	return resp, err
}

// Register creates an account. Same inline error semantics as Login.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, nil, http.MethodPost, "/auth/register", nil, reg, &resp, SuppressGlobalErrors())
	return resp, err
}
