package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no session exists for the given id, either
// because it was never created or because it was torn down.
var ErrNotFound = errors.New("session not found")

// Session is the server-side replacement for the browser's key-value store:
// everything the SPA used to keep in localStorage lives here and is removed
// wholesale on teardown.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Roles     []string  `json:"roles"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a session for a fresh login or registration.
func New(token, userID, username string, roles []string) Session {
	return Session{
		ID:        uuid.NewString(),
		Token:     token,
		Roles:     roles,
		UserID:    userID,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists sessions between requests. Delete must remove every key
// belonging to the session in one go.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
