package middleware

import (
	"errors"

	"storefront-service/internal/auth"
	"storefront-service/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionKey is the gin context key the resolved session is stored under.
const SessionKey = "session"

// CookieName carries the session id between the SPA and this service.
const CookieName = "storefront_session"

// WorkflowDropper releases per-session cart state. Session teardown must
// reach it so no workflow outlives its session.
type WorkflowDropper interface {
	Drop(sessionID string)
}

type Mid struct {
	keys     *auth.Keys
	sessions session.Store
	carts    WorkflowDropper
}

func NewMid(keys *auth.Keys, sessions session.Store, carts WorkflowDropper) (*Mid, error) {
	if keys == nil {
		return nil, errors.New("auth keys are nil")
	}
	if sessions == nil {
		return nil, errors.New("session store is nil")
	}
	if carts == nil {
		return nil, errors.New("cart registry is nil")
	}
	return &Mid{keys: keys, sessions: sessions, carts: carts}, nil
}

// SessionFromContext returns the session placed by Authentication, or nil.
func SessionFromContext(c *gin.Context) *session.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	sess, ok := v.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
