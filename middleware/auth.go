package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"storefront-service/internal/auth"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	NotFoundPath     = "/notfound"
)

// Authentication resolves the session cookie, verifies the token's signature
// and expiry, and injects the claims into the request context. An absent or
// unusable session redirects to the login page; a session whose token no
// longer validates is torn down first.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		sessionID, err := c.Cookie(CookieName)
		if err != nil || sessionID == "" {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		sess, err := m.sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			slog.Error("session lookup failed", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		claims, err := m.keys.ValidateToken(sess.Token)
		if err != nil {
			slog.Error("token validation failed", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			if derr := m.sessions.Delete(c.Request.Context(), sess.ID); derr != nil {
				slog.Error("failed to delete stale session", slog.String(logkey.TraceID, traceId),
					slog.String(logkey.ERROR, derr.Error()))
			}
			m.carts.Drop(sess.ID)
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		ctx := context.WithValue(c.Request.Context(), auth.ClaimsKey, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Set(SessionKey, &sess)
		c.Next()
	}
}

// Authorize gates a handler on role membership. The decision is recomputed
// on every request: no credential redirects to login, a credential with no
// roles or without any of the allowed roles redirects to the unauthorized
// page, otherwise the wrapped handler runs.
func (m *Mid) Authorize(next gin.HandlerFunc, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFromContext(c)
		if sess == nil || sess.Token == "" {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		roles := auth.RolesFromToken(sess.Token)
		if len(roles) == 0 {
			c.Redirect(http.StatusSeeOther, UnauthorizedPath)
			c.Abort()
			return
		}

		if len(allowedRoles) > 0 && !anyRole(roles, allowedRoles) {
			c.Redirect(http.StatusSeeOther, UnauthorizedPath)
			c.Abort()
			return
		}

		next(c)
	}
}

// AuthorizeCapability gates a handler on a resolved capability instead of a
// raw role list, for routes whose access rule is a permission rather than a
// role name.
func (m *Mid) AuthorizeCapability(next gin.HandlerFunc, capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFromContext(c)
		if sess == nil || sess.Token == "" {
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
			return
		}

		roles := auth.RolesFromToken(sess.Token)
		if !auth.Capabilities(roles).Has(capability) {
			c.Redirect(http.StatusSeeOther, UnauthorizedPath)
			c.Abort()
			return
		}

		next(c)
	}
}

func anyRole(roles, allowed []string) bool {
	for _, role := range roles {
		for _, a := range allowed {
			if role == a {
				return true
			}
		}
	}
	return false
}
