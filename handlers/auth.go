package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"storefront-service/internal/auth"
	"storefront-service/internal/backend"
	"storefront-service/internal/session"
	"storefront-service/middleware"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

const sessionCookieMaxAge = 12 * 60 * 60 // seconds

// Login authenticates against the backend and initializes the session. A
// backend rejection surfaces inline here instead of triggering the global
// unauthorized redirect.
func (h *Handler) Login(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var creds backend.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		slog.Error("invalid login request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if creds.Username == "" || creds.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	resp, err := h.client.Login(c.Request.Context(), creds)
	if err != nil {
		var sErr *backend.StatusError
		if errors.As(err, &sErr) && (sErr.StatusCode == http.StatusUnauthorized || sErr.StatusCode == http.StatusForbidden) {
			slog.Info("login rejected", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
		respondBackendError(c, traceId, err)
		return
	}

	h.startSession(c, traceId, resp, creds.Username)
}

// Register creates an account and starts a session right away, like the SPA
// did after registration.
func (h *Handler) Register(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var reg backend.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		slog.Error("invalid registration request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if reg.Username == "" || reg.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	resp, err := h.client.Register(c.Request.Context(), reg)
	if err != nil {
		var sErr *backend.StatusError
		if errors.As(err, &sErr) && sErr.StatusCode < http.StatusInternalServerError {
			c.AbortWithStatusJSON(sErr.StatusCode, gin.H{"error": "Registration failed"})
			return
		}
		respondBackendError(c, traceId, err)
		return
	}

	h.startSession(c, traceId, resp, reg.Username)
}

func (h *Handler) startSession(c *gin.Context, traceId string, resp backend.AuthResponse, username string) {
	roles := auth.RolesFromToken(resp.Token)
	sess := session.New(resp.Token, strconv.FormatInt(resp.ID, 10), username, roles)

	if err := h.sessions.Create(c.Request.Context(), sess); err != nil {
		slog.Error("failed to store session", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
		return
	}

	c.SetCookie(middleware.CookieName, sess.ID, sessionCookieMaxAge, "/", "", false, true)

	slog.Info("session started", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.UserID, sess.UserID))
	c.JSON(http.StatusOK, gin.H{
		"user_id":  resp.ID,
		"username": username,
		"roles":    roles,
	})
}

// Logout tears the session down: the stored keys go away wholesale and any
// pending cart debounce tasks are abandoned.
func (h *Handler) Logout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	sess := middleware.SessionFromContext(c)
	if sess != nil {
		if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
			slog.Error("failed to delete session", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
			return
		}
		h.carts.Drop(sess.ID)
	}

	c.SetCookie(middleware.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Navigation returns the session's roles and resolved capabilities so menus
// and screens derive their visibility from one permission set.
func (h *Handler) Navigation(c *gin.Context) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	roles := auth.RolesFromToken(sess.Token)
	caps := auth.Capabilities(roles)
	c.JSON(http.StatusOK, gin.H{
		"username":     sess.Username,
		"roles":        roles,
		"capabilities": caps.List(),
	})
}
