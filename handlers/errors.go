package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront-service/internal/backend"
	"storefront-service/middleware"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// respondBackendError applies the global error taxonomy: auth failures and
// not-founds redirect, everything else surfaces to the caller with the
// request state left as it was. Nothing is retried here.
func respondBackendError(c *gin.Context, traceId string, err error) {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		slog.Error("backend rejected credentials", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.Redirect(http.StatusSeeOther, middleware.UnauthorizedPath)
		c.Abort()
	case errors.Is(err, backend.ErrNotFound):
		slog.Error("backend resource not found", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.Redirect(http.StatusSeeOther, middleware.NotFoundPath)
		c.Abort()
	default:
		slog.Error("backend call failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Backend request failed"})
	}
}
