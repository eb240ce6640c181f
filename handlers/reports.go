package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"storefront-service/middleware"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// DownloadReport streams a generated PDF report through to the caller.
// Reports are the one response class that is not JSON.
func (h *Handler) DownloadReport(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)

	name := c.Param("name")
	body, contentType, err := h.client.DownloadReport(c.Request.Context(), sess, name, c.Request.URL.Query())
	if err != nil {
		respondBackendError(c, traceId, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/pdf"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+name+`.pdf"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		slog.Error("report stream interrupted", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
	}
}
