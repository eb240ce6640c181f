package handlers

import (
	"net/http"

	"storefront-service/middleware"
	"storefront-service/pkg/ctxmanage"

	"github.com/gin-gonic/gin"
)

// ListOrders returns the client's order history.
func (h *Handler) ListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)

	profile, err := h.client.ClientProfile(c.Request.Context(), sess)
	if err != nil {
		respondBackendError(c, traceId, err)
		return
	}

	list, err := h.orders.List(c.Request.Context(), sess, profile.ID)
	if err != nil {
		respondBackendError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}
