package handlers

import (
	"net/http"
	"strconv"

	"storefront-service/internal/backend"
	"storefront-service/middleware"
	"storefront-service/pkg/ctxmanage"

	"github.com/gin-gonic/gin"
)

// ListProducts proxies the catalog listing with optional filters and paging.
func (h *Handler) ListProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid offset parameter"})
		return
	}

	filter := backend.CatalogFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	}

	products, err := h.client.ListProducts(c.Request.Context(), sess, filter)
	if err != nil {
		respondBackendError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct proxies a single catalog entry.
func (h *Handler) GetProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := h.client.GetProduct(c.Request.Context(), sess, productID)
	if err != nil {
		respondBackendError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, product)
}
