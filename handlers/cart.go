package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"storefront-service/internal/orders"
	"storefront-service/internal/stores/kafka"
	"storefront-service/middleware"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// GetCart loads the session's cart on first access (profile -> cart ->
// items) and afterwards serves the locally tracked state, including notices
// accumulated by deferred quantity updates.
func (h *Handler) GetCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)
	wf := h.carts.ForSession(sess)

	if !wf.Loaded() {
		snapshot, err := wf.Load(c.Request.Context())
		if err != nil {
			respondBackendError(c, traceId, err)
			return
		}
		c.JSON(http.StatusOK, snapshot)
		return
	}

	c.JSON(http.StatusOK, wf.Snapshot())
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// AddItem puts a product into the cart. The stock level is checked against
// the catalog before the backend call, and on success the session's local
// cart state is patched with the line the backend returned.
func (h *Handler) AddItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)
	wf := h.carts.ForSession(sess)

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.ProductID <= 0 || req.Quantity <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Product id and quantity must be valid"})
		return
	}

	if !wf.Loaded() {
		if _, err := wf.Load(c.Request.Context()); err != nil {
			respondBackendError(c, traceId, err)
			return
		}
	}

	product, err := h.client.GetProduct(c.Request.Context(), sess, req.ProductID)
	if err != nil {
		respondBackendError(c, traceId, err)
		return
	}
	if req.Quantity > product.StockQuantity {
		slog.Error("insufficient stock", slog.String(logkey.TraceID, traceId),
			slog.Int64("ProductID", req.ProductID), slog.Int("Requested", req.Quantity),
			slog.Int("Available", product.StockQuantity))
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Insufficient stock available"})
		return
	}

	snapshot, err := wf.Add(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		respondBackendError(c, traceId, err)
		return
	}

	slog.Info("product added to cart", slog.String(logkey.TraceID, traceId),
		slog.Int64("ProductID", req.ProductID), slog.Int("Quantity", req.Quantity))
	c.JSON(http.StatusOK, snapshot)
}

// UpdateQuantity records one keystroke in an item's quantity box. The
// response tells the SPA whether the value was clamped to stock and whether
// a deferred server update was scheduled.
func (h *Handler) UpdateQuantity(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)
	wf := h.carts.ForSession(sess)

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}
	rawQuantity := c.Query("quantity")
	if rawQuantity == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Quantity is required"})
		return
	}

	if !wf.Loaded() {
		if _, err := wf.Load(c.Request.Context()); err != nil {
			respondBackendError(c, traceId, err)
			return
		}
	}

	result, err := wf.UpdateQuantity(itemID, rawQuantity)
	if err != nil {
		slog.Error("quantity update rejected", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.ItemID, itemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Item is not in the cart"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RemoveItem deletes one line and returns the resulting cart state. A
// backend failure leaves the cart as it was.
func (h *Handler) RemoveItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)
	wf := h.carts.ForSession(sess)

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	if !wf.Loaded() {
		if _, err := wf.Load(c.Request.Context()); err != nil {
			respondBackendError(c, traceId, err)
			return
		}
	}

	snapshot, err := wf.Remove(c.Request.Context(), itemID)
	if err != nil {
		respondBackendError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// ClearCart empties the cart, all-or-nothing.
func (h *Handler) ClearCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)
	wf := h.carts.ForSession(sess)

	if !wf.Loaded() {
		if _, err := wf.Load(c.Request.Context()); err != nil {
			respondBackendError(c, traceId, err)
			return
		}
	}

	if err := wf.Clear(c.Request.Context()); err != nil {
		respondBackendError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, wf.Snapshot())
}

type checkoutRequest struct {
	DeliveryAddress string `json:"deliveryAddress"`
	DeliveryDate    string `json:"deliveryDate"`
	Comment         string `json:"comment"`
}

// Checkout builds an order draft from the cart's latest edited quantities
// and submits it. Local validation failures issue no backend call. Only a
// successful creation clears the server-side cart and the local state.
func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sess := middleware.SessionFromContext(c)
	wf := h.carts.ForSession(sess)

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !wf.Loaded() {
		if _, err := wf.Load(c.Request.Context()); err != nil {
			respondBackendError(c, traceId, err)
			return
		}
	}

	createdBy, err := strconv.ParseInt(sess.UserID, 10, 64)
	if err != nil {
		slog.Error("session carries a non-numeric user id", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, sess.UserID))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid session"})
		return
	}

	items := wf.EffectiveItems()
	draft := orders.BuildDraft(wf.ClientID(), createdBy, req.DeliveryAddress, req.DeliveryDate, req.Comment, items)

	order, err := h.orders.Submit(c.Request.Context(), sess, draft)
	if err != nil {
		switch err {
		case orders.ErrEmptyCart, orders.ErrMissingAddress, orders.ErrMissingDeliveryDay:
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			respondBackendError(c, traceId, err)
		}
		return
	}

	if err := wf.Clear(c.Request.Context()); err != nil {
		// The order exists; the stale cart is an inconvenience, not a failure.
		slog.Error("failed to clear cart after checkout", slog.String(logkey.TraceID, traceId),
			slog.Int64(logkey.OrderID, order.ID), slog.String(logkey.ERROR, err.Error()))
	}

	h.publishOrderPlaced(traceId, order, draft)

	slog.Info("order created", slog.String(logkey.TraceID, traceId),
		slog.Int64(logkey.OrderID, order.ID), slog.String(logkey.UserID, sess.UserID))
	c.JSON(http.StatusOK, gin.H{
		"order_id": order.ID,
		"message":  "Order created successfully",
		"redirect": "/client/orders",
	})
}

func (h *Handler) publishOrderPlaced(traceId string, order orders.Order, draft orders.Draft) {
	if h.k == nil {
		return
	}
	go func() {
		for _, item := range draft.Items {
			data, err := json.Marshal(kafka.OrderPlacedEvent{
				OrderID:   order.ID,
				ClientID:  draft.ClientID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				CreatedAt: time.Now().UTC(),
			})
			if err != nil {
				slog.Error("failed to marshal order event", slog.String(logkey.TraceID, traceId),
					slog.String(logkey.ERROR, err.Error()))
				return
			}
			key := []byte(strconv.FormatInt(order.ID, 10))
			if err := h.k.ProduceMessage(kafka.TopicOrderPlaced, key, data); err != nil {
				slog.Error("failed to produce order event", slog.String(logkey.TraceID, traceId),
					slog.String(logkey.ERROR, err.Error()))
				return
			}
		}
	}()
}
