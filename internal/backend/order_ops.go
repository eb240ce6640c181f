package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront-service/internal/orders"
	"storefront-service/internal/session"
)

// CreateOrder submits an order draft and returns the created order.
func (c *Client) CreateOrder(ctx context.Context, sess *session.Session, draft orders.Draft) (orders.Order, error) {
	var order orders.Order
	err := c.do(ctx, sess, http.MethodPost, "/orders", nil, draft, &order)
	return order, err
}

// ListOrders fetches the order history of a client.
func (c *Client) ListOrders(ctx context.Context, sess *session.Session, clientID int64) ([]orders.Order, error) {
	query := url.Values{"clientId": []string{strconv.FormatInt(clientID, 10)}}
	var list []orders.Order
	err := c.do(ctx, sess, http.MethodGet, "/orders", query, nil, &list)
	return list, err
}
