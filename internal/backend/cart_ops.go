package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront-service/internal/cart"
	"storefront-service/internal/session"
)

// ClientProfile resolves the logged-in client's profile.
func (c *Client) ClientProfile(ctx context.Context, sess *session.Session) (cart.Profile, error) {
	var profile cart.Profile
	err := c.do(ctx, sess, http.MethodGet, "/clients/profile", nil, nil, &profile)
	return profile, err
}

// Cart fetches the client's cart. One cart per client.
func (c *Client) Cart(ctx context.Context, sess *session.Session, clientID int64) (cart.Cart, error) {
	var crt cart.Cart
	err := c.do(ctx, sess, http.MethodGet, fmt.Sprintf("/cart/%d", clientID), nil, nil, &crt)
	return crt, err
}

// CartItems lists the cart's lines.
func (c *Client) CartItems(ctx context.Context, sess *session.Session, cartID int64) ([]cart.Item, error) {
	var items []cart.Item
	err := c.do(ctx, sess, http.MethodGet, fmt.Sprintf("/cart/%d/items", cartID), nil, nil, &items)
	return items, err
}

// AddItem puts a product into the cart and returns the resulting line, which
// either is new or absorbs the quantity into an existing line for the product.
func (c *Client) AddItem(ctx context.Context, sess *session.Session, cartID, productID int64, quantity int) (cart.Item, error) {
	query := url.Values{
		"productId": []string{strconv.FormatInt(productID, 10)},
		"quantity":  []string{strconv.Itoa(quantity)},
	}
	var item cart.Item
	err := c.do(ctx, sess, http.MethodPost, fmt.Sprintf("/cart/%d/items", cartID), query, nil, &item)
	return item, err
}

// UpdateItemQuantity sets a line's quantity. The backend's returned item is
// the source of truth and replaces the local one.
func (c *Client) UpdateItemQuantity(ctx context.Context, sess *session.Session, itemID int64, quantity int) (cart.Item, error) {
	query := url.Values{"quantity": []string{strconv.Itoa(quantity)}}
	var item cart.Item
	err := c.do(ctx, sess, http.MethodPut, fmt.Sprintf("/cart/items/%d", itemID), query, nil, &item)
	return item, err
}

// RemoveItem deletes one line.
func (c *Client) RemoveItem(ctx context.Context, sess *session.Session, itemID int64) error {
	return c.do(ctx, sess, http.MethodDelete, fmt.Sprintf("/cart/items/%d", itemID), nil, nil, nil)
}

// ClearCart deletes every line in the cart.
func (c *Client) ClearCart(ctx context.Context, sess *session.Session, cartID int64) error {
	return c.do(ctx, sess, http.MethodDelete, fmt.Sprintf("/cart/%d/items", cartID), nil, nil, nil)
}
