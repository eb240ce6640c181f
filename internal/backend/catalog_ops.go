package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"storefront-service/internal/session"
)

// Product is a catalog entry as the backend returns it.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stockQuantity"`
	ImagePath     string  `json:"imagePath"`
	CategoryName  string  `json:"categoryName"`
}

// CatalogFilter narrows the product listing. Zero values mean "no filter".
type CatalogFilter struct {
	Name     string
	Category string
	Limit    int
	Offset   int
}

// ListProducts fetches the catalog page matching the filter.
func (c *Client) ListProducts(ctx context.Context, sess *session.Session, filter CatalogFilter) ([]Product, error) {
	query := url.Values{}
	if filter.Name != "" {
		query.Set("name", filter.Name)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.Limit > 0 {
		query.Set("limit", fmt.Sprint(filter.Limit))
	}
	if filter.Offset > 0 {
		query.Set("offset", fmt.Sprint(filter.Offset))
	}

	var products []Product
	err := c.do(ctx, sess, http.MethodGet, "/products", query, nil, &products)
	return products, err
}

// GetProduct fetches one catalog entry.
func (c *Client) GetProduct(ctx context.Context, sess *session.Session, productID int64) (Product, error) {
	var product Product
	err := c.do(ctx, sess, http.MethodGet, fmt.Sprintf("/products/%d", productID), nil, nil, &product)
	return product, err
}
