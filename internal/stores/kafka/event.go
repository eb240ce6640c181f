package kafka

import "time"

const TopicOrderPlaced = `storefront-service.order-placed`

// OrderPlacedEvent is emitted once per line item after an order is accepted
// by the backend.
type OrderPlacedEvent struct {
	OrderID   int64     `json:"order_id"`
	ClientID  int64     `json:"client_id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	CreatedAt time.Time `json:"created_at"`
}
