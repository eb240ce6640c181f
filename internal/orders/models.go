package orders

import "time"

// Draft is the client-assembled order posted to the backend. It is built at
// checkout from the cart's latest edited quantities and never persisted
// locally after a successful submission.
type Draft struct {
	ClientID        int64       `json:"clientId" validate:"required"`
	CreatedBy       int64       `json:"createdBy" validate:"required"`
	StatusID        int64       `json:"statusId" validate:"required"`
	DeliveryAddress string      `json:"deliveryAddress" validate:"required"`
	DeliveryDate    string      `json:"deliveryDate" validate:"required"`
	Comment         string      `json:"comment"`
	Items           []DraftItem `json:"items" validate:"required,min=1,dive"`
}

type DraftItem struct {
	ProductID int64   `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	UnitPrice float64 `json:"unitPrice" validate:"required"`
}

// StatusNew is the initial status id the backend assigns to fresh orders.
const StatusNew int64 = 1

// Order is the backend's view of a submitted order.
type Order struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"clientId"`
	StatusID        int64     `json:"statusId"`
	StatusName      string    `json:"statusName"`
	DeliveryAddress string    `json:"deliveryAddress"`
	DeliveryDate    string    `json:"deliveryDate"`
	Comment         string    `json:"comment"`
	TotalPrice      float64   `json:"totalPrice"`
	CreatedAt       time.Time `json:"createdAt"`
}
