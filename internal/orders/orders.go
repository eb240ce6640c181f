package orders

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/internal/cart"
	"storefront-service/internal/session"

	"github.com/go-playground/validator/v10"
)

// Validation failures that must be reported before any network call happens.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingAddress     = errors.New("delivery address is required")
	ErrMissingDeliveryDay = errors.New("delivery date is required")
)

// API is the slice of the backend the order flow talks to.
type API interface {
	CreateOrder(ctx context.Context, sess *session.Session, draft Draft) (Order, error)
	ListOrders(ctx context.Context, sess *session.Session, clientID int64) ([]Order, error)
}

// Service validates drafts and submits them.
type Service struct {
	api      API
	validate *validator.Validate
}

func NewService(api API) *Service {
	return &Service{
		api:      api,
		validate: validator.New(),
	}
}

// BuildDraft assembles an order draft from the cart's current items using
// the latest edited quantities.
func BuildDraft(clientID, createdBy int64, address, date, comment string, items []cart.Item) Draft {
	draft := Draft{
		ClientID:        clientID,
		CreatedBy:       createdBy,
		StatusID:        StatusNew,
		DeliveryAddress: address,
		DeliveryDate:    date,
		Comment:         comment,
	}
	for _, item := range items {
		draft.Items = append(draft.Items, DraftItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.ProductPrice,
		})
	}
	return draft
}

// Submit posts a draft to the backend. Local validation runs first and a
// failed check means no network call is issued at all.
func (s *Service) Submit(ctx context.Context, sess *session.Session, draft Draft) (Order, error) {
	if len(draft.Items) == 0 {
		return Order{}, ErrEmptyCart
	}
	if draft.DeliveryAddress == "" {
		return Order{}, ErrMissingAddress
	}
	if draft.DeliveryDate == "" {
		return Order{}, ErrMissingDeliveryDay
	}
	if err := s.validate.Struct(draft); err != nil {
		return Order{}, fmt.Errorf("invalid order draft: %w", err)
	}

	order, err := s.api.CreateOrder(ctx, sess, draft)
	if err != nil {
		return Order{}, fmt.Errorf("submitting order: %w", err)
	}
	return order, nil
}

// List fetches the client's order history.
func (s *Service) List(ctx context.Context, sess *session.Session, clientID int64) ([]Order, error) {
	list, err := s.api.ListOrders(ctx, sess, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for client %d: %w", clientID, err)
	}
	return list, nil
}
