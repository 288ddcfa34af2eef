// Package dto holds the request and response shapes exchanged between the
// order service and its transports.
package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

var ErrInvalidRequest = errors.New("invalid request")

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
}

type OrderRequest struct {
	Email    string             `json:"email"`
	Address  string             `json:"address"`
	Postcode string             `json:"postcode"`
	Status   domain.OrderStatus `json:"orderStatus"`
	Items    []OrderItemRequest `json:"orderItems"`
}

// Validate checks the shape of the request. It does not look at products.
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || strings.TrimSpace(r.Address) == "" || strings.TrimSpace(r.Postcode) == "" {
		return fmt.Errorf("%w: email, address and postcode are required", ErrInvalidRequest)
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one order item is required", ErrInvalidRequest)
	}
	for i, item := range r.Items {
		if item.ProductID == uuid.Nil {
			return fmt.Errorf("%w: item %d: product id is required", ErrInvalidRequest, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %d: quantity must be positive", ErrInvalidRequest, i)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %d: price must not be negative", ErrInvalidRequest, i)
		}
	}
	return nil
}

// LineItems converts the requested items into order items, keeping the
// submitted category, price and quantity as they are.
func (r OrderRequest) LineItems() []domain.OrderItem {
	items := make([]domain.OrderItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Category:  item.Category,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}
	return items
}

type OrderItemResponse struct {
	ProductID uuid.UUID `json:"productId"`
	Category  string    `json:"category"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
}

type OrderResponse struct {
	ID        uuid.UUID           `json:"orderId"`
	Email     string              `json:"email"`
	Address   string              `json:"address"`
	Postcode  string              `json:"postcode"`
	Status    domain.OrderStatus  `json:"orderStatus"`
	OrderedAt time.Time           `json:"orderedAt"`
	Items     []OrderItemResponse `json:"orderItems"`
}

func FromOrder(o domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Category:  item.Category,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	return OrderResponse{
		ID:        o.ID,
		Email:     o.Email,
		Address:   o.Address,
		Postcode:  o.Postcode,
		Status:    o.Status,
		OrderedAt: o.OrderedAt,
		Items:     items,
	}
}

func FromOrders(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = FromOrder(o)
	}
	return out
}
