package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type Order struct {
	ID        uuid.UUID
	Email     string
	Address   string
	Postcode  string
	Status    OrderStatus
	OrderedAt time.Time
	Items     []OrderItem
}

// OrderItem is a line of an order. Category and Price are copied from the
// request when the order is placed and never change afterwards.
type OrderItem struct {
	ProductID uuid.UUID
	Category  string
	Price     int64
	Quantity  int
}

// ProductIDs returns the distinct product ids referenced by items, in the
// order they first appear.
func ProductIDs(items []OrderItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
