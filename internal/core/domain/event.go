package domain

import (
	"time"

	"github.com/google/uuid"
)

const EventOrderRegistered = "order.registered"

type OrderEvent struct {
	EventID   uuid.UUID
	Type      string
	Order     Order
	CreatedAt time.Time
}
