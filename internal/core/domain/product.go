package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Price       int64
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
