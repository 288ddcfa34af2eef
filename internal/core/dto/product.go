package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

type ProductRequest struct {
	Name        string `json:"productName"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
}

func (r ProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Category) == "" {
		return fmt.Errorf("%w: product name and category are required", ErrInvalidRequest)
	}
	if r.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}
	return nil
}

type ProductResponse struct {
	ID          uuid.UUID `json:"productId"`
	Name        string    `json:"productName"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func FromProduct(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromProducts(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = FromProduct(p)
	}
	return out
}
