package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/dto"
	"github.com/rl1809/coffee-order/internal/logging"
	"github.com/rl1809/coffee-order/internal/port"
)

// ProductService resolves products for order registration. When a cache is
// configured lookups read through it; cache failures fall back to the
// repository.
type ProductService struct {
	repo  port.ProductRepository
	cache port.ProductCache
}

func NewProductService(repo port.ProductRepository, cache port.ProductCache) *ProductService {
	return &ProductService{repo: repo, cache: cache}
}

func (s *ProductService) GetProductByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	result := make(map[uuid.UUID]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	misses := ids
	if s.cache != nil {
		cached, err := s.cache.GetProducts(ctx, ids)
		if err != nil {
			logging.Log(logging.Fields{Service: "product", Step: "cache_get", Status: "error", Message: err.Error()})
		} else {
			misses = make([]uuid.UUID, 0, len(ids))
			for _, id := range ids {
				if p, ok := cached[id]; ok {
					result[id] = p
				} else {
					misses = append(misses, id)
				}
			}
		}
	}

	if len(misses) == 0 {
		return result, nil
	}

	products, err := s.repo.FindProductsByIDs(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	for _, p := range products {
		result[p.ID] = p
	}

	if s.cache != nil && len(products) > 0 {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			logging.Log(logging.Fields{Service: "product", Step: "cache_set", Status: "error", Message: err.Error()})
		}
	}

	return result, nil
}

func (s *ProductService) RegisterProduct(ctx context.Context, req dto.ProductRequest) (dto.ProductResponse, error) {
	now := time.Now().UTC()
	product := domain.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return dto.ProductResponse{}, fmt.Errorf("create product: %w", err)
	}
	return dto.FromProduct(product), nil
}

func (s *ProductService) GetAllProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return dto.FromProducts(products), nil
}
