package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

const (
	productKeyPrefix     = "product:"
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour
	DefaultProductTTL    = 10 * time.Minute
)

type cachedProduct struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RedisAdapter struct {
	client     *redis.Client
	productTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, productTTL time.Duration) *RedisAdapter {
	if productTTL <= 0 {
		productTTL = DefaultProductTTL
	}
	return &RedisAdapter{client: client, productTTL: productTTL}
}

func (r *RedisAdapter) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	out := make(map[uuid.UUID]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKeyPrefix + id.String()
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var cp cachedProduct
		if err := json.Unmarshal([]byte(s), &cp); err != nil {
			return nil, fmt.Errorf("decode cached product: %w", err)
		}
		out[cp.ID] = domain.Product{
			ID:          cp.ID,
			Name:        cp.Name,
			Category:    cp.Category,
			Price:       cp.Price,
			Description: cp.Description,
			CreatedAt:   cp.CreatedAt,
			UpdatedAt:   cp.UpdatedAt,
		}
	}

	return out, nil
}

func (r *RedisAdapter) SetProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	for _, p := range products {
		data, err := json.Marshal(cachedProduct{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Price:       p.Price,
			Description: p.Description,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
		if err != nil {
			return err
		}
		pipe.Set(ctx, productKeyPrefix+p.ID.String(), data, r.productTTL)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) DeleteIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
