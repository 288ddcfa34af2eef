package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestProductCache_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute)

	p := domain.Product{
		ID:        uuid.New(),
		Name:      "Colombia Supremo",
		Category:  "Coffee",
		Price:     7000,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	missing := uuid.New()

	if err := adapter.SetProducts(ctx, []domain.Product{p}); err != nil {
		t.Fatalf("SetProducts failed: %v", err)
	}

	got, err := adapter.GetProducts(ctx, []uuid.UUID{p.ID, missing})
	if err != nil {
		t.Fatalf("GetProducts failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 cached product, got %d", len(got))
	}
	if got[p.ID].Name != p.Name || got[p.ID].Price != p.Price {
		t.Errorf("unexpected cached product: %+v", got[p.ID])
	}

	// Verify TTL applied
	ttl := client.TTL(ctx, "product:"+p.ID.String()).Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl within a minute, got %v", ttl)
	}

	client.Del(ctx, "product:"+p.ID.String())
}

func TestSetIdempotency_Success(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0)

	// Setup
	client.Del(ctx, "idempotency:test-idem-key")

	// First call should succeed
	ok, err := adapter.SetIdempotency(ctx, "test-idem-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected first call to succeed")
	}

	// Second call should fail (key exists)
	ok, err = adapter.SetIdempotency(ctx, "test-idem-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second call to fail")
	}
}

func TestDeleteIdempotency_AllowsReuse(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0)
	key := "test-release-" + uuid.NewString()

	ok, err := adapter.SetIdempotency(ctx, key)
	if err != nil || !ok {
		t.Fatalf("SetIdempotency = %v, %v", ok, err)
	}

	if err := adapter.DeleteIdempotency(ctx, key); err != nil {
		t.Fatalf("DeleteIdempotency failed: %v", err)
	}
	if n := client.Exists(ctx, "idempotency:"+key).Val(); n != 0 {
		t.Errorf("expected key to be removed, exists = %d", n)
	}

	ok, err = adapter.SetIdempotency(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected released key to be claimable again")
	}

	client.Del(ctx, "idempotency:"+key)
}

func TestSetIdempotency_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, 0)

	// Setup
	client.Del(ctx, "idempotency:concurrent-idem-key")

	var successCount atomic.Int32
	var wg sync.WaitGroup
	concurrency := 100

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.SetIdempotency(ctx, "concurrent-idem-key")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Only one should succeed
	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
}
