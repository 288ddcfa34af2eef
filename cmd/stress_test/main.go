package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/coffee-order/internal/adapter/storage"
	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/dto"
	"github.com/rl1809/coffee-order/internal/core/service"
)

const (
	redisAddr     = "localhost:6379"
	email         = "stress@example.com"
	totalRequests = 50
	knownRequests = 20
)

func main() {
	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Orders go to memory; product lookups read through Redis
	store := storage.NewMemoryAdapter()
	cache := storage.NewRedisAdapter(rdb, time.Minute)

	now := time.Now().UTC()
	product := domain.Product{
		ID:        uuid.New(),
		Name:      "Espresso",
		Category:  "coffee",
		Price:     2500,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateProduct(ctx, product); err != nil {
		log.Fatalf("failed to seed product: %v", err)
	}
	defer rdb.Del(ctx, "product:"+product.ID.String())

	products := service.NewProductService(store, cache)
	orderService := service.NewOrderService(products, store)

	// Counters
	var successCount atomic.Int32
	var notFoundCount atomic.Int32
	var otherCount atomic.Int32

	// Spawn concurrent requests; the first knownRequests reference the
	// seeded product, the rest an unknown one.
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			productID := product.ID
			if n >= knownRequests {
				productID = uuid.New()
			}

			_, err := orderService.RegisterOrder(ctx, dto.OrderRequest{
				Email:    email,
				Address:  fmt.Sprintf("%d Roast Lane", n),
				Postcode: "10115",
				Items: []dto.OrderItemRequest{
					{ProductID: productID, Category: "coffee", Price: 2500, Quantity: 1},
				},
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrNotFound):
				notFoundCount.Add(1)
			default:
				otherCount.Add(1)
				log.Printf("request %d: %v", n, err)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	notFound := notFoundCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Not Found:        %d\n", notFound)
	fmt.Printf("Other Errors:     %d\n", otherCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == knownRequests && notFound == totalRequests-knownRequests {
		fmt.Printf("PASS: %d orders registered, %d rejected\n", knownRequests, totalRequests-knownRequests)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d not found, got %d/%d\n",
			knownRequests, totalRequests-knownRequests, success, notFound)
	}

	// Verify stored orders
	orders, err := orderService.GetOrderByEmail(ctx, email)
	if err != nil {
		log.Fatalf("failed to read orders: %v", err)
	}
	fmt.Printf("Stored Orders:    %d\n", len(orders))

	if len(orders) == knownRequests {
		fmt.Println("PASS: no order stored for an unknown product")
	} else {
		fmt.Printf("FAIL: Expected %d stored orders, got %d\n", knownRequests, len(orders))
	}
}
