package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/coffee-order/internal/adapter/messaging"
	"github.com/rl1809/coffee-order/internal/adapter/storage"
	"github.com/rl1809/coffee-order/internal/config"
	"github.com/rl1809/coffee-order/internal/port"
)

type backends struct {
	orders      port.OrderRepository
	products    port.ProductRepository
	cache       port.ProductCache
	idempotency port.IdempotencyStore
	publisher   *messaging.KafkaPublisher

	closers []func()
}

// close releases everything in reverse order of opening.
func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config, migrate bool) (*backends, error) {
	b := &backends{}

	if err := b.openDatabase(ctx, cfg.Database, migrate); err != nil {
		b.close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			b.close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		log.Println("connected to redis")

		cache := storage.NewRedisAdapter(rdb, cfg.Redis.ProductTTL)
		b.cache = cache
		b.idempotency = cache
		b.closers = append(b.closers, func() { rdb.Close() })
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Workers, cfg.Kafka.QueueSize)
		b.publisher = publisher
		b.closers = append(b.closers, func() {
			if err := publisher.Close(); err != nil {
				log.Printf("failed to close publisher: %v", err)
			}
		})
		log.Printf("publishing order events to %s with %d workers", cfg.Kafka.Topic, cfg.Kafka.Workers)
	}

	return b, nil
}

func (b *backends) openDatabase(ctx context.Context, cfg config.DatabaseConfig, migrate bool) error {
	switch cfg.Driver {
	case config.DriverMySQL:
		db, err := openMySQL(ctx, cfg)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() { db.Close() })
		if migrate {
			if err := storage.MigrateMySQL(ctx, db); err != nil {
				return err
			}
		}
		adapter := storage.NewMySQLAdapter(db)
		b.orders, b.products = adapter, adapter

	case config.DriverPostgres:
		pool, err := openPostgres(ctx, cfg)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, pool.Close)
		if migrate {
			if err := storage.MigratePostgres(ctx, pool); err != nil {
				return err
			}
		}
		adapter := storage.NewPostgresAdapter(pool)
		b.orders, b.products = adapter, adapter

	case config.DriverMemory:
		adapter := storage.NewMemoryAdapter()
		b.orders, b.products = adapter, adapter
		log.Println("using in-memory storage")

	default:
		return fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	return nil
}

func openMySQL(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}
	log.Println("connected to mysql")
	return db, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	log.Println("connected to postgres")
	return pool, nil
}
