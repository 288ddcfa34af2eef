// Package config loads the service configuration from an optional YAML file
// and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPAddr        string         `yaml:"http_addr"`
	GRPCAddr        string         `yaml:"grpc_addr"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout"`
	Database        DatabaseConfig `yaml:"database"`
	Redis           RedisConfig    `yaml:"redis"`
	Kafka           KafkaConfig    `yaml:"kafka"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig enables the product cache and idempotency keys when Addr is set.
type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	PoolSize   int           `yaml:"pool_size"`
	ProductTTL time.Duration `yaml:"product_ttl"`
}

// KafkaConfig enables order events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers   []string `yaml:"brokers"`
	Topic     string   `yaml:"topic"`
	Workers   int      `yaml:"workers"`
	QueueSize int      `yaml:"queue_size"`
}

func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		GRPCAddr:        ":50051",
		ShutdownTimeout: 5 * time.Second,
		Database: DatabaseConfig{
			Driver:          DriverMySQL,
			DSN:             "root:root@tcp(localhost:3306)/coffee_order?parseTime=true",
			MaxOpenConns:    50,
			MaxIdleConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   100,
			ProductTTL: 10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:     "orders",
			Workers:   10,
			QueueSize: 10000,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.GRPCAddr, "GRPC_ADDR")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.DSN, "MYSQL_DSN")
	setString(&cfg.Database.URL, "DATABASE_URL")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = splitCSV(v)
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func splitCSV(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for mysql")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("database.url is required for postgres")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database.driver %q (valid: mysql, postgres, memory)", c.Database.Driver)
	}

	if c.HTTPAddr == "" && c.GRPCAddr == "" {
		return errors.New("at least one of http_addr and grpc_addr is required")
	}
	if len(c.Kafka.Brokers) > 0 {
		if c.Kafka.Topic == "" {
			return errors.New("kafka.topic is required when brokers are set")
		}
		if c.Kafka.Workers < 1 || c.Kafka.QueueSize < 1 {
			return errors.New("kafka.workers and kafka.queue_size must be positive")
		}
	}
	return nil
}
