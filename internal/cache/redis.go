// Package cache wraps Redis as an optional read-through cache for the
// clients ledger, sparing one query per repeat inbound message.
package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const clientKeyPrefix = "barber:client:"

// Redis wraps a go-redis client with known-client helpers.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// Config defines connection parameters for Redis.
type Config struct {
	Addr      string
	Password  string
	DB        int
	UseTLS    bool
	ClientTTL time.Duration
}

// New returns a Redis client based on provided configuration.
func New(cfg Config, logger *slog.Logger) *Redis {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	ttl := cfg.ClientTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Redis{
		client: redis.NewClient(opts),
		logger: logger.With("component", "redis"),
		ttl:    ttl,
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// IsClientKnown reports whether the canonical phone number was recently
// confirmed to exist in the clients ledger. A nil receiver and any Redis
// fault both report false so callers fall back to the database.
func (r *Redis) IsClientKnown(ctx context.Context, phone string) bool {
	if r == nil {
		return false
	}
	res, err := r.client.Exists(ctx, clientKeyPrefix+phone).Result()
	if err != nil {
		r.logger.Warn("client cache read failed", "error", err)
		return false
	}
	return res > 0
}

// MarkClientKnown records that the phone number exists in the ledger.
// Failures are logged and ignored; the cache is advisory.
func (r *Redis) MarkClientKnown(ctx context.Context, phone string) {
	if r == nil {
		return
	}
	if err := r.client.Set(ctx, clientKeyPrefix+phone, "1", r.ttl).Err(); err != nil {
		r.logger.Warn("client cache write failed", "error", err)
	}
}

// Close releases Redis resources.
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
