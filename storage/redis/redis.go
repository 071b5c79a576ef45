// Package redis provides a Redis implementation of webhook.ReplayGuard, shared
// by every replica that receives LicenseChain deliveries.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage implements webhook.ReplayGuard using Redis
type Storage struct {
	client redis.UniversalClient
	config Config
}

// Config holds Redis storage configuration
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "licensechain:webhook:")
	KeyPrefix string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		KeyPrefix: "licensechain:webhook:",
	}
}

// New creates a new Redis replay guard.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring
func New(client redis.UniversalClient, config Config) (*Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Storage{client: client, config: config}, nil
}

// Remember implements webhook.ReplayGuard with SET NX PX, so concurrent
// replicas agree on which delivery came first.
func (s *Storage) Remember(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, errors.New("replay ttl must be positive")
	}
	fresh, err := s.client.SetNX(ctx, s.key(key), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record webhook signature: %w", err)
	}
	return fresh, nil
}

// Forget implements webhook.ReplayGuard by deleting the key.
func (s *Storage) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to release webhook signature: %w", err)
	}
	return nil
}

func (s *Storage) key(key string) string {
	return s.config.KeyPrefix + key
}
