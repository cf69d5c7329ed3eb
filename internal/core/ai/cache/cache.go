// Package cache provides a Redis-backed cache for completion responses,
// keyed by a hash of the full prompt transcript.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"ai-chef-server/internal/infrastructure/config"
	"ai-chef-server/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Manager stores completion responses in Redis with a TTL.
type Manager struct {
	config *config.Config
	client *redis.Client
}

// NewManager creates a cache manager. Returns nil when caching is disabled.
func NewManager(cfg *config.Config) *Manager {
	if !cfg.Cache.Enabled {
		common.LogInfo("completion cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		common.LogError("failed to connect to redis",
			zap.Error(err),
			zap.String("addr", cfg.Cache.Addr),
		)
		return nil
	}

	common.LogInfo("completion cache initialized",
		zap.String("addr", cfg.Cache.Addr),
		zap.Duration("ttl", cfg.Cache.TTL),
	)

	return &Manager{
		config: cfg,
		client: client,
	}
}

// Get returns the cached completion for a transcript key, or ErrCacheMiss.
func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	val, err := m.client.Get(ctx, m.redisKey(key)).Result()
	if err == redis.Nil {
		common.LogDebug("completion cache miss")
		return "", common.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("cache get: %w", err)
	}
	common.LogDebug("completion cache hit")
	return val, nil
}

// Set stores a completion response under a transcript key.
func (m *Manager) Set(ctx context.Context, key, value string) error {
	if err := m.client.Set(ctx, m.redisKey(key), value, m.config.Cache.TTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	return m.client.Close()
}

func (m *Manager) redisKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return "completion:" + hex.EncodeToString(hash[:])
}
