package cache

import (
	"context"
	"time"

	"grocerytracker/internal/config"
	"grocerytracker/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// New picks the cache backend: memory only without a Redis address, otherwise
// Redis with memory failover. The returned client is nil in the memory case.
func New(ctx context.Context, cfg config.RedisConfig, logger *zerolog.Logger) (domain.Cache, *redis.Client) {
	memory := NewMemoryCache()
	if cfg.Address == "" {
		return memory, nil
	}

	client := NewRedisClient(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := Ping(pingCtx, client); err != nil && logger != nil {
		logger.Warn().Err(err).Str("addr", cfg.Address).Msg("redis unavailable at startup")
	}
	return NewFailoverCache(NewRedisCache(client), memory, logger), client
}
