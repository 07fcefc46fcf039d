package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"grocerytracker/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverCache serves from primary until it errors, then from fallback,
// probing primary again once a minute.
type FailoverCache struct {
	primary  domain.Cache
	fallback domain.Cache
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverCache(primary, fallback domain.Cache, logger *zerolog.Logger) *FailoverCache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverCache{primary: primary, fallback: fallback, logger: logger, now: time.Now}
}

func (c *FailoverCache) markDown(err error) {
	if !c.isDown.Swap(true) {
		c.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	}
	c.mu.Lock()
	c.lastCheck = c.now()
	c.mu.Unlock()
}

// usePrimary reports whether the next call should go to primary.
func (c *FailoverCache) usePrimary() bool {
	if !c.isDown.Load() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Sub(c.lastCheck) > recoveryInterval
}

func (c *FailoverCache) recovered() {
	if c.isDown.Swap(false) {
		c.logger.Info().Msg("primary cache recovered")
	}
}

func (c *FailoverCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.usePrimary() {
		val, ok, err := c.primary.Get(ctx, key)
		if err == nil {
			c.recovered()
			return val, ok, nil
		}
		c.markDown(err)
	}
	return c.fallback.Get(ctx, key)
}

func (c *FailoverCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.usePrimary() {
		err := c.primary.Set(ctx, key, value, ttl)
		if err == nil {
			c.recovered()
			return nil
		}
		c.markDown(err)
	}
	return c.fallback.Set(ctx, key, value, ttl)
}

// DeletePrefix always clears the fallback too, so entries written while primary
// was down do not outlive an invalidation.
func (c *FailoverCache) DeletePrefix(ctx context.Context, prefix string) error {
	if err := c.fallback.DeletePrefix(ctx, prefix); err != nil {
		return err
	}
	if c.usePrimary() {
		err := c.primary.DeletePrefix(ctx, prefix)
		if err == nil {
			c.recovered()
			return nil
		}
		c.markDown(err)
	}
	return nil
}

// Degraded reports whether calls are currently served by the fallback.
func (c *FailoverCache) Degraded() bool {
	return c.isDown.Load()
}
