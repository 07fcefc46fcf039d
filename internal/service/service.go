package service

import (
	"context"
	"encoding/json"
	"time"

	"grocerytracker/internal/domain"
	"grocerytracker/internal/metrics"

	"github.com/rs/zerolog"
)

// Cache keys. Prefixed keys carry their query parameters after the colon.
const (
	keyStores     = "stores"
	keyCategories = "categories"
	keyItems      = "items:"
	keyPrices     = "prices:"
	keyTrends     = "trends:"
	keyComparison = "comparison"
	keySummary    = "summary"
)

// PriceService sits between the HTTP handlers and the repository: it caches read
// models for the configured TTL, invalidates them on writes and publishes events.
type PriceService struct {
	repo   domain.PriceRepository
	cache  domain.Cache
	ttl    time.Duration
	events domain.EventPublisher
	logger *zerolog.Logger
}

func NewPriceService(
	repo domain.PriceRepository,
	cache domain.Cache,
	ttl time.Duration,
	events domain.EventPublisher,
	logger *zerolog.Logger,
) *PriceService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &PriceService{repo: repo, cache: cache, ttl: ttl, events: events, logger: logger}
}

// cached returns the value under key, loading and storing it on a miss.
// Cache failures are logged and bypassed.
func cached[T any](ctx context.Context, s *PriceService, key string, load func(context.Context) (T, error)) (T, error) {
	if s.cache == nil || s.ttl <= 0 {
		return load(ctx)
	}

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			metrics.ObserveCache(true)
			return v, nil
		}
		s.logger.Warn().Str("key", key).Msg("dropping undecodable cache entry")
	}
	metrics.ObserveCache(false)

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return v, nil
}

func (s *PriceService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	for _, key := range keys {
		if err := s.cache.DeletePrefix(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
		}
	}
}

// InvalidatePrices drops every cached view derived from prices.
func (s *PriceService) InvalidatePrices(ctx context.Context) {
	s.invalidate(ctx, keyPrices, keyTrends, keyComparison, keySummary, keyItems)
}

func (s *PriceService) publish(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
