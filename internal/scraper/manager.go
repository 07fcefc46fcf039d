package scraper

import (
	"context"
	"time"

	"grocerytracker/internal/config"
	"grocerytracker/internal/domain"
	"grocerytracker/internal/events"
	"grocerytracker/internal/metrics"
	"grocerytracker/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Source produces products for one store.
type Source interface {
	Scrape(ctx context.Context, store StoreConfig) ([]models.ScrapedProduct, error)
	Mode() string
}

// Store is the persistence the manager needs.
type Store interface {
	SaveScraped(ctx context.Context, storeSlug string, products []models.ScrapedProduct) (int, error)
	LastScrapeTime(ctx context.Context) (*time.Time, error)
}

type Manager struct {
	store  Store
	source Source
	stores []StoreConfig
	cfg    config.ScrapingConfig
	events domain.EventPublisher
	logger *zerolog.Logger
	now    func() time.Time
}

func NewManager(
	store Store,
	source Source,
	stores []StoreConfig,
	cfg config.ScrapingConfig,
	publisher domain.EventPublisher,
	logger *zerolog.Logger,
) *Manager {
	if len(stores) == 0 {
		stores = DefaultStoreConfigs()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		store:  store,
		source: source,
		stores: stores,
		cfg:    cfg,
		events: publisher,
		logger: logger,
		now:    time.Now,
	}
}

// ScrapeAll scrapes every store in order. Per-store failures are reported in
// the results and never abort the run; any of them clears run.Success.
func (m *Manager) ScrapeAll(ctx context.Context, save bool) (*models.ScrapeRun, error) {
	if !m.cfg.Enabled {
		return nil, ErrScrapingDisabled
	}

	started := m.now()
	run := &models.ScrapeRun{
		Success: true,
		RunID:   uuid.NewString(),
		Results: make(map[string]models.ScrapeResult, len(m.stores)),
	}
	log := m.logger.With().Str("run_id", run.RunID).Logger()
	log.Info().Str("mode", m.source.Mode()).Bool("save", save).Msg("scrape started")

	for _, store := range m.stores {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := m.scrapeOne(ctx, store, save)
		run.Results[store.Slug] = res
		if !res.Success {
			run.Success = false
		}
		run.TotalProducts += res.ProductsCount
		run.TotalSaved += res.SavedCount
	}

	metrics.ObserveScrapeDuration(m.now().Sub(started).Seconds())
	log.Info().Int("products", run.TotalProducts).Int("saved", run.TotalSaved).Msg("scrape finished")
	m.publish(run.RunID, run.Results)
	return run, nil
}

// ScrapeStore scrapes one store by slug or display name.
func (m *Manager) ScrapeStore(ctx context.Context, key string, save bool) (*models.ScrapeResult, error) {
	if !m.cfg.Enabled {
		return nil, ErrScrapingDisabled
	}
	store, ok := findStore(m.stores, key)
	if !ok {
		return nil, ErrUnknownStore
	}

	res := m.scrapeOne(ctx, store, save)
	m.publish(uuid.NewString(), map[string]models.ScrapeResult{store.Slug: res})
	return &res, nil
}

func (m *Manager) Status(ctx context.Context) (*models.ScrapeStatus, error) {
	last, err := m.store.LastScrapeTime(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ScrapeStatus{
		Enabled:       m.cfg.Enabled,
		IntervalHours: m.cfg.IntervalHours,
		LastScrape:    last,
		Mode:          m.source.Mode(),
	}, nil
}

func (m *Manager) scrapeOne(ctx context.Context, store StoreConfig, save bool) models.ScrapeResult {
	res := models.ScrapeResult{StoreID: store.Slug}
	log := m.logger.With().Str("store", store.Slug).Logger()

	products, err := m.source.Scrape(ctx, store)
	if err != nil {
		log.Error().Err(err).Msg("scrape failed")
		metrics.ObserveScrape(store.Slug, false)
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.ProductsCount = len(products)

	if save {
		saved, err := m.store.SaveScraped(ctx, store.Slug, products)
		if err != nil {
			log.Error().Err(err).Msg("saving scraped prices failed")
			metrics.ObserveScrape(store.Slug, false)
			res.Success = false
			res.Error = err.Error()
			return res
		}
		res.SavedCount = saved
		metrics.AddPricesSaved(models.SourceScraper, saved)
	}

	metrics.ObserveScrape(store.Slug, true)
	log.Info().Int("products", res.ProductsCount).Int("saved", res.SavedCount).Msg("store scraped")
	return res
}

func (m *Manager) publish(runID string, results map[string]models.ScrapeResult) {
	if m.events == nil {
		return
	}

	payload := events.ScrapePayload{
		RunID:      runID,
		Mode:       m.source.Mode(),
		FinishedAt: m.now(),
	}
	for _, store := range m.stores {
		res, ok := results[store.Slug]
		if !ok {
			continue
		}
		payload.Stores = append(payload.Stores, store.Slug)
		payload.TotalProducts += res.ProductsCount
		payload.TotalSaved += res.SavedCount
		if !res.Success {
			if payload.Failed == nil {
				payload.Failed = make(map[string]string)
			}
			payload.Failed[store.Slug] = res.Error
		}
	}

	eventType := events.EventScrapeCompleted
	if len(payload.Failed) == len(payload.Stores) {
		eventType = events.EventScrapeFailed
	}
	if err := m.events.PublishJSON(eventType, payload); err != nil {
		m.logger.Warn().Err(err).Msg("failed to publish scrape event")
	}
}
