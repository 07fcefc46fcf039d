package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"grocerytracker/internal/models"

	"github.com/rs/zerolog"
)

// Fetcher is the part of the API client the dashboard reads from.
type Fetcher interface {
	Stores(ctx context.Context) ([]models.Store, error)
	Items(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	PriceComparison(ctx context.Context) ([]models.ComparisonEntry, error)
	DailySummary(ctx context.Context) (*models.Summary, error)
}

// Renderer receives a fully built view.
type Renderer interface {
	Render(view *View) error
}

type View struct {
	Stores   []models.Store
	Rows     []Row
	Summary  models.Summary
	LoadedAt time.Time
}

type Loader struct {
	api      Fetcher
	renderer Renderer
	logger   *zerolog.Logger
	now      func() time.Time
}

func NewLoader(api Fetcher, renderer Renderer, logger *zerolog.Logger) *Loader {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Loader{api: api, renderer: renderer, logger: logger, now: time.Now}
}

// LoadDashboard fetches stores, items, the price comparison and the daily summary
// concurrently. Any failure fails the whole load and nothing is rendered.
func (l *Loader) LoadDashboard(ctx context.Context) (*View, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error

		stores  []models.Store
		items   []models.Item
		entries []models.ComparisonEntry
		summary *models.Summary
	)
	fail := func(what string, err error) {
		once.Do(func() {
			firstErr = fmt.Errorf("load %s: %w", what, err)
			cancel()
		})
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		if stores, err = l.api.Stores(ctx); err != nil {
			fail("stores", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if items, err = l.api.Items(ctx, models.ItemFilter{}); err != nil {
			fail("items", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if entries, err = l.api.PriceComparison(ctx); err != nil {
			fail("prices", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if summary, err = l.api.DailySummary(ctx); err != nil {
			fail("summary", err)
		}
	}()
	wg.Wait()

	if firstErr != nil {
		l.logger.Error().Err(firstErr).Msg("dashboard load failed")
		return nil, firstErr
	}

	view := &View{
		Stores:   stores,
		Rows:     BuildRows(items, entries),
		LoadedAt: l.now(),
	}
	if summary != nil {
		view.Summary = *summary
	}

	if l.renderer != nil {
		if err := l.renderer.Render(view); err != nil {
			return nil, fmt.Errorf("render dashboard: %w", err)
		}
	}
	l.logger.Debug().Int("rows", len(view.Rows)).Msg("dashboard loaded")
	return view, nil
}
