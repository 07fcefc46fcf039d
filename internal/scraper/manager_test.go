package scraper

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"grocerytracker/internal/config"
	"grocerytracker/internal/database"
	"grocerytracker/internal/events"
	"grocerytracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct {
	*DemoSource
	fail map[string]error
}

func (f failingSource) Scrape(ctx context.Context, store StoreConfig) ([]models.ScrapedProduct, error) {
	if err, ok := f.fail[store.Slug]; ok {
		return nil, err
	}
	return f.DemoSource.Scrape(ctx, store)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Seed(context.Background(), models.DefaultStores, models.DefaultCategories))
	return db
}

var enabled = config.ScrapingConfig{Enabled: true, IntervalHours: 6, UseDemoData: true}

func TestScrapeAll(t *testing.T) {
	db := newTestDB(t)
	bus := events.NewEventBus()
	var got []events.ScrapePayload
	bus.Subscribe(events.EventScrapeCompleted, func(e *events.Event) error {
		var p events.ScrapePayload
		require.NoError(t, e.Decode(&p))
		got = append(got, p)
		return nil
	})

	m := NewManager(db, NewDemoSource(nil, rand.New(rand.NewSource(1))), nil, enabled, bus, nil)
	run, err := m.ScrapeAll(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, run.Success)
	assert.NotEmpty(t, run.RunID)
	assert.Len(t, run.Results, 4)
	assert.Equal(t, 20, run.TotalProducts)
	assert.Equal(t, 20, run.TotalSaved)
	for _, slug := range models.StoreOrder {
		assert.True(t, run.Results[slug].Success, slug)
		assert.Equal(t, 5, run.Results[slug].SavedCount, slug)
	}

	require.Len(t, got, 1)
	assert.Equal(t, models.StoreOrder, got[0].Stores)
	assert.Equal(t, run.RunID, got[0].RunID)
	assert.Equal(t, models.ModeDemo, got[0].Mode)

	status, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.Equal(t, 6, status.IntervalHours)
	assert.NotNil(t, status.LastScrape)
	assert.Equal(t, models.ModeDemo, status.Mode)
}

func TestScrapeAllWithoutSaving(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, NewDemoSource(nil, nil), nil, enabled, nil, nil)

	run, err := m.ScrapeAll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 20, run.TotalProducts)
	assert.Zero(t, run.TotalSaved)

	n, err := db.CountItems(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScrapeAllStoreFailureDoesNotAbort(t *testing.T) {
	db := newTestDB(t)
	src := failingSource{DemoSource: NewDemoSource(nil, nil), fail: map[string]error{models.StoreCoop: errors.New("timeout")}}
	bus := events.NewEventBus()
	var payload events.ScrapePayload
	bus.Subscribe(events.EventScrapeCompleted, func(e *events.Event) error { return e.Decode(&payload) })

	m := NewManager(db, src, nil, enabled, bus, nil)
	run, err := m.ScrapeAll(context.Background(), true)
	require.NoError(t, err)

	assert.False(t, run.Success)
	assert.False(t, run.Results[models.StoreCoop].Success)
	assert.True(t, run.Results[models.StoreSaveOn].Success)
	assert.Equal(t, "timeout", run.Results[models.StoreCoop].Error)
	assert.Equal(t, 15, run.TotalSaved)
	assert.Equal(t, map[string]string{models.StoreCoop: "timeout"}, payload.Failed)
}

func TestScrapeAllEveryStoreFails(t *testing.T) {
	fail := map[string]error{}
	for _, slug := range models.StoreOrder {
		fail[slug] = errors.New("offline")
	}
	bus := events.NewEventBus()
	failed := 0
	bus.Subscribe(events.EventScrapeFailed, func(*events.Event) error { failed++; return nil })

	m := NewManager(newTestDB(t), failingSource{DemoSource: NewDemoSource(nil, nil), fail: fail}, nil, enabled, bus, nil)
	run, err := m.ScrapeAll(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, run.Success)
	assert.Zero(t, run.TotalProducts)
	assert.Zero(t, run.TotalSaved)
	assert.Equal(t, 1, failed)
}

func TestScrapeStore(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, NewDemoSource(nil, nil), nil, enabled, nil, nil)
	ctx := context.Background()

	res, err := m.ScrapeStore(ctx, "Save-On-Foods", true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, models.StoreSaveOn, res.StoreID)
	assert.Equal(t, 5, res.SavedCount)

	_, err = m.ScrapeStore(ctx, "walmart", true)
	assert.ErrorIs(t, err, ErrUnknownStore)
}

func TestScrapingDisabled(t *testing.T) {
	m := NewManager(newTestDB(t), NewDemoSource(nil, nil), nil, config.ScrapingConfig{}, nil, nil)

	_, err := m.ScrapeAll(context.Background(), true)
	assert.ErrorIs(t, err, ErrScrapingDisabled)
	_, err = m.ScrapeStore(context.Background(), models.StoreCoop, true)
	assert.ErrorIs(t, err, ErrScrapingDisabled)

	status, err := m.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.LastScrape)
}

func TestSchedulerRunsImmediately(t *testing.T) {
	db := newTestDB(t)
	m := NewManager(db, NewDemoSource(nil, nil), nil, enabled, nil, nil)
	s := NewScheduler(m, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		last, err := db.LastScrapeTime(context.Background())
		return err == nil && last != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestSchedulerDisabled(t *testing.T) {
	m := NewManager(newTestDB(t), NewDemoSource(nil, nil), nil, config.ScrapingConfig{}, nil, nil)
	NewScheduler(m, time.Hour, nil).Start(context.Background())
}
