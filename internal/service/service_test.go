package service

import (
	"context"
	"testing"
	"time"

	"grocerytracker/internal/cache"
	"grocerytracker/internal/events"
	"grocerytracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(repo *MockRepository) (*PriceService, *events.EventBus) {
	bus := events.NewEventBus()
	return NewPriceService(repo, cache.NewMemoryCache(), time.Minute, bus, nil), bus
}

func TestStoresAreCached(t *testing.T) {
	repo := new(MockRepository)
	s, _ := newTestService(repo)
	ctx := context.Background()

	stores := []models.Store{{ID: 1, Slug: models.StoreCoop, Name: "The Co-op"}}
	repo.On("GetStores", mock.Anything).Return(stores, nil).Once()

	for i := 0; i < 3; i++ {
		got, err := s.Stores(ctx)
		require.NoError(t, err)
		assert.Equal(t, "The Co-op", got[0].Name)
	}
	repo.AssertNumberOfCalls(t, "GetStores", 1)
}

func TestAddStoreInvalidatesAndPublishes(t *testing.T) {
	repo := new(MockRepository)
	s, bus := newTestService(repo)
	ctx := context.Background()

	var published []events.CatalogPayload
	bus.Subscribe(events.EventCatalogChanged, func(e *events.Event) error {
		var p events.CatalogPayload
		require.NoError(t, e.Decode(&p))
		published = append(published, p)
		return nil
	})

	repo.On("GetStores", mock.Anything).Return([]models.Store{}, nil).Twice()
	repo.On("CreateStore", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Store).ID = 9
	}).Return(nil).Once()

	_, err := s.Stores(ctx)
	require.NoError(t, err)
	require.NoError(t, s.AddStore(ctx, &models.Store{Name: "Corner"}))
	_, err = s.Stores(ctx)
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "GetStores", 2)
	require.Len(t, published, 1)
	assert.Equal(t, events.CatalogPayload{Kind: "store", ID: 9, Name: "Corner"}, published[0])
}

func TestAddStoreErrorSkipsInvalidation(t *testing.T) {
	repo := new(MockRepository)
	s, _ := newTestService(repo)

	repo.On("CreateStore", mock.Anything, mock.Anything).Return(assert.AnError).Once()
	assert.ErrorIs(t, s.AddStore(context.Background(), &models.Store{Name: "x"}), assert.AnError)
}

func TestItemsCacheKeyIncludesFilter(t *testing.T) {
	repo := new(MockRepository)
	s, _ := newTestService(repo)
	ctx := context.Background()

	dairy := models.ItemFilter{Category: "Dairy"}
	repo.On("GetItems", mock.Anything, dairy).Return([]models.Item{{ID: 1, Name: "Milk 2%"}}, nil).Once()
	repo.On("GetItems", mock.Anything, models.ItemFilter{}).Return([]models.Item{{ID: 1}, {ID: 2}}, nil).Once()

	got, err := s.Items(ctx, dairy)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.Items(ctx, models.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Items(ctx, dairy)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}

func TestAddPrice(t *testing.T) {
	repo := new(MockRepository)
	s, bus := newTestService(repo)
	ctx := context.Background()

	var got events.PricePayload
	bus.Subscribe(events.EventPriceRecorded, func(e *events.Event) error {
		return e.Decode(&got)
	})

	repo.On("GetPriceComparison", mock.Anything).Return([]models.ComparisonEntry{}, nil).Twice()
	repo.On("CreatePrice", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := s.Comparison(ctx)
	require.NoError(t, err)
	require.NoError(t, s.AddPrice(ctx, &models.Price{ItemID: 1, StoreID: 2, Price: 3.49, Date: "2026-03-10"}))
	_, err = s.Comparison(ctx)
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "GetPriceComparison", 2)
	assert.Equal(t, events.PricePayload{ItemID: 1, StoreID: 2, Price: 3.49, Date: "2026-03-10"}, got)
}

func TestPricesDefaults(t *testing.T) {
	repo := new(MockRepository)
	s, _ := newTestService(repo)

	repo.On("GetPrices", mock.Anything, models.PriceFilter{Days: models.DefaultPriceDays}).Return([]models.Price{}, nil).Once()
	repo.On("GetPriceTrends", mock.Anything, int64(4), models.DefaultTrendDays).Return([]models.TrendPoint{}, nil).Once()

	_, err := s.Prices(context.Background(), models.PriceFilter{})
	require.NoError(t, err)
	_, err = s.Trends(context.Background(), 4, 0)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLoadErrorIsNotCached(t *testing.T) {
	repo := new(MockRepository)
	s, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("GetCategories", mock.Anything).Return([]models.Category(nil), assert.AnError).Once()
	repo.On("GetCategories", mock.Anything).Return([]models.Category{{Name: "Dairy"}}, nil).Once()

	_, err := s.Categories(ctx)
	assert.Error(t, err)
	got, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSummary(t *testing.T) {
	repo := new(MockRepository)
	s, _ := newTestService(repo)
	ctx := context.Background()

	last := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	repo.On("CountItems", mock.Anything).Return(5, nil)
	repo.On("CountActiveStores", mock.Anything).Return(4, nil)
	repo.On("CountPricesToday", mock.Anything).Return(20, nil)
	repo.On("LastPriceUpdate", mock.Anything).Return(&last, nil)
	repo.On("GetTodayPrices", mock.Anything).Return([]models.Price{{ID: 1, ItemName: "Bananas"}}, nil)
	repo.On("GetPriceComparison", mock.Anything).Return([]models.ComparisonEntry{
		{ItemID: 1, StoreSlug: models.StoreCoop, Price: 1.19},
		{ItemID: 1, StoreSlug: models.StoreSaveOn, Price: 1.49},
		{ItemID: 2, StoreSlug: models.StoreCoop, Price: 5.49},
		{ItemID: 2, StoreSlug: models.StoreIndependent, Price: 5.99},
		{ItemID: 3, StoreSlug: models.StoreCoop, Price: 2.79},
	}, nil)

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalItems)
	assert.Equal(t, 4, summary.ActiveStores)
	assert.Equal(t, 20, summary.PricesToday)
	assert.Equal(t, 0.4, summary.AverageSavings)
	require.NotNil(t, summary.LastUpdate)
	assert.True(t, summary.LastUpdate.Equal(last))
	assert.Len(t, summary.Entries, 1)

	_, err = s.Summary(ctx)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "CountItems", 1)
}

func TestSummaryError(t *testing.T) {
	repo := new(MockRepository)
	s, _ := newTestService(repo)

	repo.On("CountItems", mock.Anything).Return(0, assert.AnError)
	_, err := s.Summary(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestAverageSavings(t *testing.T) {
	assert.Equal(t, 0.0, AverageSavings(nil))
	assert.Equal(t, 0.0, AverageSavings([]models.ComparisonEntry{{ItemID: 1, Price: 3}}))
	assert.Equal(t, 0.33, AverageSavings([]models.ComparisonEntry{
		{ItemID: 1, Price: 1.00},
		{ItemID: 1, Price: 1.333},
	}))
}

func TestNoCacheWhenTTLZero(t *testing.T) {
	repo := new(MockRepository)
	s := NewPriceService(repo, cache.NewMemoryCache(), 0, nil, nil)

	repo.On("GetStores", mock.Anything).Return([]models.Store{}, nil).Twice()
	_, _ = s.Stores(context.Background())
	_, _ = s.Stores(context.Background())
	repo.AssertNumberOfCalls(t, "GetStores", 2)
}
