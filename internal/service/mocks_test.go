package service

import (
	"context"
	"time"

	"grocerytracker/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock of domain.PriceRepository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetStores(ctx context.Context) ([]models.Store, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Store), args.Error(1)
}

func (m *MockRepository) GetStoreBySlug(ctx context.Context, slug string) (*models.Store, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Store), args.Error(1)
}

func (m *MockRepository) CreateStore(ctx context.Context, store *models.Store) error {
	return m.Called(ctx, store).Error(0)
}

func (m *MockRepository) CountActiveStores(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockRepository) GetItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Item), args.Error(1)
}

func (m *MockRepository) CreateItem(ctx context.Context, item *models.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockRepository) CountItems(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) CreatePrice(ctx context.Context, price *models.Price) error {
	return m.Called(ctx, price).Error(0)
}

func (m *MockRepository) GetPrices(ctx context.Context, filter models.PriceFilter) ([]models.Price, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Price), args.Error(1)
}

func (m *MockRepository) GetTodayPrices(ctx context.Context) ([]models.Price, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Price), args.Error(1)
}

func (m *MockRepository) GetPriceTrends(ctx context.Context, itemID int64, days int) ([]models.TrendPoint, error) {
	args := m.Called(ctx, itemID, days)
	return args.Get(0).([]models.TrendPoint), args.Error(1)
}

func (m *MockRepository) GetPriceComparison(ctx context.Context) ([]models.ComparisonEntry, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.ComparisonEntry), args.Error(1)
}

func (m *MockRepository) CountPricesToday(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) LastPriceUpdate(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockRepository) LastScrapeTime(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockRepository) SaveScraped(ctx context.Context, storeSlug string, products []models.ScrapedProduct) (int, error) {
	args := m.Called(ctx, storeSlug, products)
	return args.Int(0), args.Error(1)
}
