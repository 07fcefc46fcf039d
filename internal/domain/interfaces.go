package domain

import (
	"context"
	"time"

	"grocerytracker/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type PriceRepository interface {
	GetStores(ctx context.Context) ([]models.Store, error)
	GetStoreBySlug(ctx context.Context, slug string) (*models.Store, error)
	CreateStore(ctx context.Context, store *models.Store) error
	CountActiveStores(ctx context.Context) (int, error)
	GetCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	GetItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	CountItems(ctx context.Context) (int, error)
	CreatePrice(ctx context.Context, price *models.Price) error
	GetPrices(ctx context.Context, filter models.PriceFilter) ([]models.Price, error)
	GetTodayPrices(ctx context.Context) ([]models.Price, error)
	GetPriceTrends(ctx context.Context, itemID int64, days int) ([]models.TrendPoint, error)
	GetPriceComparison(ctx context.Context) ([]models.ComparisonEntry, error)
	CountPricesToday(ctx context.Context) (int, error)
	LastPriceUpdate(ctx context.Context) (*time.Time, error)
	LastScrapeTime(ctx context.Context) (*time.Time, error)
	SaveScraped(ctx context.Context, storeSlug string, products []models.ScrapedProduct) (int, error)
}

// Cache stores serialized responses. Get reports a miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type ScrapeRunner interface {
	ScrapeAll(ctx context.Context, save bool) (*models.ScrapeRun, error)
	ScrapeStore(ctx context.Context, slug string, save bool) (*models.ScrapeResult, error)
	Status(ctx context.Context) (*models.ScrapeStatus, error)
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type SheetsWriter interface {
	ReplacePrices(ctx context.Context, entries []models.ComparisonEntry) error
}
