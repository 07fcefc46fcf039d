package scraper

import (
	"errors"
	"strings"

	"grocerytracker/internal/models"
)

var (
	ErrUnknownStore     = errors.New("unknown store")
	ErrScrapingDisabled = errors.New("scraping is disabled in configuration")
)

// Selectors locate product data on a store's search results page.
type Selectors struct {
	Product  string
	Name     string
	Price    string
	Category string
}

type StoreConfig struct {
	Slug       string
	Name       string
	BaseURL    string
	SearchPath string
	Selectors  Selectors
}

// DefaultStoreConfigs lists the scraped stores in models.StoreOrder.
func DefaultStoreConfigs() []StoreConfig {
	selectors := map[string]Selectors{
		models.StoreIndependent: {Product: ".product-tile", Name: ".product-name", Price: ".price", Category: ".category"},
		models.StoreExtraFoods:  {Product: ".product-tile", Name: ".product-title", Price: ".price-current", Category: ".breadcrumb"},
		models.StoreCoop:        {Product: ".product", Name: ".product-name", Price: ".price-amount", Category: ".category-link"},
		models.StoreSaveOn:      {Product: ".product-card", Name: ".product-title", Price: ".price-value", Category: ".nav-category"},
	}

	configs := make([]StoreConfig, 0, len(models.StoreOrder))
	for _, slug := range models.StoreOrder {
		store, _ := models.LookupStore(slug)
		configs = append(configs, StoreConfig{
			Slug:       store.Slug,
			Name:       store.Name,
			BaseURL:    store.WebsiteURL,
			SearchPath: "/search?search-bar=%s",
			Selectors:  selectors[slug],
		})
	}
	return configs
}

func findStore(configs []StoreConfig, key string) (StoreConfig, bool) {
	key = strings.TrimSpace(key)
	for _, c := range configs {
		if strings.EqualFold(c.Slug, key) || strings.EqualFold(c.Name, key) {
			return c, true
		}
	}
	return StoreConfig{}, false
}
