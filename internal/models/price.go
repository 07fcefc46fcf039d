package models

import "time"

type Price struct {
	ID           int64     `json:"id"`
	ItemID       int64     `json:"item_id"`
	StoreID      int64     `json:"store_id"`
	Price        float64   `json:"price"`
	Date         string    `json:"date"`
	Notes        string    `json:"notes"`
	Source       string    `json:"source"`
	CreatedAt    time.Time `json:"created_at"`
	ItemName     string    `json:"item_name,omitempty"`
	Unit         string    `json:"unit,omitempty"`
	StoreName    string    `json:"store_name,omitempty"`
	StoreSlug    string    `json:"store_slug,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
}

// PriceFilter narrows GET /api/prices.
type PriceFilter struct {
	Days   int
	ItemID int64
}

// ComparisonEntry is the latest price of one item at one store.
type ComparisonEntry struct {
	ItemID       int64   `json:"item_id"`
	ItemName     string  `json:"item_name"`
	Unit         string  `json:"unit"`
	StoreSlug    string  `json:"store_slug"`
	StoreName    string  `json:"store_name"`
	Price        float64 `json:"price"`
	Date         string  `json:"date"`
	Source       string  `json:"source"`
	CategoryName string  `json:"category_name"`
}

// TrendPoint is one row of the price-trends series.
type TrendPoint struct {
	Date      string  `json:"date"`
	Price     float64 `json:"price"`
	StoreName string  `json:"store_name"`
	StoreSlug string  `json:"store_slug"`
	Notes     string  `json:"notes"`
	Source    string  `json:"source"`
}

// ScrapedProduct is one product read from a store (or generated in demo mode).
type ScrapedProduct struct {
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	Price     float64   `json:"price"`
	Brand     string    `json:"brand,omitempty"`
	Size      string    `json:"size,omitempty"`
	StoreID   string    `json:"store_id"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Notes renders the price notes column, "N/A" for missing brand or size.
func (p ScrapedProduct) Notes() string {
	brand, size := p.Brand, p.Size
	if brand == "" {
		brand = "N/A"
	}
	if size == "" {
		size = "N/A"
	}
	return "Brand: " + brand + ", Size: " + size
}
