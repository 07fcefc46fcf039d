package models

import "time"

// Summary aggregates the dashboard header cards.
type Summary struct {
	TotalItems     int        `json:"total_items"`
	ActiveStores   int        `json:"active_stores"`
	PricesToday    int        `json:"prices_today"`
	AverageSavings float64    `json:"average_savings"`
	LastUpdate     *time.Time `json:"last_update"`
	Entries        []Price    `json:"entries"`
}

// ScrapeResult reports one store's scrape outcome.
type ScrapeResult struct {
	Success       bool   `json:"success"`
	StoreID       string `json:"store_id,omitempty"`
	ProductsCount int    `json:"products_count"`
	SavedCount    int    `json:"saved_count"`
	Error         string `json:"error,omitempty"`
}

// ScrapeRun is the response of a full scrape.
type ScrapeRun struct {
	Success       bool                    `json:"success"`
	RunID         string                  `json:"run_id"`
	TotalProducts int                     `json:"total_products"`
	TotalSaved    int                     `json:"total_saved"`
	Results       map[string]ScrapeResult `json:"results"`
}

// ScrapeStatus describes automatic scraping.
type ScrapeStatus struct {
	Enabled       bool       `json:"enabled"`
	IntervalHours int        `json:"interval_hours"`
	LastScrape    *time.Time `json:"last_scrape"`
	Mode          string     `json:"mode"`
}
