package models

const (
	SourceManual  = "manual"
	SourceScraper = "scraper"
)

const (
	ModeDemo       = "demo"
	ModeProduction = "production"
)

const (
	// DateLayout is the storage format of price dates.
	DateLayout = "2006-01-02"

	DefaultUnit = "each"

	// DefaultPriceDays is the window of GET /api/prices.
	DefaultPriceDays = 30

	// DefaultTrendDays is the window of GET /api/price-trends.
	DefaultTrendDays = 90

	// TrendWindowDays is the window used for Item.TrendPct.
	TrendWindowDays = 30

	// DefaultCacheTTL in seconds.
	DefaultCacheTTL = 300

	DefaultScrapeIntervalHours = 6
)
