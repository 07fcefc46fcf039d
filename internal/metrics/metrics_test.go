package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint", "2xx")
		ObserveScrapeDuration(0.5)
	})
}

func TestScrapeCounters(t *testing.T) {
	before := testutil.ToFloat64(scrapeRuns.WithLabelValues("coop", "failure"))
	ObserveScrape("coop", false)
	assert.Equal(t, before+1, testutil.ToFloat64(scrapeRuns.WithLabelValues("coop", "failure")))

	saved := testutil.ToFloat64(pricesSaved.WithLabelValues("scraper"))
	AddPricesSaved("scraper", 0)
	AddPricesSaved("scraper", 5)
	assert.Equal(t, saved+5, testutil.ToFloat64(pricesSaved.WithLabelValues("scraper")))
}

func TestCacheCounters(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookups.WithLabelValues("hit"))
	ObserveCache(true)
	ObserveCache(false)
	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookups.WithLabelValues("hit")))
}
