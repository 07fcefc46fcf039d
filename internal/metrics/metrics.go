package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grocerytracker"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status class.",
		},
		[]string{"endpoint", "code"},
	)

	scrapeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_runs_total",
			Help:      "Store scrapes by store and result.",
		},
		[]string{"store", "result"},
	)

	pricesSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prices_saved_total",
			Help:      "Prices persisted by source.",
		},
		[]string{"source"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		},
		[]string{"result"},
	)

	scrapeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Wall time of a full scrape run.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, scrapeRuns, pricesSaved, cacheLookups, scrapeDuration)
	})
}

// IncHTTP counts a request for an endpoint label and status code class ("2xx", "4xx"...).
func IncHTTP(endpoint, code string) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
}

// ObserveScrape records one store scrape outcome.
func ObserveScrape(store string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	scrapeRuns.WithLabelValues(store, result).Inc()
}

func AddPricesSaved(source string, n int) {
	if n <= 0 {
		return
	}
	pricesSaved.WithLabelValues(source).Add(float64(n))
}

func ObserveCache(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func ObserveScrapeDuration(seconds float64) {
	scrapeDuration.Observe(seconds)
}
