package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"grocerytracker/internal/models"
	"grocerytracker/internal/worker"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// HTMLSource searches each store's website for the basket products and reads
// name, price and category with the store's CSS selectors.
type HTMLSource struct {
	client   *resty.Client
	limiter  *rate.Limiter
	retry    worker.RetryPolicy
	products []Product
	logger   *zerolog.Logger
	now      func() time.Time
}

type HTMLOptions struct {
	UserAgent    string
	Timeout      time.Duration
	RequestDelay time.Duration
	Retry        worker.RetryPolicy
}

func NewHTMLSource(products []Product, opts HTMLOptions, logger *zerolog.Logger) *HTMLSource {
	if len(products) == 0 {
		products = DefaultProducts
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	// one request per RequestDelay across all stores; zero means unpaced
	limit := rate.Inf
	if opts.RequestDelay > 0 {
		limit = rate.Every(opts.RequestDelay)
	}

	return &HTMLSource{
		client:   client,
		limiter:  rate.NewLimiter(limit, 1),
		retry:    opts.Retry,
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *HTMLSource) Mode() string { return models.ModeProduction }

// Scrape returns the products found. A product missing from the results page is
// skipped; a store where nothing at all could be fetched is an error.
func (h *HTMLSource) Scrape(ctx context.Context, store StoreConfig) ([]models.ScrapedProduct, error) {
	if store.BaseURL == "" {
		return nil, fmt.Errorf("store %s has no website", store.Slug)
	}

	var (
		out     []models.ScrapedProduct
		lastErr error
		fetched int
	)
	for _, p := range h.products {
		body, err := h.fetch(ctx, store, p.Name)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			h.logger.Warn().Err(err).Str("store", store.Slug).Str("product", p.Name).Msg("search failed")
			lastErr = err
			continue
		}
		fetched++

		found, ok, err := extract(body, store.Selectors, p)
		if err != nil {
			lastErr = err
			continue
		}
		if !ok {
			h.logger.Debug().Str("store", store.Slug).Str("product", p.Name).Msg("no priced result")
			continue
		}
		found.StoreID = store.Slug
		found.ScrapedAt = h.now()
		out = append(out, found)
	}

	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("scrape %s: %w", store.Slug, lastErr)
	}
	return out, nil
}

func (h *HTMLSource) fetch(ctx context.Context, store StoreConfig, query string) ([]byte, error) {
	target := strings.TrimRight(store.BaseURL, "/") + fmt.Sprintf(store.SearchPath, url.QueryEscape(query))

	var body []byte
	err := h.retry.Do(ctx, func(ctx context.Context) error {
		if err := h.limiter.Wait(ctx); err != nil {
			return worker.Permanent(err)
		}
		res, err := h.client.R().SetContext(ctx).Get(target)
		if err != nil {
			return err
		}
		switch code := res.StatusCode(); {
		case code == http.StatusTooManyRequests || code >= 500:
			return fmt.Errorf("GET %s: status %d", target, code)
		case code >= 400:
			return worker.Permanent(fmt.Errorf("GET %s: status %d", target, code))
		}
		body = res.Body()
		return nil
	})
	return body, err
}

// extract picks the first result card whose title mentions the product and whose
// price parses. Cards without a title are accepted.
func extract(body []byte, sel Selectors, want Product) (models.ScrapedProduct, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.ScrapedProduct{}, false, err
	}

	var (
		found models.ScrapedProduct
		ok    bool
	)
	doc.Find(sel.Product).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := strings.TrimSpace(card.Find(sel.Name).First().Text())
		if title != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(want.Name)) {
			return true
		}
		price, err := ParsePrice(card.Find(sel.Price).First().Text())
		if err != nil {
			return true
		}

		// the store's own breadcrumb only fills in for uncategorised products
		category := want.Category
		if category == "" && sel.Category != "" {
			if c := strings.TrimSpace(card.Find(sel.Category).First().Text()); c != "" {
				category = c
			}
		}
		found = models.ScrapedProduct{
			Name:     want.Name,
			Category: category,
			Unit:     want.Unit,
			Price:    price,
			Brand:    want.Brand,
			Size:     want.Size,
		}
		ok = true
		return false
	})
	return found, ok, nil
}
