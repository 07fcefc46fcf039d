package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"grocerytracker/internal/models"

	"github.com/go-resty/resty/v2"
)

// StatusError is returned for any failed call. Status is 0 when no response was received.
type StatusError struct {
	Op     string
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	if e.Status == 0 {
		return e.Op
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Client calls the price tracker HTTP API. It never retries or caches.
type Client struct {
	http *resty.Client
	// scrape has no client timeout; scrape calls are bounded by the caller's context.
	scrape *resty.Client
}

type created struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	scrape := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	return &Client{http: c, scrape: scrape}
}

func (c *Client) Stores(ctx context.Context) ([]models.Store, error) {
	var out []models.Store
	err := c.get(ctx, "/api/stores", nil, &out, "Failed to load stores")
	return out, err
}

func (c *Client) AddStore(ctx context.Context, store models.Store) (int64, error) {
	var out created
	err := c.post(ctx, "/api/stores", store, &out, "Failed to add store")
	return out.ID, err
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.get(ctx, "/api/categories", nil, &out, "Failed to load categories")
	return out, err
}

func (c *Client) AddCategory(ctx context.Context, name string) (int64, error) {
	var out created
	err := c.post(ctx, "/api/categories", models.Category{Name: name}, &out, "Failed to add category")
	return out.ID, err
}

func (c *Client) Items(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	params := map[string]string{}
	if filter.Category != "" {
		params["category"] = filter.Category
	}
	if filter.Query != "" {
		params["q"] = filter.Query
	}
	if filter.Store != "" {
		params["store"] = filter.Store
	}

	var out []models.Item
	err := c.get(ctx, "/api/items", params, &out, "Failed to load items")
	return out, err
}

func (c *Client) AddItem(ctx context.Context, item models.Item) (int64, error) {
	var out created
	err := c.post(ctx, "/api/items", item, &out, "Failed to add item")
	return out.ID, err
}

func (c *Client) Prices(ctx context.Context, filter models.PriceFilter) ([]models.Price, error) {
	params := map[string]string{}
	if filter.Days > 0 {
		params["days"] = strconv.Itoa(filter.Days)
	}
	if filter.ItemID > 0 {
		params["item_id"] = strconv.FormatInt(filter.ItemID, 10)
	}

	var out []models.Price
	err := c.get(ctx, "/api/prices", params, &out, "Failed to load prices")
	return out, err
}

func (c *Client) AddPrice(ctx context.Context, price models.Price) (int64, error) {
	var out created
	err := c.post(ctx, "/api/prices", price, &out, "Failed to add price")
	return out.ID, err
}

func (c *Client) PriceComparison(ctx context.Context) ([]models.ComparisonEntry, error) {
	var out []models.ComparisonEntry
	err := c.get(ctx, "/api/price-comparison", nil, &out, "Failed to load price comparison")
	return out, err
}

// PriceTrends loads the trend series of an item; period is "30d", "12w" or empty for the default window.
func (c *Client) PriceTrends(ctx context.Context, itemID int64, period string) ([]models.TrendPoint, error) {
	params := map[string]string{}
	if period != "" {
		params["period"] = period
	}

	var out []models.TrendPoint
	err := c.get(ctx, "/api/price-trends/"+strconv.FormatInt(itemID, 10), params, &out, "Failed to load price trends")
	return out, err
}

func (c *Client) DailySummary(ctx context.Context) (*models.Summary, error) {
	var out models.Summary
	if err := c.get(ctx, "/api/daily-summary", nil, &out, "Failed to load summary"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ScrapeAll(ctx context.Context) (*models.ScrapeRun, error) {
	var out models.ScrapeRun
	resp, err := c.scrape.R().SetContext(ctx).Post("/api/scrape")
	if err := decode(resp, err, &out, "Failed to update prices"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ScrapeStore(ctx context.Context, slug string) (*models.ScrapeResult, error) {
	var out models.ScrapeResult
	resp, err := c.scrape.R().SetContext(ctx).Post("/api/scrape/store/" + url.PathEscape(slug))
	if err := decode(resp, err, &out, "Failed to update store prices"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ScrapeStatus(ctx context.Context) (*models.ScrapeStatus, error) {
	var out models.ScrapeStatus
	if err := c.get(ctx, "/api/scrape/status", nil, &out, "Failed to load scrape status"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/healthz", nil, nil, "Server unavailable")
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any, op string) error {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParams(params)
	}
	resp, err := req.Get(path)
	return decode(resp, err, out, op)
}

func (c *Client) post(ctx context.Context, path string, body, out any, op string) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Post(path)
	return decode(resp, err, out, op)
}

func decode(resp *resty.Response, err error, out any, op string) error {
	if err != nil {
		return &StatusError{Op: op, Err: err}
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return &StatusError{Op: op, Status: resp.StatusCode()}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &StatusError{Op: op, Status: resp.StatusCode(), Err: err}
	}
	return nil
}
