package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"grocerytracker/internal/dashboard"
	"grocerytracker/internal/database"
	"grocerytracker/internal/export"
	"grocerytracker/internal/models"
	"grocerytracker/internal/scraper"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var periodPattern = regexp.MustCompile(`^(\d+)([dw])$`)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.PingContext(r.Context()); err != nil {
			s.logger.Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := s.prices.Stores(r.Context())
	if err != nil {
		s.fail(w, err, "failed to list stores")
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

func (s *HTTPServer) handleAddStore(w http.ResponseWriter, r *http.Request) {
	var store models.Store
	if !decodeBody(w, r, &store) {
		return
	}
	if err := s.prices.AddStore(r.Context(), &store); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Store already exists")
			return
		}
		s.fail(w, err, "failed to add store")
		return
	}
	writeCreated(w, store.ID)
}

func (s *HTTPServer) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.prices.Categories(r.Context())
	if err != nil {
		s.fail(w, err, "failed to list categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *HTTPServer) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if !decodeBody(w, r, &category) {
		return
	}
	if err := s.prices.AddCategory(r.Context(), &category); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Category already exists")
			return
		}
		s.fail(w, err, "failed to add category")
		return
	}
	writeCreated(w, category.ID)
}

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ItemFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Query:    strings.TrimSpace(q.Get("q")),
		Store:    strings.TrimSpace(q.Get("store")),
	}
	items, err := s.prices.Items(r.Context(), filter)
	if err != nil {
		s.fail(w, err, "failed to list items")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var item models.Item
	if !decodeBody(w, r, &item) {
		return
	}
	if err := s.prices.AddItem(r.Context(), &item); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Item already exists")
			return
		}
		s.fail(w, err, "failed to add item")
		return
	}
	writeCreated(w, item.ID)
}

func (s *HTTPServer) handleListPrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.PriceFilter{
		Days:   queryInt(q.Get("days"), models.DefaultPriceDays),
		ItemID: int64(queryInt(q.Get("item_id"), 0)),
	}
	prices, err := s.prices.Prices(r.Context(), filter)
	if err != nil {
		s.fail(w, err, "failed to list prices")
		return
	}
	writeJSON(w, http.StatusOK, prices)
}

func (s *HTTPServer) handleAddPrice(w http.ResponseWriter, r *http.Request) {
	var price models.Price
	if !decodeBody(w, r, &price) {
		return
	}
	if err := s.prices.AddPrice(r.Context(), &price); err != nil {
		s.fail(w, err, "failed to add price")
		return
	}
	writeCreated(w, price.ID)
}

func (s *HTTPServer) handleComparison(w http.ResponseWriter, r *http.Request) {
	entries, err := s.prices.Comparison(r.Context())
	if err != nil {
		s.fail(w, err, "failed to load price comparison")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *HTTPServer) handleTrends(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || itemID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	days := queryInt(r.URL.Query().Get("days"), models.DefaultTrendDays)
	if period := strings.TrimSpace(r.URL.Query().Get("period")); period != "" {
		days, err = parsePeriod(period)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	points, err := s.prices.Trends(r.Context(), itemID, days)
	if err != nil {
		s.fail(w, err, "failed to load price trends")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *HTTPServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.prices.Summary(r.Context())
	if err != nil {
		s.fail(w, err, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stores, err := s.prices.Stores(ctx)
	if err != nil {
		s.fail(w, err, "failed to export prices")
		return
	}
	items, err := s.prices.Items(ctx, models.ItemFilter{})
	if err != nil {
		s.fail(w, err, "failed to export prices")
		return
	}
	entries, err := s.prices.Comparison(ctx)
	if err != nil {
		s.fail(w, err, "failed to export prices")
		return
	}

	now := s.now()
	var buf bytes.Buffer
	if err := export.WriteComparison(&buf, stores, dashboard.BuildRows(items, entries), now); err != nil {
		s.fail(w, err, "failed to export prices")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(now)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *HTTPServer) handleScrapeAll(w http.ResponseWriter, r *http.Request) {
	if s.scraper == nil {
		writeError(w, http.StatusBadRequest, "Scraping is disabled in configuration")
		return
	}
	s.logger.Info().Msg("manual scrape triggered")

	run, err := s.scraper.ScrapeAll(r.Context(), true)
	if err != nil {
		s.scrapeFailed(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *HTTPServer) handleScrapeStore(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if s.scraper == nil {
		writeError(w, http.StatusBadRequest, "Scraping is disabled in configuration")
		return
	}
	s.logger.Info().Str("store", slug).Msg("manual store scrape triggered")

	result, err := s.scraper.ScrapeStore(r.Context(), slug, true)
	if err != nil {
		s.scrapeFailed(w, err, slug)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleScrapeStatus(w http.ResponseWriter, r *http.Request) {
	if s.scraper == nil {
		writeJSON(w, http.StatusOK, models.ScrapeStatus{Mode: models.ModeDemo})
		return
	}
	status, err := s.scraper.Status(r.Context())
	if err != nil {
		s.fail(w, err, "failed to load scrape status")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *HTTPServer) scrapeFailed(w http.ResponseWriter, err error, slug string) {
	switch {
	case errors.Is(err, scraper.ErrScrapingDisabled):
		writeError(w, http.StatusBadRequest, "Scraping is disabled in configuration")
	case errors.Is(err, scraper.ErrUnknownStore):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown store: %s", slug))
	default:
		s.logger.Error().Err(err).Str("store", slug).Msg("manual scrape failed")
		writeError(w, http.StatusInternalServerError, "failed to scrape prices")
	}
}

// fail maps service errors: validation to 400, missing rows to 404, the rest to 500.
func (s *HTTPServer) fail(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, database.ErrInvalid):
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), database.ErrInvalid.Error()+": "))
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error().Err(err).Msg(message)
		writeError(w, http.StatusInternalServerError, message)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// queryInt falls back to def for empty or malformed values.
func queryInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// parsePeriod turns "30d" or "12w" into a number of days.
func parsePeriod(period string) (int, error) {
	m := periodPattern.FindStringSubmatch(strings.ToLower(period))
	if m == nil {
		return 0, fmt.Errorf("invalid period %q; use e.g. 30d or 12w", period)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid period %q; use e.g. 30d or 12w", period)
	}
	if m[2] == "w" {
		n *= 7
	}
	return n, nil
}
