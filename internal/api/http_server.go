package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"grocerytracker/internal/config"
	"grocerytracker/internal/domain"
	"grocerytracker/internal/metrics"
	"grocerytracker/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// PriceAPI is the service layer behind the handlers.
type PriceAPI interface {
	Stores(ctx context.Context) ([]models.Store, error)
	AddStore(ctx context.Context, store *models.Store) error
	Categories(ctx context.Context) ([]models.Category, error)
	AddCategory(ctx context.Context, category *models.Category) error
	Items(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	AddItem(ctx context.Context, item *models.Item) error
	Prices(ctx context.Context, filter models.PriceFilter) ([]models.Price, error)
	AddPrice(ctx context.Context, price *models.Price) error
	Comparison(ctx context.Context) ([]models.ComparisonEntry, error)
	Trends(ctx context.Context, itemID int64, days int) ([]models.TrendPoint, error)
	Summary(ctx context.Context) (*models.Summary, error)
}

// Pinger backs the liveness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Prices  PriceAPI
	Scraper domain.ScrapeRunner
	Health  Pinger
	Logger  *zerolog.Logger
	Now     func() time.Time
}

// HTTPServer serves the JSON API consumed by the dashboard.
type HTTPServer struct {
	cfg     config.ServerConfig
	prices  PriceAPI
	scraper domain.ScrapeRunner
	health  Pinger
	logger  zerolog.Logger
	now     func() time.Time
	server  *http.Server
	limiter *rateLimiter
}

func NewHTTPServer(cfg config.ServerConfig, deps Deps) *HTTPServer {
	logger := zerolog.Nop()
	if deps.Logger != nil {
		logger = deps.Logger.With().Str("component", "http").Logger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	srv := &HTTPServer{
		cfg:     cfg,
		prices:  deps.Prices,
		scraper: deps.Scraper,
		health:  deps.Health,
		logger:  logger,
		now:     now,
		limiter: newRateLimiter(cfg.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", srv.handleHealth)
	mux.HandleFunc("GET /api/stores", srv.handleListStores)
	mux.HandleFunc("POST /api/stores", srv.handleAddStore)
	mux.HandleFunc("GET /api/categories", srv.handleListCategories)
	mux.HandleFunc("POST /api/categories", srv.handleAddCategory)
	mux.HandleFunc("GET /api/items", srv.handleListItems)
	mux.HandleFunc("POST /api/items", srv.handleAddItem)
	mux.HandleFunc("GET /api/prices", srv.handleListPrices)
	mux.HandleFunc("POST /api/prices", srv.handleAddPrice)
	mux.HandleFunc("GET /api/price-comparison", srv.handleComparison)
	mux.HandleFunc("GET /api/price-trends/{id}", srv.handleTrends)
	mux.HandleFunc("GET /api/daily-summary", srv.handleSummary)
	mux.HandleFunc("GET /api/export.xlsx", srv.handleExport)
	mux.HandleFunc("POST /api/scrape", srv.handleScrapeAll)
	mux.HandleFunc("POST /api/scrape/store/{slug}", srv.handleScrapeStore)
	mux.HandleFunc("GET /api/scrape/status", srv.handleScrapeStatus)

	handler := srv.loggingMiddleware(srv.limiter.Wrap(mux))

	srv.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// a full scrape in production mode paces requests and can run long
		WriteTimeout: 5 * time.Minute,
	}
	return srv
}

// Handler exposes the middleware-wrapped mux.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint, fmt.Sprintf("%dxx", recorder.status/100))

		event := s.logger.Info()
		if recorder.status >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		event.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", clientIP(r)).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"success": false, "error": message})
}

func writeCreated(w http.ResponseWriter, id int64) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
