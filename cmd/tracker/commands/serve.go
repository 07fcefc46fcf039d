package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocerytracker/internal/api"
	"grocerytracker/internal/cache"
	"grocerytracker/internal/config"
	"grocerytracker/internal/database"
	"grocerytracker/internal/events"
	"grocerytracker/internal/google"
	"grocerytracker/internal/logging"
	"grocerytracker/internal/metrics"
	"grocerytracker/internal/scraper"
	"grocerytracker/internal/service"
	"grocerytracker/internal/telegram"
	"grocerytracker/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API with the scrape scheduler, backups and the export outbox.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, "api-main")
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, logger := a.cfg, a.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, products, err := a.openDB(ctx)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	store, redisClient := cache.New(ctx, cfg.Redis, logging.Component(logger, "cache"))
	if redisClient != nil {
		defer redisClient.Close()
	}

	bus := events.NewEventBus()
	bus.OnError(func(ev *events.Event, err error) {
		logger.Error().Err(err).Str("event", ev.Type).Msg("event handler failed")
	})

	svc := service.NewPriceService(db, store, cfg.Cache.TTL(), bus, logging.Component(logger, "service"))
	invalidate := func(*events.Event) error {
		svc.InvalidatePrices(ctx)
		return nil
	}
	bus.Subscribe(events.EventScrapeCompleted, invalidate)
	bus.Subscribe(events.EventScrapeFailed, invalidate)

	queue := worker.NewQueue(redisClient, worker.RetryPolicy{}, logging.Component(logger, "worker"))
	wireOutbox(ctx, cfg, bus, queue, svc, logger)

	manager := a.newManager(db, products, bus)
	server := api.NewHTTPServer(cfg.Server, api.Deps{
		Prices:  svc,
		Scraper: manager,
		Health:  db,
		Logger:  logging.Component(logger, "http"),
	})

	go queue.Start(ctx)
	go scraper.NewScheduler(manager, cfg.Scraping.Interval(), logging.Component(logger, "scheduler")).Start(ctx)
	go database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup")).Start(ctx)
	startMetrics(ctx, cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("mode", cfg.Scraping.Mode()).
		Int("catalog", len(products)).
		Msg("API server started")

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	logger.Info().Msg("API server stopped")
	return nil
}

// wireOutbox forwards finished scrapes to Google Sheets and Telegram through the
// worker queue, so slow or failing publishers never hold up a scrape.
func wireOutbox(
	ctx context.Context,
	cfg *config.Config,
	bus *events.EventBus,
	queue *worker.Queue,
	svc *service.PriceService,
	logger *zerolog.Logger,
) {
	enqueue := func(taskType string) events.EventHandler {
		return func(ev *events.Event) error {
			return queue.Enqueue(ctx, taskType, json.RawMessage(ev.Payload))
		}
	}

	if sheets := initGoogleSheets(ctx, cfg, logger); sheets != nil {
		queue.Handle(worker.TaskSheetsSync, func(ctx context.Context, _ worker.Task) error {
			entries, err := svc.Comparison(ctx)
			if err != nil {
				return err
			}
			return sheets.ReplacePrices(ctx, entries)
		})
		bus.Subscribe(events.EventScrapeCompleted, enqueue(worker.TaskSheetsSync))
	}

	if cfg.Telegram.BotToken != "" {
		bot, err := telegram.NewBot(cfg.Telegram.BotToken)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
			return
		}
		notifier := telegram.NewNotifier(bot, cfg.Telegram.ChatID, logger)
		queue.Handle(worker.TaskNotify, notifier.HandleTask)
		bus.Subscribe(events.EventScrapeCompleted, enqueue(worker.TaskNotify))
		bus.Subscribe(events.EventScrapeFailed, enqueue(worker.TaskNotify))
		logger.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("telegram notifications enabled")
	}
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.SpreadsheetID == "" {
		return nil
	}

	sheets, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.SpreadsheetID, cfg.Google.SheetName)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheets.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without sheets")
		return nil
	}

	logger.Info().Str("sheet", cfg.Google.SheetName).Msg("google sheets connected")
	return sheets
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
