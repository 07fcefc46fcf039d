package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"grocerytracker/internal/config"
	"grocerytracker/internal/database"
	"grocerytracker/internal/domain"
	"grocerytracker/internal/logging"
	"grocerytracker/internal/models"
	"grocerytracker/internal/scraper"
	"grocerytracker/internal/worker"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds what every command needs: config and the process logger.
type app struct {
	cfg    *config.Config
	logger *zerolog.Logger
	closer io.Closer
}

func newApp(cmd *cobra.Command, component string) (*app, error) {
	path := configPath
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &app{cfg: cfg, logger: logging.Component(logger, component), closer: closer}, nil
}

func (a *app) Close() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// openDB opens the database and seeds stores, categories and the catalogue items.
func (a *app) openDB(ctx context.Context) (*database.DB, []scraper.Product, error) {
	products, err := scraper.LoadCatalog(a.cfg.Scraping.CatalogPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.NewDB(a.cfg.Database.Path, logging.Component(a.logger, "database"))
	if err != nil {
		return nil, nil, err
	}
	if err := db.Seed(ctx, models.DefaultStores, models.DefaultCategories); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("seed database: %w", err)
	}
	created, err := db.SeedItems(ctx, scraper.CatalogItems(products))
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("seed items: %w", err)
	}
	if created > 0 {
		a.logger.Info().Int("created", created).Msg("catalog items added")
	}
	return db, products, nil
}

func (a *app) newSource(products []scraper.Product) scraper.Source {
	if a.cfg.Scraping.UseDemoData {
		return scraper.NewDemoSource(products, nil)
	}
	return scraper.NewHTMLSource(products, scraper.HTMLOptions{
		UserAgent:    a.cfg.Scraping.UserAgent,
		RequestDelay: a.cfg.Scraping.RequestDelay(),
		Retry:        worker.RetryPolicy{MaxRetries: a.cfg.Scraping.MaxRetries},
	}, logging.Component(a.logger, "scraper"))
}

func (a *app) newManager(db *database.DB, products []scraper.Product, publisher domain.EventPublisher) *scraper.Manager {
	return scraper.NewManager(
		db,
		a.newSource(products),
		scraper.DefaultStoreConfigs(),
		a.cfg.Scraping,
		publisher,
		logging.Component(a.logger, "scraper"),
	)
}
