package commands

import (
	"fmt"
	"io"
	"strconv"

	"grocerytracker/internal/cache"
	"grocerytracker/internal/logging"
	"grocerytracker/internal/models"
	"grocerytracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scrapeForce  bool
	scrapeDryRun bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [store]",
	Short: "Scrapes every store, or only the given store slug or name, and saves the prices.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeForce, "force", false, "scrape even when scraping is disabled in the config")
	scrapeCmd.Flags().BoolVar(&scrapeDryRun, "dry-run", false, "scrape without saving prices")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "scrape")
	if err != nil {
		return err
	}
	defer a.Close()
	if scrapeForce {
		a.cfg.Scraping.Enabled = true
	}

	ctx := cmd.Context()
	db, products, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	manager := a.newManager(db, products, nil)
	save := !scrapeDryRun

	results := make(map[string]models.ScrapeResult)
	if len(args) == 1 {
		res, err := manager.ScrapeStore(ctx, args[0], save)
		if err != nil {
			return fmt.Errorf("scrape %s: %w", args[0], err)
		}
		results[res.StoreID] = *res
	} else {
		run, err := manager.ScrapeAll(ctx, save)
		if err != nil {
			return err
		}
		results = run.Results
	}

	if save {
		// the API may be serving cached views from a shared redis
		store, redisClient := cache.New(ctx, a.cfg.Redis, a.logger)
		if redisClient != nil {
			defer redisClient.Close()
		}
		service.NewPriceService(db, store, a.cfg.Cache.TTL(), nil, logging.Component(a.logger, "service")).InvalidatePrices(ctx)
	}

	writeScrapeResults(cmd.OutOrStdout(), results, save)
	return nil
}

func writeScrapeResults(w io.Writer, results map[string]models.ScrapeResult, saved bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Store", "Status", "Products", "Saved", "Error"})

	var products, savedCount int
	for _, slug := range models.StoreOrder {
		res, ok := results[slug]
		if !ok {
			continue
		}
		name := slug
		if s, ok := models.LookupStore(slug); ok {
			name = s.Name
		}
		status := "ok"
		if !res.Success {
			status = "failed"
		}
		t.AppendRow(table.Row{name, status, res.ProductsCount, res.SavedCount, res.Error})
		products += res.ProductsCount
		savedCount += res.SavedCount
	}

	footer := strconv.Itoa(savedCount)
	if !saved {
		footer = "dry run"
	}
	t.AppendFooter(table.Row{"Total", "", products, footer, ""})
	t.Render()
	fmt.Fprintln(w)
}
