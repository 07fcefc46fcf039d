package commands

import (
	"fmt"

	"grocerytracker/internal/models"
	"grocerytracker/internal/scraper"

	"github.com/spf13/cobra"
)

var seedPrices bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Creates the database and seeds stores, categories and catalogue items.",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedPrices, "prices", false, "also record one round of demo prices")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, "seed")
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	db, products, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	stores, err := db.GetStores(ctx)
	if err != nil {
		return err
	}
	categories, err := db.GetCategories(ctx)
	if err != nil {
		return err
	}
	items, err := db.CountItems(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d stores, %d categories, %d items\n", db.Path(), len(stores), len(categories), items)

	if !seedPrices {
		return nil
	}
	cfg := a.cfg.Scraping
	cfg.Enabled = true
	manager := scraper.NewManager(db, scraper.NewDemoSource(products, nil), scraper.DefaultStoreConfigs(), cfg, nil, a.logger)
	run, err := manager.ScrapeAll(ctx, true)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d demo prices recorded (%s)\n", run.TotalSaved, models.ModeDemo)
	return nil
}
