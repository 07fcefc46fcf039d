package commands

import (
	"context"
	"fmt"
	"time"

	"grocerytracker/internal/dashboard"
	"grocerytracker/internal/database"
	"grocerytracker/internal/export"
	"grocerytracker/internal/models"
	"grocerytracker/internal/telegram"

	"github.com/spf13/cobra"
)

var (
	exportSheets   bool
	exportTelegram bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Writes today's price comparison to an xlsx workbook.",
	Long: "Writes today's price comparison to an xlsx workbook. Without a file argument the " +
		"workbook is placed in the configured exports directory with a dated name.",
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportSheets, "sheets", false, "also replace the Google Sheets price tab")
	exportCmd.Flags().BoolVar(&exportTelegram, "telegram", false, "also send the workbook to the Telegram chat")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "export")
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	db, _, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	stores, rows, entries, err := comparisonRows(ctx, db)
	if err != nil {
		return err
	}

	target := a.cfg.Exports.Path
	if len(args) == 1 {
		target = args[0]
	}
	path, err := export.SaveFile(target, stores, rows, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d items written to %s\n", len(rows), path)

	if exportSheets {
		sheets := initGoogleSheets(ctx, a.cfg, a.logger)
		if sheets == nil {
			return fmt.Errorf("google sheets is not configured")
		}
		if err := sheets.ReplacePrices(ctx, entries); err != nil {
			return fmt.Errorf("sheets export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d prices published to sheet %q\n", len(entries), a.cfg.Google.SheetName)
	}

	if exportTelegram {
		if a.cfg.Telegram.BotToken == "" {
			return fmt.Errorf("telegram is not configured")
		}
		bot, err := telegram.NewBot(a.cfg.Telegram.BotToken)
		if err != nil {
			return err
		}
		if err := telegram.NewNotifier(bot, a.cfg.Telegram.ChatID, a.logger).SendWorkbook(ctx, path); err != nil {
			return fmt.Errorf("telegram export: %w", err)
		}
	}
	return nil
}

func comparisonRows(ctx context.Context, db *database.DB) ([]models.Store, []dashboard.Row, []models.ComparisonEntry, error) {
	stores, err := db.GetStores(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load stores: %w", err)
	}
	items, err := db.GetItems(ctx, models.ItemFilter{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load items: %w", err)
	}
	entries, err := db.GetPriceComparison(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load price comparison: %w", err)
	}
	return stores, dashboard.BuildRows(items, entries), entries, nil
}
