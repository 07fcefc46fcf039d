package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"grocerytracker/internal/models"
)

const priceSelect = `
        SELECT p.id, p.item_id, p.store_id, p.price, p.date, p.notes, p.source, p.created_at,
               i.name, i.unit, s.name, s.slug, COALESCE(c.name, '')
        FROM prices p
        JOIN items i ON p.item_id = i.id
        JOIN stores s ON p.store_id = s.id
        LEFT JOIN categories c ON i.category_id = c.id`

func scanPrices(rows *sql.Rows) ([]models.Price, error) {
	defer rows.Close()

	prices := []models.Price{}
	for rows.Next() {
		var p models.Price
		err := rows.Scan(&p.ID, &p.ItemID, &p.StoreID, &p.Price, &p.Date, &p.Notes, &p.Source, &p.CreatedAt,
			&p.ItemName, &p.Unit, &p.StoreName, &p.StoreSlug, &p.CategoryName)
		if err != nil {
			return nil, err
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// CreatePrice records a price. Date defaults to today, source to "manual".
func (db *DB) CreatePrice(ctx context.Context, price *models.Price) error {
	if price.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	if price.ItemID == 0 || price.StoreID == 0 {
		return fmt.Errorf("%w: item_id and store_id are required", ErrInvalid)
	}
	if price.Date == "" {
		price.Date = db.today()
	} else if _, err := time.Parse(models.DateLayout, price.Date); err != nil {
		return fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalid, price.Date)
	}
	if price.Source == "" {
		price.Source = models.SourceManual
	}
	price.CreatedAt = db.timestamp()

	result, err := db.ExecContext(ctx, `
        INSERT INTO prices (item_id, store_id, price, date, notes, source, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		price.ItemID, price.StoreID, price.Price, price.Date, price.Notes, price.Source, price.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("unknown item or store: %w", ErrNotFound)
		}
		return err
	}
	price.ID, err = result.LastInsertId()
	return err
}

// GetPrices lists prices within the trailing window, newest first.
func (db *DB) GetPrices(ctx context.Context, filter models.PriceFilter) ([]models.Price, error) {
	days := filter.Days
	if days <= 0 {
		days = models.DefaultPriceDays
	}

	query := priceSelect + ` WHERE p.date >= ?`
	args := []any{db.cutoff(days)}
	if filter.ItemID != 0 {
		query += ` AND p.item_id = ?`
		args = append(args, filter.ItemID)
	}
	query += ` ORDER BY p.date DESC, i.name, p.id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	return scanPrices(rows)
}

// GetPricesOn lists prices recorded for a date, ordered by item name.
func (db *DB) GetPricesOn(ctx context.Context, date string) ([]models.Price, error) {
	rows, err := db.QueryContext(ctx, priceSelect+` WHERE p.date = ? ORDER BY i.name, s.name`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily prices: %w", err)
	}
	return scanPrices(rows)
}

// GetTodayPrices is GetPricesOn for the current date.
func (db *DB) GetTodayPrices(ctx context.Context) ([]models.Price, error) {
	return db.GetPricesOn(ctx, db.today())
}

// GetPriceTrends returns the price series of one item over the trailing window.
func (db *DB) GetPriceTrends(ctx context.Context, itemID int64, days int) ([]models.TrendPoint, error) {
	if days <= 0 {
		days = models.DefaultTrendDays
	}
	rows, err := db.QueryContext(ctx, `
        SELECT p.date, p.price, s.name, s.slug, p.notes, p.source
        FROM prices p
        JOIN stores s ON p.store_id = s.id
        WHERE p.item_id = ? AND p.date >= ?
        ORDER BY p.date DESC, s.name`, itemID, db.cutoff(days))
	if err != nil {
		return nil, fmt.Errorf("failed to load trends: %w", err)
	}
	defer rows.Close()

	points := []models.TrendPoint{}
	for rows.Next() {
		var pt models.TrendPoint
		if err := rows.Scan(&pt.Date, &pt.Price, &pt.StoreName, &pt.StoreSlug, &pt.Notes, &pt.Source); err != nil {
			return nil, err
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}

// GetPriceComparison returns the latest price of every item at every store.
func (db *DB) GetPriceComparison(ctx context.Context) ([]models.ComparisonEntry, error) {
	rows, err := db.QueryContext(ctx, `
        WITH latest AS (
            SELECT item_id, store_id, price, date, source,
                   ROW_NUMBER() OVER (PARTITION BY item_id, store_id ORDER BY date DESC, id DESC) AS rn
            FROM prices
        )
        SELECT i.id, i.name, i.unit, s.slug, s.name, l.price, l.date, l.source, COALESCE(c.name, '')
        FROM latest l
        JOIN items i ON l.item_id = i.id
        JOIN stores s ON l.store_id = s.id
        LEFT JOIN categories c ON i.category_id = c.id
        WHERE l.rn = 1
        ORDER BY i.name, s.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to load comparison: %w", err)
	}
	defer rows.Close()

	entries := []models.ComparisonEntry{}
	for rows.Next() {
		var e models.ComparisonEntry
		err := rows.Scan(&e.ItemID, &e.ItemName, &e.Unit, &e.StoreSlug, &e.StoreName, &e.Price, &e.Date, &e.Source, &e.CategoryName)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountPricesToday counts prices dated today.
func (db *DB) CountPricesToday(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prices WHERE date = ?`, db.today()).Scan(&n)
	return n, err
}

// LastPriceUpdate is the newest created_at of any price, nil when there are none.
func (db *DB) LastPriceUpdate(ctx context.Context) (*time.Time, error) {
	var raw sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM prices`).Scan(&raw); err != nil {
		return nil, err
	}
	return parseTimestamp(raw), nil
}

// LastScrapeTime is the newest created_at of a scraper-sourced price.
func (db *DB) LastScrapeTime(ctx context.Context) (*time.Time, error) {
	var raw sql.NullString
	err := db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM prices WHERE source = ?`, models.SourceScraper).Scan(&raw)
	if err != nil {
		return nil, err
	}
	return parseTimestamp(raw), nil
}

// SaveScraped persists scraped products for one store in a single transaction:
// categories and items are created on demand, then one price row per product.
func (db *DB) SaveScraped(ctx context.Context, storeSlug string, products []models.ScrapedProduct) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	storeID, err := storeIDBySlug(ctx, tx, storeSlug)
	if err != nil {
		return 0, err
	}

	now := db.timestamp()
	date := db.today()
	saved := 0
	for _, p := range products {
		categoryID, err := getOrCreateCategory(ctx, tx, p.Category, now)
		if err != nil {
			return 0, err
		}
		itemID, _, err := getOrCreateItem(ctx, tx, p.Name, categoryID, p.Unit, now)
		if err != nil {
			return 0, err
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO prices (item_id, store_id, price, date, notes, source, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			itemID, storeID, p.Price, date, p.Notes(), models.SourceScraper, now)
		if err != nil {
			return 0, fmt.Errorf("insert price for %s: %w", p.Name, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	db.logger.Info().Str("store", storeSlug).Int("saved", saved).Msg("saved scraped prices")
	return saved, nil
}
