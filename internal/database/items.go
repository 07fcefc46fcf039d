package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"grocerytracker/internal/models"

	"github.com/shopspring/decimal"
)

// GetItems lists items with their category and trend, ordered by name.
func (db *DB) GetItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	query := `
        SELECT i.id, i.name, COALESCE(i.category_id, 0), COALESCE(c.name, ''), i.unit, i.description, i.created_at
        FROM items i
        LEFT JOIN categories c ON i.category_id = c.id
        WHERE 1 = 1`
	var args []any

	if v := strings.TrimSpace(filter.Category); v != "" {
		query += ` AND c.name = ? COLLATE NOCASE`
		args = append(args, v)
	}
	if v := strings.TrimSpace(filter.Query); v != "" {
		query += ` AND i.name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+v+"%")
	}
	if v := strings.TrimSpace(filter.Store); v != "" {
		query += ` AND EXISTS (
            SELECT 1 FROM prices p JOIN stores s ON p.store_id = s.id
            WHERE p.item_id = i.id AND s.slug = ?)`
		args = append(args, v)
	}
	query += ` ORDER BY i.name`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var it models.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.CategoryID, &it.CategoryName, &it.Unit, &it.Description, &it.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trends, err := db.ItemTrends(ctx, models.TrendWindowDays)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].TrendPct = trends[items[i].ID]
	}
	return items, nil
}

// CreateItem inserts an item. The category must exist.
func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalid)
	}
	if item.Unit == "" {
		item.Unit = models.DefaultUnit
	}
	item.CreatedAt = db.timestamp()

	var categoryID any
	if item.CategoryID != 0 {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM categories WHERE id = ?`, item.CategoryID).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("category %d: %w", item.CategoryID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		categoryID = item.CategoryID
		item.CategoryName = name
	}

	result, err := db.ExecContext(ctx, `
        INSERT INTO items (name, category_id, unit, description, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		item.Name, categoryID, item.Unit, item.Description, item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("item %q: %w", item.Name, ErrDuplicate)
		}
		return err
	}
	item.ID, err = result.LastInsertId()
	return err
}

// CountItems returns the number of tracked items.
func (db *DB) CountItems(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

// ItemTrends returns, per item, the percent change between the average price on the
// first and the last price date of the trailing window. Items priced on fewer than two
// dates are omitted.
func (db *DB) ItemTrends(ctx context.Context, days int) (map[int64]float64, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT item_id, date, AVG(price)
        FROM prices
        WHERE date >= ?
        GROUP BY item_id, date
        ORDER BY item_id, date`, db.cutoff(days))
	if err != nil {
		return nil, fmt.Errorf("failed to load trends: %w", err)
	}
	defer rows.Close()

	type span struct {
		first, last float64
		dates       int
	}
	spans := make(map[int64]*span)
	for rows.Next() {
		var (
			itemID int64
			date   string
			avg    float64
		)
		if err := rows.Scan(&itemID, &date, &avg); err != nil {
			return nil, err
		}
		s, ok := spans[itemID]
		if !ok {
			s = &span{first: avg}
			spans[itemID] = s
		}
		s.last = avg
		s.dates++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trends := make(map[int64]float64, len(spans))
	for id, s := range spans {
		if s.dates < 2 || s.first == 0 {
			continue
		}
		first := decimal.NewFromFloat(s.first)
		pct := decimal.NewFromFloat(s.last).Sub(first).Div(first).Mul(decimal.NewFromInt(100))
		trends[id] = pct.Round(2).InexactFloat64()
	}
	return trends, nil
}

func getOrCreateItem(ctx context.Context, q querier, name string, categoryID int64, unit string, now time.Time) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM items WHERE name = ? AND category_id = ?`, name, categoryID).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, err
	}

	if unit == "" {
		unit = models.DefaultUnit
	}
	result, err := q.ExecContext(ctx,
		`INSERT INTO items (name, category_id, unit, created_at) VALUES (?, ?, ?, ?)`, name, categoryID, unit, now)
	if err != nil {
		return 0, false, fmt.Errorf("create item %s: %w", name, err)
	}
	id, err = result.LastInsertId()
	return id, true, err
}
