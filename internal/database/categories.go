package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"grocerytracker/internal/models"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) GetCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category; ErrDuplicate when the name exists (case-insensitive).
func (db *DB) CreateCategory(ctx context.Context, category *models.Category) error {
	name := strings.TrimSpace(category.Name)
	if name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalid)
	}
	category.Name = name
	category.CreatedAt = db.timestamp()

	result, err := db.ExecContext(ctx, `INSERT INTO categories (name, created_at) VALUES (?, ?)`, name, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", name, ErrDuplicate)
		}
		return err
	}
	category.ID, err = result.LastInsertId()
	return err
}

func getOrCreateCategory(ctx context.Context, q querier, name string, now time.Time) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: category name is required", ErrInvalid)
	}

	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := q.ExecContext(ctx, `INSERT INTO categories (name, created_at) VALUES (?, ?)`, name, now)
	if err != nil {
		return 0, fmt.Errorf("create category %s: %w", name, err)
	}
	return result.LastInsertId()
}
