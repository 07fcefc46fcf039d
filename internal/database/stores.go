package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"grocerytracker/internal/models"
)

const storeColumns = `id, slug, name, location, website_url, phone, scraping_enabled, created_at`

func scanStore(row interface{ Scan(...any) error }) (models.Store, error) {
	var s models.Store
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Location, &s.WebsiteURL, &s.Phone, &s.ScrapingEnabled, &s.CreatedAt)
	return s, err
}

// GetStores returns all stores ordered by name.
func (db *DB) GetStores(ctx context.Context) ([]models.Store, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// GetStoreBySlug looks a store up by slug.
func (db *DB) GetStoreBySlug(ctx context.Context, slug string) (*models.Store, error) {
	row := db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE slug = ?`, slug)
	s, err := scanStore(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStore inserts a store; ErrDuplicate when the slug or name is taken.
func (db *DB) CreateStore(ctx context.Context, store *models.Store) error {
	if strings.TrimSpace(store.Name) == "" {
		return fmt.Errorf("%w: store name is required", ErrInvalid)
	}
	if store.Slug == "" {
		store.Slug = slugify(store.Name)
	}
	store.CreatedAt = db.timestamp()

	result, err := db.ExecContext(ctx, `
        INSERT INTO stores (slug, name, location, website_url, phone, scraping_enabled, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		store.Slug, store.Name, store.Location, store.WebsiteURL, store.Phone, store.ScrapingEnabled, store.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("store %q: %w", store.Name, ErrDuplicate)
		}
		return err
	}

	store.ID, err = result.LastInsertId()
	return err
}

// CountActiveStores counts stores with scraping enabled.
func (db *DB) CountActiveStores(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stores WHERE scraping_enabled = 1`).Scan(&n)
	return n, err
}

func storeIDBySlug(ctx context.Context, q querier, slug string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM stores WHERE slug = ?`, slug).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("store %q: %w", slug, ErrNotFound)
	}
	return id, err
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
