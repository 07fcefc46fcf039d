package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grocerytracker/internal/models"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	// ErrDuplicate is returned when a unique name is inserted twice.
	ErrDuplicate = errors.New("already exists")
	// ErrNotFound wraps sql.ErrNoRows for callers outside this package.
	ErrNotFound = sql.ErrNoRows
	// ErrInvalid marks input rejected before it reaches the database.
	ErrInvalid = errors.New("invalid input")
)

type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
	now    func() time.Time
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_foreign_keys=on&_busy_timeout=5000"
	}
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty in-memory database
		sqlDB.SetMaxOpenConns(1)
		if _, err := sqlDB.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return &DB{DB: sqlDB, path: path, logger: logger, now: time.Now}, nil
}

// Path is the sqlite file backing the handle.
func (db *DB) Path() string {
	return db.path
}

// SetClock overrides the time source used for date windows and timestamps.
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS stores (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            slug TEXT NOT NULL UNIQUE,
            name TEXT NOT NULL UNIQUE,
            location TEXT NOT NULL DEFAULT '',
            website_url TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            scraping_enabled BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS categories (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL UNIQUE COLLATE NOCASE,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            category_id INTEGER REFERENCES categories(id),
            unit TEXT NOT NULL DEFAULT 'each',
            description TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            UNIQUE(name, category_id)
        )`,
		`CREATE TABLE IF NOT EXISTS prices (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            item_id INTEGER NOT NULL REFERENCES items(id),
            store_id INTEGER NOT NULL REFERENCES stores(id),
            price REAL NOT NULL CHECK (price >= 0),
            date TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            source TEXT NOT NULL DEFAULT 'manual',
            created_at DATETIME NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_prices_item_date ON prices(item_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_store_id ON prices(store_id)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date)`,
		`CREATE INDEX IF NOT EXISTS idx_prices_source ON prices(source)`,
		`CREATE INDEX IF NOT EXISTS idx_items_category_id ON items(category_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Seed inserts the default stores and categories. Existing stores keep their
// row but get website and scraping flag refreshed.
func (db *DB) Seed(ctx context.Context, stores []models.Store, categories []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := db.timestamp()
	for _, s := range stores {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO stores (slug, name, location, website_url, phone, scraping_enabled, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(slug) DO UPDATE SET
                website_url = excluded.website_url,
                scraping_enabled = excluded.scraping_enabled`,
			s.Slug, s.Name, s.Location, s.WebsiteURL, s.Phone, s.ScrapingEnabled, now)
		if err != nil {
			return fmt.Errorf("seed store %s: %w", s.Slug, err)
		}
	}

	for _, name := range categories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`, name, now)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	db.logger.Info().Int("stores", len(stores)).Int("categories", len(categories)).Msg("database seeded")
	return nil
}

// SeedItems get-or-creates catalog items by name and category.
func (db *DB) SeedItems(ctx context.Context, items []models.Item) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	created := 0
	for _, it := range items {
		categoryID, err := getOrCreateCategory(ctx, tx, it.CategoryName, db.timestamp())
		if err != nil {
			return 0, err
		}
		_, isNew, err := getOrCreateItem(ctx, tx, it.Name, categoryID, it.Unit, db.timestamp())
		if err != nil {
			return 0, err
		}
		if isNew {
			created++
		}
	}
	return created, tx.Commit()
}

func (db *DB) timestamp() time.Time {
	return db.now().UTC()
}

func (db *DB) today() string {
	return db.now().Format(models.DateLayout)
}

func (db *DB) cutoff(days int) string {
	return db.now().AddDate(0, 0, -days).Format(models.DateLayout)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// parseTimestamp handles aggregate columns, which lose their declared type and come back as text.
func parseTimestamp(raw sql.NullString) *time.Time {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil
	}
	s := strings.TrimSuffix(raw.String, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return &t
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, raw.String); err == nil {
		return &t
	}
	return nil
}
