package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"grocerytracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(":memory:", nil)
	require.NoError(t, err)
	db.SetClock(func() time.Time { return testNow })
	t.Cleanup(func() { db.Close() })
	return db
}

func setupFileDB(t *testing.T, path string) *DB {
	t.Helper()
	db, err := NewDB(path, nil)
	require.NoError(t, err)
	db.SetClock(func() time.Time { return testNow })
	t.Cleanup(func() { db.Close() })
	return db
}

func seededDB(t *testing.T) *DB {
	t.Helper()
	db := setupTestDB(t)
	require.NoError(t, db.Seed(context.Background(), models.DefaultStores, models.DefaultCategories))
	return db
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	db, err := NewDB(dbPath, nil)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Seed(ctx, models.DefaultStores, models.DefaultCategories))
	require.NoError(t, db.Seed(ctx, models.DefaultStores, models.DefaultCategories))

	stores, err := db.GetStores(ctx)
	require.NoError(t, err)
	assert.Len(t, stores, len(models.DefaultStores))

	categories, err := db.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, len(models.DefaultCategories))

	active, err := db.CountActiveStores(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(models.DefaultStores), active)
}

func TestSeedItems(t *testing.T) {
	db := seededDB(t)
	ctx := context.Background()

	items := []models.Item{
		{Name: "Bananas", CategoryName: "Produce", Unit: "per lb"},
		{Name: "Milk 2%", CategoryName: "Dairy", Unit: "4L"},
		{Name: "Maple Syrup", CategoryName: "Pantry"},
	}
	created, err := db.SeedItems(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	created, err = db.SeedItems(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	list, err := db.GetItems(ctx, models.ItemFilter{Category: "pantry"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Maple Syrup", list[0].Name)
	assert.Equal(t, models.DefaultUnit, list[0].Unit)
}

func TestDB_ErrorPaths(t *testing.T) {
	db, err := NewDB(":memory:", nil)
	require.NoError(t, err)
	db.Close()

	ctx := context.Background()

	_, err = db.GetStores(ctx)
	assert.Error(t, err)
	_, err = db.GetItems(ctx, models.ItemFilter{})
	assert.Error(t, err)
	_, err = db.GetPrices(ctx, models.PriceFilter{})
	assert.Error(t, err)
	_, err = db.GetPriceComparison(ctx)
	assert.Error(t, err)
	assert.Error(t, db.CreateCategory(ctx, &models.Category{Name: "Frozen"}))
	_, err = db.SaveScraped(ctx, models.StoreCoop, []models.ScrapedProduct{{Name: "x", Category: "y", Price: 1}})
	assert.Error(t, err)
}
