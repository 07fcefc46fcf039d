package scraper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalog(t, `
products:
  - name: Eggs
    category: Dairy
    min_price: 4.29
    max_price: 5.19
    size: "12 pack"
  - name: Apples
    category: Produce
    unit: per lb
    min_price: 2.49
    max_price: 2.99
`)

	products, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Eggs", products[0].Name)
	assert.Equal(t, "each", products[0].Unit)
	assert.Equal(t, "12 pack", products[0].Size)
	assert.Equal(t, 2.99, products[1].MaxPrice)

	items := CatalogItems(products)
	require.Len(t, items, 2)
	assert.Equal(t, "Produce", items[1].CategoryName)
	assert.Equal(t, "per lb", items[1].Unit)
}

func TestLoadCatalogDefaults(t *testing.T) {
	products, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProducts, products)
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read catalog")

	_, err = LoadCatalog(writeCatalog(t, "products: [name"))
	assert.ErrorContains(t, err, "parse catalog")

	_, err = LoadCatalog(writeCatalog(t, "products: []"))
	assert.ErrorContains(t, err, "has no products")

	_, err = LoadCatalog(writeCatalog(t, "products:\n  - name: Eggs\n    min_price: 5\n    max_price: 4\n"))
	assert.ErrorContains(t, err, "invalid price range")

	_, err = LoadCatalog(writeCatalog(t, "products:\n  - category: Dairy\n"))
	assert.ErrorContains(t, err, "name is required")
}
