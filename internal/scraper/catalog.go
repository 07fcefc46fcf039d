package scraper

import (
	"fmt"
	"os"
	"strings"

	"grocerytracker/internal/models"

	"gopkg.in/yaml.v2"
)

type catalogFile struct {
	Products []Product `yaml:"products"`
}

// LoadCatalog reads the tracked basket from a YAML file. An empty path yields
// DefaultProducts.
func LoadCatalog(path string) ([]Product, error) {
	if path == "" {
		return DefaultProducts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	for i, p := range cf.Products {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("catalog product %d: name is required", i)
		}
		if p.MinPrice < 0 || p.MaxPrice < p.MinPrice {
			return nil, fmt.Errorf("catalog product %q: invalid price range %.2f-%.2f", p.Name, p.MinPrice, p.MaxPrice)
		}
		if p.Unit == "" {
			cf.Products[i].Unit = models.DefaultUnit
		}
	}
	if len(cf.Products) == 0 {
		return nil, fmt.Errorf("catalog %s has no products", path)
	}
	return cf.Products, nil
}

// CatalogItems converts products into items for database seeding.
func CatalogItems(products []Product) []models.Item {
	items := make([]models.Item, 0, len(products))
	for _, p := range products {
		items = append(items, models.Item{Name: p.Name, CategoryName: p.Category, Unit: p.Unit})
	}
	return items
}
