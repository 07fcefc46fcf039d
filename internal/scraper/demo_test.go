package scraper

import (
	"context"
	"math/rand"
	"testing"

	"grocerytracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoSourceBands(t *testing.T) {
	d := NewDemoSource(nil, rand.New(rand.NewSource(42)))

	for _, cfg := range DefaultStoreConfigs() {
		products, err := d.Scrape(context.Background(), cfg)
		require.NoError(t, err)
		require.Len(t, products, len(DefaultProducts))

		m := storeMultipliers[cfg.Slug]
		for i, p := range products {
			want := DefaultProducts[i]
			assert.Equal(t, want.Name, p.Name)
			assert.Equal(t, cfg.Slug, p.StoreID)
			assert.GreaterOrEqual(t, p.Price, want.MinPrice*m-0.01, p.Name)
			assert.LessOrEqual(t, p.Price, want.MaxPrice*m+0.01, p.Name)
			assert.Equal(t, p.Price, float64(int64(p.Price*100+0.5))/100, "rounded to cents")
		}
	}
}

func TestDemoSourceDeterministic(t *testing.T) {
	store, _ := findStore(DefaultStoreConfigs(), models.StoreCoop)

	a, _ := NewDemoSource(nil, rand.New(rand.NewSource(7))).Scrape(context.Background(), store)
	b, _ := NewDemoSource(nil, rand.New(rand.NewSource(7))).Scrape(context.Background(), store)
	for i := range a {
		assert.Equal(t, a[i].Price, b[i].Price)
	}
}

func TestDemoSourceCustomCatalog(t *testing.T) {
	d := NewDemoSource([]Product{{Name: "Eggs", Category: "Dairy", Unit: "dozen", MinPrice: 4, MaxPrice: 4}}, nil)

	products, err := d.Scrape(context.Background(), StoreConfig{Slug: "corner"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 4.0, products[0].Price)
	assert.Equal(t, "Brand: N/A, Size: N/A", products[0].Notes())
}
