package dashboard

import (
	"testing"

	"grocerytracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestPrice(t *testing.T) {
	t.Run("Cheapest", func(t *testing.T) {
		best := BestPrice(map[string]float64{
			models.StoreIndependent: 4.99,
			models.StoreCoop:        4.49,
			models.StoreSaveOn:      5.29,
		})
		assert.Equal(t, Best{Store: models.StoreCoop, Price: 4.49, OK: true}, best)
	})

	t.Run("TieGoesToEarlierStore", func(t *testing.T) {
		best := BestPrice(map[string]float64{
			models.StoreSaveOn:     3.00,
			models.StoreExtraFoods: 3.00,
		})
		assert.Equal(t, models.StoreExtraFoods, best.Store)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.False(t, BestPrice(nil).OK)
		assert.False(t, BestPrice(map[string]float64{}).OK)
	})

	t.Run("UnknownStoreIgnored", func(t *testing.T) {
		best := BestPrice(map[string]float64{"walmart": 0.5, models.StoreCoop: 2})
		assert.Equal(t, models.StoreCoop, best.Store)
	})

	t.Run("ZeroIsAPrice", func(t *testing.T) {
		best := BestPrice(map[string]float64{models.StoreSaveOn: 0})
		assert.True(t, best.OK)
		assert.Zero(t, best.Price)
	})
}

func TestBuildRows(t *testing.T) {
	items := []models.Item{
		{ID: 2, Name: "Milk", CategoryName: "Dairy", Unit: "each", TrendPct: 5},
		{ID: 1, Name: "Bananas", CategoryName: "Produce", Unit: "per lb"},
	}
	entries := []models.ComparisonEntry{
		{ItemID: 2, StoreSlug: models.StoreCoop, Price: 5.49},
		{ItemID: 2, StoreSlug: models.StoreSaveOn, Price: 5.19},
		{ItemID: 9, ItemName: "Zucchini", CategoryName: "Produce", StoreSlug: models.StoreCoop, Price: 2.5},
		{ItemID: 7, ItemName: "Apples", CategoryName: "Produce", StoreSlug: models.StoreIndependent, Price: 1.8},
	}

	rows := BuildRows(items, entries)
	require.Len(t, rows, 4)

	assert.Equal(t, "Milk", rows[0].Name)
	assert.Equal(t, 5.0, rows[0].TrendPct)
	assert.Len(t, rows[0].Prices, 2)
	assert.Equal(t, Best{Store: models.StoreSaveOn, Price: 5.19, OK: true}, rows[0].Best)

	assert.Equal(t, "Bananas", rows[1].Name)
	assert.Empty(t, rows[1].Prices)
	assert.False(t, rows[1].Best.OK)

	assert.Equal(t, "Apples", rows[2].Name)
	assert.Equal(t, "Zucchini", rows[3].Name)
	assert.Equal(t, "Produce", rows[3].Category)
}
