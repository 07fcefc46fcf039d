package dashboard

import (
	"bytes"
	"testing"
	"time"

	"grocerytracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	cases := map[float64]string{
		0:       "$0.00",
		0.4:     "$0.40",
		4.999:   "$5.00",
		1234.5:  "$1,234.50",
		999.999: "$1,000.00",
		-2.5:    "-$2.50",
		1234567: "$1,234,567.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCurrency(in), "amount %v", in)
	}
}

func TestRender(t *testing.T) {
	last := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	view := &View{
		Stores: models.DefaultStores,
		Rows: BuildRows(
			[]models.Item{
				{ID: 1, Name: "Milk", CategoryName: "Dairy", Unit: "each", TrendPct: 2.5},
				{ID: 2, Name: "Saffron", CategoryName: "Spices", Unit: "each"},
			},
			[]models.ComparisonEntry{
				{ItemID: 1, StoreSlug: models.StoreCoop, Price: 5.49},
				{ItemID: 1, StoreSlug: models.StoreSaveOn, Price: 5.19},
			},
		),
		Summary: models.Summary{TotalItems: 2, ActiveStores: 4, PricesToday: 2, AverageSavings: 0.3, LastUpdate: &last},
	}

	var buf bytes.Buffer
	require.NoError(t, WriterRenderer{W: &buf}.Render(view))
	out := buf.String()

	assert.Contains(t, out, "Items: 2")
	assert.Contains(t, out, "Avg savings: $0.30")
	assert.Contains(t, out, "Independent Grocer")
	assert.Contains(t, out, "5016 49 St")
	assert.Contains(t, out, "Milk (each)")
	assert.Contains(t, out, "$5.49")
	assert.Contains(t, out, "★ $5.19")
	assert.Contains(t, out, "2.50%")
	assert.Contains(t, out, noPriceAvailable)
	assert.Contains(t, out, "🛒 Saffron")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &View{}))
	assert.Contains(t, buf.String(), "Last update: never")
	assert.Contains(t, buf.String(), "No items tracked yet")
	assert.NotContains(t, buf.String(), "NO ITEMS TRACKED YET")

	assert.Error(t, Render(&buf, nil))
}
