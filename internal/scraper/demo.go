package scraper

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"grocerytracker/internal/models"

	"github.com/shopspring/decimal"
)

// Product is one entry of the tracked basket: the demo generator prices it inside
// [MinPrice, MaxPrice] and the HTML scraper searches stores for Name.
type Product struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Unit     string  `yaml:"unit"`
	MinPrice float64 `yaml:"min_price"`
	MaxPrice float64 `yaml:"max_price"`
	Brand    string  `yaml:"brand"`
	Size     string  `yaml:"size"`
}

var DefaultProducts = []Product{
	{Name: "Bananas", Category: "Produce", Unit: "per lb", MinPrice: 1.19, MaxPrice: 1.49, Size: "1 lb"},
	{Name: "Milk 2%", Category: "Dairy", Unit: "each", MinPrice: 5.49, MaxPrice: 5.99, Brand: "Dairyland", Size: "4L"},
	{Name: "White Bread", Category: "Bakery", Unit: "each", MinPrice: 2.79, MaxPrice: 3.19, Brand: "Wonder", Size: "675g"},
	{Name: "Ground Beef", Category: "Meat", Unit: "per lb", MinPrice: 8.99, MaxPrice: 12.49, Size: "1 lb"},
	{Name: "Cheddar Cheese", Category: "Dairy", Unit: "each", MinPrice: 6.99, MaxPrice: 8.49, Brand: "Black Diamond", Size: "400g"},
}

// storeMultipliers skew demo prices so stores differ consistently.
var storeMultipliers = map[string]float64{
	models.StoreIndependent: 1.0,
	models.StoreExtraFoods:  1.05,
	models.StoreCoop:        0.95,
	models.StoreSaveOn:      1.08,
}

// DemoSource generates plausible prices without touching the network.
type DemoSource struct {
	products []Product

	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewDemoSource uses DefaultProducts when products is empty.
func NewDemoSource(products []Product, rnd *rand.Rand) *DemoSource {
	if len(products) == 0 {
		products = DefaultProducts
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DemoSource{products: products, rnd: rnd, now: time.Now}
}

func (d *DemoSource) Mode() string { return models.ModeDemo }

func (d *DemoSource) Scrape(_ context.Context, store StoreConfig) ([]models.ScrapedProduct, error) {
	multiplier, ok := storeMultipliers[store.Slug]
	if !ok {
		multiplier = 1.0
	}
	factor := decimal.NewFromFloat(multiplier)

	d.mu.Lock()
	defer d.mu.Unlock()

	scrapedAt := d.now()
	out := make([]models.ScrapedProduct, 0, len(d.products))
	for _, p := range d.products {
		span := p.MaxPrice - p.MinPrice
		base := decimal.NewFromFloat(p.MinPrice + d.rnd.Float64()*span).Round(2)
		out = append(out, models.ScrapedProduct{
			Name:      p.Name,
			Category:  p.Category,
			Unit:      p.Unit,
			Price:     base.Mul(factor).Round(2).InexactFloat64(),
			Brand:     p.Brand,
			Size:      p.Size,
			StoreID:   store.Slug,
			ScrapedAt: scrapedAt,
		})
	}
	return out, nil
}
