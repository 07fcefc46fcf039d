package service

import (
	"context"
	"fmt"

	"grocerytracker/internal/events"
	"grocerytracker/internal/models"

	"github.com/shopspring/decimal"
)

func (s *PriceService) Prices(ctx context.Context, filter models.PriceFilter) ([]models.Price, error) {
	if filter.Days <= 0 {
		filter.Days = models.DefaultPriceDays
	}
	key := fmt.Sprintf("%s%d:%d", keyPrices, filter.Days, filter.ItemID)
	return cached(ctx, s, key, func(ctx context.Context) ([]models.Price, error) {
		return s.repo.GetPrices(ctx, filter)
	})
}

func (s *PriceService) AddPrice(ctx context.Context, price *models.Price) error {
	if err := s.repo.CreatePrice(ctx, price); err != nil {
		return err
	}
	s.InvalidatePrices(ctx)
	s.publish(events.EventPriceRecorded, events.PricePayload{
		ItemID:  price.ItemID,
		StoreID: price.StoreID,
		Price:   price.Price,
		Date:    price.Date,
	})
	return nil
}

func (s *PriceService) Comparison(ctx context.Context) ([]models.ComparisonEntry, error) {
	return cached(ctx, s, keyComparison, s.repo.GetPriceComparison)
}

func (s *PriceService) Trends(ctx context.Context, itemID int64, days int) ([]models.TrendPoint, error) {
	if days <= 0 {
		days = models.DefaultTrendDays
	}
	key := fmt.Sprintf("%s%d:%d", keyTrends, itemID, days)
	return cached(ctx, s, key, func(ctx context.Context) ([]models.TrendPoint, error) {
		return s.repo.GetPriceTrends(ctx, itemID, days)
	})
}

func (s *PriceService) Summary(ctx context.Context) (*models.Summary, error) {
	return cached(ctx, s, keySummary, s.buildSummary)
}

func (s *PriceService) buildSummary(ctx context.Context) (*models.Summary, error) {
	var (
		summary models.Summary
		err     error
	)
	if summary.TotalItems, err = s.repo.CountItems(ctx); err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	if summary.ActiveStores, err = s.repo.CountActiveStores(ctx); err != nil {
		return nil, fmt.Errorf("count stores: %w", err)
	}
	if summary.PricesToday, err = s.repo.CountPricesToday(ctx); err != nil {
		return nil, fmt.Errorf("count prices: %w", err)
	}
	if summary.LastUpdate, err = s.repo.LastPriceUpdate(ctx); err != nil {
		return nil, fmt.Errorf("last update: %w", err)
	}
	if summary.Entries, err = s.repo.GetTodayPrices(ctx); err != nil {
		return nil, fmt.Errorf("today's prices: %w", err)
	}

	comparison, err := s.repo.GetPriceComparison(ctx)
	if err != nil {
		return nil, fmt.Errorf("comparison: %w", err)
	}
	summary.AverageSavings = AverageSavings(comparison)
	return &summary, nil
}

// AverageSavings is the mean spread between the most and least expensive store
// over items priced at two or more stores, rounded to cents.
func AverageSavings(entries []models.ComparisonEntry) float64 {
	type spread struct {
		min, max decimal.Decimal
		stores   int
	}
	byItem := make(map[int64]*spread)
	for _, e := range entries {
		p := decimal.NewFromFloat(e.Price)
		sp, ok := byItem[e.ItemID]
		if !ok {
			byItem[e.ItemID] = &spread{min: p, max: p, stores: 1}
			continue
		}
		sp.min = decimal.Min(sp.min, p)
		sp.max = decimal.Max(sp.max, p)
		sp.stores++
	}

	total := decimal.Zero
	n := 0
	for _, sp := range byItem {
		if sp.stores < 2 {
			continue
		}
		total = total.Add(sp.max.Sub(sp.min))
		n++
	}
	if n == 0 {
		return 0
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}
