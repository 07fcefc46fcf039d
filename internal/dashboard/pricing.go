package dashboard

import (
	"sort"

	"grocerytracker/internal/models"
)

// Best is the cheapest store for an item. OK is false when no store has a price.
type Best struct {
	Store string
	Price float64
	OK    bool
}

// Row is one item of the comparison table.
type Row struct {
	ItemID   int64
	Name     string
	Category string
	Unit     string
	TrendPct float64
	// Prices is keyed by store slug; a missing key means no price at that store.
	Prices map[string]float64
	Best   Best
}

// BestPrice scans stores in models.StoreOrder and keeps the first minimum, so
// ties go to the earlier store. Stores outside the fixed four are ignored.
func BestPrice(prices map[string]float64) Best {
	var best Best
	for _, slug := range models.StoreOrder {
		p, ok := prices[slug]
		if !ok {
			continue
		}
		if !best.OK || p < best.Price {
			best = Best{Store: slug, Price: p, OK: true}
		}
	}
	return best
}

// BuildRows pivots comparison entries into one row per item. Items come first in
// their given order; items that appear only in entries are appended by name.
func BuildRows(items []models.Item, entries []models.ComparisonEntry) []Row {
	rows := make([]Row, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		index[it.ID] = len(rows)
		rows = append(rows, Row{
			ItemID:   it.ID,
			Name:     it.Name,
			Category: it.CategoryName,
			Unit:     it.Unit,
			TrendPct: it.TrendPct,
			Prices:   map[string]float64{},
		})
	}

	var extra []Row
	extraIndex := map[int64]int{}
	for _, e := range entries {
		if i, ok := index[e.ItemID]; ok {
			rows[i].Prices[e.StoreSlug] = e.Price
			continue
		}
		i, ok := extraIndex[e.ItemID]
		if !ok {
			i = len(extra)
			extraIndex[e.ItemID] = i
			extra = append(extra, Row{
				ItemID:   e.ItemID,
				Name:     e.ItemName,
				Category: e.CategoryName,
				Unit:     e.Unit,
				Prices:   map[string]float64{},
			})
		}
		extra[i].Prices[e.StoreSlug] = e.Price
	}
	sort.SliceStable(extra, func(a, b int) bool { return extra[a].Name < extra[b].Name })
	rows = append(rows, extra...)

	for i := range rows {
		rows[i].Best = BestPrice(rows[i].Prices)
	}
	return rows
}
