package models

import "time"

type Item struct {
	ID           int64     `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	CategoryID   int64     `json:"category_id" yaml:"category_id"`
	CategoryName string    `json:"category_name" yaml:"category"`
	Unit         string    `json:"unit" yaml:"unit"`
	Description  string    `json:"description,omitempty" yaml:"description"`
	TrendPct     float64   `json:"trend_pct"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

// ItemFilter narrows GET /api/items.
type ItemFilter struct {
	Category string
	Query    string
	Store    string
}
