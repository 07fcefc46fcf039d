package models

import "time"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultCategories are seeded on start-up.
var DefaultCategories = []string{"Produce", "Dairy", "Meat", "Bakery", "Pantry", "Frozen", "Beverages", "Snacks"}
