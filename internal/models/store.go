package models

import (
	"strings"
	"time"
)

const (
	StoreIndependent = "independent"
	StoreExtraFoods  = "extrafoods"
	StoreCoop        = "coop"
	StoreSaveOn      = "saveon"
)

// StoreOrder is the fixed scan order used wherever stores are compared.
var StoreOrder = []string{StoreIndependent, StoreExtraFoods, StoreCoop, StoreSaveOn}

type Store struct {
	ID              int64     `json:"id" yaml:"id"`
	Slug            string    `json:"slug" yaml:"slug"`
	Name            string    `json:"name" yaml:"name"`
	Location        string    `json:"location" yaml:"location"`
	WebsiteURL      string    `json:"website_url" yaml:"website_url"`
	Phone           string    `json:"phone,omitempty" yaml:"phone"`
	ScrapingEnabled bool      `json:"scraping_enabled" yaml:"scraping_enabled"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// DefaultStores are the Yellowknife stores seeded on start-up.
var DefaultStores = []Store{
	{
		Slug:            StoreIndependent,
		Name:            "Independent Grocer",
		Location:        "5016 49 St, Yellowknife, NT",
		WebsiteURL:      "https://www.yourindependentgrocer.ca",
		Phone:           "(867) 873-3003",
		ScrapingEnabled: true,
	},
	{
		Slug:            StoreExtraFoods,
		Name:            "Extra Foods",
		Location:        "201 Range Lake Rd, Yellowknife, NT",
		WebsiteURL:      "https://www.extrafoods.ca",
		Phone:           "(867) 873-4601",
		ScrapingEnabled: true,
	},
	{
		Slug:            StoreCoop,
		Name:            "The Co-op",
		Location:        "4910 50 St, Yellowknife, NT",
		WebsiteURL:      "https://www.co-op.coop",
		Phone:           "(867) 920-4571",
		ScrapingEnabled: true,
	},
	{
		Slug:            StoreSaveOn,
		Name:            "Save-On-Foods",
		Location:        "5015 50 Ave, Yellowknife, NT",
		WebsiteURL:      "https://www.saveonfoods.com",
		Phone:           "(867) 766-4600",
		ScrapingEnabled: true,
	},
}

// LookupStore finds a default store by slug or display name.
func LookupStore(key string) (Store, bool) {
	key = strings.TrimSpace(key)
	for _, s := range DefaultStores {
		if strings.EqualFold(s.Slug, key) || strings.EqualFold(s.Name, key) {
			return s, true
		}
	}
	return Store{}, false
}

// StoreRank returns the position of slug in StoreOrder, or len(StoreOrder) for unknown stores.
func StoreRank(slug string) int {
	for i, s := range StoreOrder {
		if s == slug {
			return i
		}
	}
	return len(StoreOrder)
}
