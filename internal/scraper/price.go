package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var priceRe = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// ParsePrice extracts the first amount from shelf text such as "$1,234.56",
// "Sale: 3.99 ea" or "2 for $5" (the latter yields 2). Results are rounded to cents.
func ParsePrice(text string) (float64, error) {
	match := priceRe.FindString(strings.TrimSpace(text))
	if match == "" {
		return 0, fmt.Errorf("no price in %q", text)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", match, err)
	}
	return d.Round(2).InexactFloat64(), nil
}
