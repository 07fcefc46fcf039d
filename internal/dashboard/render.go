package dashboard

import (
	"fmt"
	"io"
	"strings"

	"grocerytracker/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"
)

const (
	noPrice          = "—"
	noPriceAvailable = "no price available"
	timeLayout       = "Jan 2, 15:04"
)

var bestColors = text.Colors{text.FgGreen, text.Bold}

// FormatCurrency renders a dollar amount with two decimals, e.g. "$1,234.50".
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	whole := d.Truncate(0).String()
	cents := d.StringFixed(2)[len(whole):]

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + cents
}

func formatTrend(pct float64) string {
	switch {
	case pct > 0:
		return text.FgRed.Sprintf("▲ %.2f%%", pct)
	case pct < 0:
		return text.FgGreen.Sprintf("▼ %.2f%%", -pct)
	default:
		return "–"
	}
}

// StoreColumns are the fixed four stores in scan order, named from the loaded store list when available.
func StoreColumns(stores []models.Store) []models.Store {
	bySlug := make(map[string]models.Store, len(stores))
	for _, s := range stores {
		bySlug[s.Slug] = s
	}
	cols := make([]models.Store, 0, len(models.StoreOrder))
	for _, slug := range models.StoreOrder {
		s, ok := bySlug[slug]
		if !ok {
			s, _ = models.LookupStore(slug)
		}
		cols = append(cols, s)
	}
	return cols
}

// Render writes the summary cards, the store list and the comparison table.
func Render(w io.Writer, view *View) error {
	if view == nil {
		return fmt.Errorf("nothing to render")
	}
	s := view.Summary

	last := "never"
	if s.LastUpdate != nil {
		last = s.LastUpdate.Local().Format(timeLayout)
	}
	if _, err := fmt.Fprintf(w, "Items: %d   Stores: %d   Prices today: %d   Avg savings: %s   Last update: %s\n",
		s.TotalItems, s.ActiveStores, s.PricesToday, FormatCurrency(s.AverageSavings), last); err != nil {
		return err
	}

	stores := table.NewWriter()
	stores.SetStyle(table.StyleLight)
	stores.SetTitle("Stores")
	stores.AppendHeader(table.Row{"Store", "Location", "Phone", "Scraping"})
	for _, st := range view.Stores {
		scraping := "off"
		if st.ScrapingEnabled {
			scraping = "on"
		}
		stores.AppendRow(table.Row{st.Name, st.Location, st.Phone, scraping})
	}
	if _, err := fmt.Fprintln(w, stores.Render()); err != nil {
		return err
	}

	cols := StoreColumns(view.Stores)
	prices := table.NewWriter()
	prices.SetStyle(table.StyleLight)
	prices.Style().Format.Footer = text.FormatDefault
	prices.SetTitle("Price comparison")

	header := table.Row{"Item", "Category"}
	for _, c := range cols {
		header = append(header, c.Name)
	}
	header = append(header, "Best", "Trend")
	prices.AppendHeader(header)

	for _, r := range view.Rows {
		style := CategoryStyle(r.Category)
		row := table.Row{
			fmt.Sprintf("%s %s (%s)", style.Icon, r.Name, r.Unit),
			style.Color.Sprint(r.Category),
		}
		for _, c := range cols {
			p, ok := r.Prices[c.Slug]
			switch {
			case !ok:
				row = append(row, noPrice)
			case r.Best.OK && r.Best.Store == c.Slug:
				row = append(row, bestColors.Sprint("★ "+FormatCurrency(p)))
			default:
				row = append(row, FormatCurrency(p))
			}
		}
		if r.Best.OK {
			row = append(row, FormatCurrency(r.Best.Price))
		} else {
			row = append(row, noPriceAvailable)
		}
		row = append(row, formatTrend(r.TrendPct))
		prices.AppendRow(row)
	}
	if len(view.Rows) == 0 {
		prices.AppendFooter(table.Row{"No items tracked yet"})
	}

	_, err := fmt.Fprintln(w, prices.Render())
	return err
}

// WriterRenderer renders every loaded view to W.
type WriterRenderer struct {
	W io.Writer
}

func (r WriterRenderer) Render(view *View) error {
	return Render(r.W, view)
}
