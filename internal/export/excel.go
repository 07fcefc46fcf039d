package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"grocerytracker/internal/dashboard"
	"grocerytracker/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName    = "Prices"
	currencyFmt  = "$#,##0.00"
	headerRow    = 2
	firstDataRow = 3
)

// Workbook lays out the price comparison: one row per item, one column per store,
// followed by the best store, best price and 30 day trend.
func Workbook(stores []models.Store, rows []dashboard.Row, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	cols := dashboard.StoreColumns(stores)
	headers := []string{"Item", "Category", "Unit"}
	for _, s := range cols {
		headers = append(headers, s.Name)
	}
	headers = append(headers, "Best store", "Best price", "Trend %")

	_ = f.SetCellValue(SheetName, "A1", "Grocery prices, generated "+generated.Format("2006-01-02 15:04"))
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.MergeCell(SheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(SheetName, "A1", "A1", titleStyle)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		_ = f.SetCellValue(SheetName, cell, h)
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)
	}

	numFmt := currencyFmt
	priceStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	bestStyle, _ := f.NewStyle(&excelize.Style{
		CustomNumFmt: &numFmt,
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font:         &excelize.Font{Bold: true},
	})

	for i, r := range rows {
		row := firstDataRow + i
		set := func(col int, v any) string {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(SheetName, cell, v)
			return cell
		}

		set(1, r.Name)
		set(2, r.Category)
		set(3, r.Unit)
		for j, s := range cols {
			p, ok := r.Prices[s.Slug]
			if !ok {
				continue
			}
			cell := set(4+j, p)
			style := priceStyle
			if r.Best.OK && r.Best.Store == s.Slug {
				style = bestStyle
			}
			_ = f.SetCellStyle(SheetName, cell, cell, style)
		}

		next := 4 + len(cols)
		if r.Best.OK {
			best, _ := models.LookupStore(r.Best.Store)
			set(next, best.Name)
			cell := set(next+1, r.Best.Price)
			_ = f.SetCellStyle(SheetName, cell, cell, priceStyle)
		} else {
			set(next, "no price available")
		}
		set(next+2, r.TrendPct)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 25)
	_ = f.SetColWidth(SheetName, "B", lastCol, 16)
	return f, nil
}

// WriteComparison streams the workbook to w.
func WriteComparison(w io.Writer, stores []models.Store, rows []dashboard.Row, generated time.Time) error {
	f, err := Workbook(stores, rows, generated)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// SaveFile writes the workbook to path. A directory path gets a dated file name.
func SaveFile(path string, stores []models.Store, rows []dashboard.Row, generated time.Time) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName(generated))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := Workbook(stores, rows, generated)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}
	return path, nil
}

func FileName(generated time.Time) string {
	return fmt.Sprintf("grocery_prices_%s.xlsx", generated.Format("2006-01-02"))
}
