package google

import (
	"context"
	"fmt"
	"os"

	"grocerytracker/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var priceHeaders = []interface{}{"Item", "Category", "Unit", "Store", "Price", "Date", "Source"}

// SheetsService mirrors the latest price comparison into one sheet of a spreadsheet.
type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsService authenticates with a service account credentials file.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, sheetName string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return newSheetsService(srv, spreadsheetID, sheetName), nil
}

func newSheetsService(srv *sheets.Service, spreadsheetID, sheetName string) *SheetsService {
	if sheetName == "" {
		sheetName = "Prices"
	}
	return &SheetsService{service: srv, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// TestConnection reads the first cell of the sheet.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ReplacePrices clears the sheet and writes a header plus one row per entry.
func (s *SheetsService) ReplacePrices(ctx context.Context, entries []models.ComparisonEntry) error {
	values := make([][]interface{}, 0, len(entries)+1)
	values = append(values, priceHeaders)
	for _, e := range entries {
		values = append(values, []interface{}{
			e.ItemName,
			e.CategoryName,
			e.Unit,
			e.StoreName,
			e.Price,
			e.Date,
			e.Source,
		})
	}

	_, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, s.sheetName+"!A:G", &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	rangeData := fmt.Sprintf("%s!A1:G%d", s.sheetName, len(values))
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}
	return nil
}
