package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"travelvat/internal/logger"
	"travelvat/pkg/models"
)

// ErrMissingCredentials is returned when no service account is configured.
var ErrMissingCredentials = errors.New("neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set")

// InvoiceHeaders are the columns written by AppendInvoiceLines.
var InvoiceHeaders = []interface{}{
	"Invoice No", "InvoiceDate", "DueDate", "Service Date", "Currency", "CustomerName", "Memo",
	"Item Amount", "Taxes", "Item Description", "Tax Code", "Service", "Account Manager",
}

// Service reads and appends spreadsheet values of one Google Sheet.
type Service struct {
	api           *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewSheetsService connects to the spreadsheet at sheetURL with the service
// account from GOOGLE_APPLICATION_CREDENTIALS (a file) or GOOGLE_CREDENTIALS
// (inline JSON).
func NewSheetsService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewSheetsService"

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	creds, err := serviceAccount()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwt, err := google.JWTConfigFromJSON(creds, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: parsing service account: %w", op, err)
	}

	api, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log := logger.WithComponent("sheets").With().Str("spreadsheet_id", spreadsheetID).Logger()
	log.Debug().Msg("Sheets client ready")

	return &Service{api: api, spreadsheetID: spreadsheetID, log: log}, nil
}

func serviceAccount() ([]byte, error) {
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		creds, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading service account file: %w", err)
		}
		return creds, nil
	}
	if inline := os.Getenv("GOOGLE_CREDENTIALS"); inline != "" {
		return []byte(inline), nil
	}
	return nil, ErrMissingCredentials
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func extractSpreadsheetID(url string) (string, error) {
	matches := spreadsheetIDPattern.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("not a Google Sheets URL: %q", url)
	}
	return matches[1], nil
}

// ReadRange returns the values of rangeSpec in A1 notation. A bare sheet
// name returns the whole sheet.
func (s *Service) ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error) {
	const op = "ReadRange"

	resp, err := s.api.Spreadsheets.Values.Get(s.spreadsheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, rangeSpec, err)
	}

	s.log.Debug().
		Str("range", rangeSpec).
		Int("rows", len(resp.Values)).
		Msg("Range read")

	return resp.Values, nil
}

// AppendInvoiceLines appends invoice lines to sheetName, creating the sheet
// and its header row when needed.
func (s *Service) AppendInvoiceLines(ctx context.Context, sheetName string, lines []models.InvoiceLine) error {
	return s.AppendRows(ctx, sheetName, InvoiceHeaders, InvoiceRows(lines))
}

// AppendRows appends rows below the data of sheetName. A missing sheet is
// created, and an empty one gets headers first.
func (s *Service) AppendRows(ctx context.Context, sheetName string, headers []interface{}, rows [][]interface{}) error {
	const op = "AppendRows"

	sheetID, err := s.ensureSheet(ctx, sheetName)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.ensureHeaders(ctx, sheetName, sheetID, headers); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	target := fmt.Sprintf("%s!A:%s", sheetName, columnLetter(len(headers)))
	_, err = s.api.Spreadsheets.Values.Append(s.spreadsheetID, target, &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%s: appending to %s: %w", op, sheetName, err)
	}

	s.log.Info().
		Str("sheet", sheetName).
		Int("rows", len(rows)).
		Msg("Rows appended")

	return nil
}

// InvoiceRows converts invoice lines to sheet rows in InvoiceHeaders order.
func InvoiceRows(lines []models.InvoiceLine) [][]interface{} {
	rows := make([][]interface{}, len(lines))
	for i, l := range lines {
		rows[i] = []interface{}{
			l.InvoiceNumber,
			l.InvoiceDate,
			l.DueDate,
			l.ServiceDate,
			l.Currency,
			l.CustomerName,
			l.BookingCode,
			l.Amount.InexactFloat64(),
			l.Taxes.InexactFloat64(),
			l.Description,
			l.TaxCode,
			l.Category,
			l.AccountManager,
		}
	}
	return rows
}

// ensureSheet returns the id of sheetName, adding the sheet when it does not
// exist.
func (s *Service) ensureSheet(ctx context.Context, sheetName string) (int64, error) {
	spreadsheet, err := s.api.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("reading spreadsheet: %w", err)
	}
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties.Title == sheetName {
			return sh.Properties.SheetId, nil
		}
	}

	add := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: sheetName}}},
		},
	}
	resp, err := s.api.Spreadsheets.BatchUpdate(s.spreadsheetID, add).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("adding sheet %s: %w", sheetName, err)
	}

	s.log.Info().Str("sheet", sheetName).Msg("Sheet added")
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// ensureHeaders writes headers to row 1 when it is empty.
func (s *Service) ensureHeaders(ctx context.Context, sheetName string, sheetID int64, headers []interface{}) error {
	headerRange := fmt.Sprintf("%s!A1:%s1", sheetName, columnLetter(len(headers)))

	current, err := s.api.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading headers of %s: %w", sheetName, err)
	}
	if len(current.Values) > 0 && len(current.Values[0]) > 0 {
		return nil
	}

	_, err = s.api.Spreadsheets.Values.Update(s.spreadsheetID, headerRange, &sheets.ValueRange{Values: [][]interface{}{headers}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing headers of %s: %w", sheetName, err)
	}

	if err := s.formatHeaders(ctx, sheetID, int64(len(headers))); err != nil {
		s.log.Warn().Err(err).Str("sheet", sheetName).Msg("Header formatting failed, continuing")
	}
	return nil
}

// formatHeaders gives the header row the report header fill and fits the
// column widths.
func (s *Service) formatHeaders(ctx context.Context, sheetID, columns int64) error {
	header := &sheets.GridRange{SheetId: sheetID, StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: columns}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				RepeatCell: &sheets.RepeatCellRequest{
					Range: header,
					Cell: &sheets.CellData{
						UserEnteredFormat: &sheets.CellFormat{
							TextFormat: &sheets.TextFormat{Bold: true},
							// #D9E3C0
							BackgroundColor: &sheets.Color{Red: 0.851, Green: 0.89, Blue: 0.753},
						},
					},
					Fields: "userEnteredFormat(textFormat,backgroundColor)",
				},
			},
			{
				AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
					Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", StartIndex: 0, EndIndex: columns},
				},
			},
		},
	}

	if _, err := s.api.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("formatting headers: %w", err)
	}
	return nil
}

// columnLetter returns the A1 name of the 1-based column n.
func columnLetter(n int) string {
	if n < 1 {
		n = 1
	}
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
