// Package google implements the sheets ports on top of the Google Sheets v4
// API. The spreadsheet is the source of truth: expenses and groceries live in
// separate tabs with fixed column layouts, budgets in a third.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/pspuri91/expense-tracker/internal/core"
	ports "github.com/pspuri91/expense-tracker/internal/sheets"
)

// Column spans of the two record tabs and the budget tab.
const (
	expenseSpan = "A:L"
	grocerySpan = "A:O"
	budgetSpan  = "A:B"
)

type Client struct {
	svc            *gsheet.Service
	spreadsheetID  string
	expensesSheet  string
	groceriesSheet string
	budgetsSheet   string
}

// Ensure interface conformance
var _ ports.Store = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: EXPENSES_SHEET_NAME (default "Expenses"),
// GROCERIES_SHEET_NAME (default "Groceries"),
// BUDGETS_SHEET_NAME (default "CategoryWiseMaxBudget").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	expenses := strings.TrimSpace(os.Getenv("EXPENSES_SHEET_NAME"))
	if expenses == "" {
		expenses = "Expenses"
	}
	groceries := strings.TrimSpace(os.Getenv("GROCERIES_SHEET_NAME"))
	if groceries == "" {
		groceries = "Groceries"
	}
	budgets := strings.TrimSpace(os.Getenv("BUDGETS_SHEET_NAME"))
	if budgets == "" {
		budgets = "CategoryWiseMaxBudget"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:            svc,
		spreadsheetID:  spreadsheetID,
		expensesSheet:  expenses,
		groceriesSheet: groceries,
		budgetsSheet:   budgets,
	}, nil
}

// newSheetsService initializes a Sheets service using service account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) sheetFor(grocery bool) (name, span string) {
	if grocery {
		return c.groceriesSheet, grocerySpan
	}
	return c.expensesSheet, expenseSpan
}

// Append stores the record in its tab. A record without an id gets the next
// sequential one: the number of occupied rows in column A (header included)
// plus one. A record that already carries an id keeps it, so the sync worker
// can mirror locally numbered rows.
func (c *Client) Append(ctx context.Context, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return core.Record{}, errors.New("sheets service not initialized")
	}

	sheet, span := c.sheetFor(r.IsGrocery)
	if r.ID == "" {
		rng := fmt.Sprintf("%s!A:A", sheet)
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return core.Record{}, fmt.Errorf("read %s: %w", rng, err)
		}
		r.ID = strconv.Itoa(len(resp.Values) + 1)
	}

	appendRange := fmt.Sprintf("%s!%s", sheet, span)
	vr := &gsheet.ValueRange{Values: [][]any{r.Row()}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, appendRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return core.Record{}, fmt.Errorf("append to %s: %w", sheet, err)
	}
	return r, nil
}

// ListRecords reads both tabs concurrently and merges them, expenses first.
// Header rows and rows that fail to decode are skipped.
func (c *Client) ListRecords(ctx context.Context) ([]core.Record, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	var expenseRows, groceryRows [][]any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := c.readRange(gctx, c.expensesSheet, expenseSpan)
		expenseRows = rows
		return err
	})
	g.Go(func() error {
		rows, err := c.readRange(gctx, c.groceriesSheet, grocerySpan)
		groceryRows = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]core.Record, 0, len(expenseRows)+len(groceryRows))
	for _, row := range expenseRows {
		if r, ok := core.RecordFromRow(core.ToStrings(row), false); ok {
			records = append(records, r)
		}
	}
	for _, row := range groceryRows {
		if r, ok := core.RecordFromRow(core.ToStrings(row), true); ok {
			records = append(records, r)
		}
	}
	return records, nil
}

// Update locates the row whose first column equals the record id and
// overwrites the full row. Returns core.ErrNotFound when no row matches.
func (c *Client) Update(ctx context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheet, span := c.sheetFor(r.IsGrocery)
	rows, err := c.readRange(ctx, sheet, span)
	if err != nil {
		return err
	}

	rowNumber := 0
	for i, row := range rows {
		cols := core.ToStrings(row)
		if len(cols) > 0 && cols[0] == r.ID {
			rowNumber = i + 1 // sheets are 1-indexed
			break
		}
	}
	if rowNumber == 0 {
		return fmt.Errorf("record %s: %w", r.ID, core.ErrNotFound)
	}

	bounds := strings.SplitN(span, ":", 2)
	updateRange := fmt.Sprintf("%s!%s%d:%s%d", sheet, bounds[0], rowNumber, bounds[1], rowNumber)
	vr := &gsheet.ValueRange{Values: [][]any{r.Row()}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, updateRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", updateRange, err)
	}
	return nil
}

// ListBudgets reads the budget tab, skipping the header row.
func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A2:B", c.budgetsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	budgets := make([]core.Budget, 0, len(resp.Values))
	for _, row := range resp.Values {
		if b, ok := core.BudgetFromRow(core.ToStrings(row)); ok {
			budgets = append(budgets, b)
		}
	}
	return budgets, nil
}

// UpdateBudget overwrites the budget cell of the matching category row.
// Returns core.ErrNotFound when the category has no row.
func (c *Client) UpdateBudget(ctx context.Context, category string, budget float64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!%s", c.budgetsSheet, budgetSpan)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	rowNumber := 0
	for i, row := range resp.Values {
		cols := core.ToStrings(row)
		if len(cols) > 0 && cols[0] == category {
			rowNumber = i + 1
			break
		}
	}
	if rowNumber == 0 {
		return fmt.Errorf("category %s: %w", category, core.ErrNotFound)
	}

	updateRange := fmt.Sprintf("%s!B%d", c.budgetsSheet, rowNumber)
	vr := &gsheet.ValueRange{Values: [][]any{{budget}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, updateRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", updateRange, err)
	}
	return nil
}

func (c *Client) readRange(ctx context.Context, sheet, span string) ([][]any, error) {
	rng := fmt.Sprintf("%s!%s", sheet, span)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}
