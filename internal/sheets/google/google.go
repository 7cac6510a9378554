// Package google exports billing reports to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"billcycle/internal/core"
	"billcycle/internal/log"
)

const valueInputOption = "USER_ENTERED"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base sheet name without year, e.g. "Statements"; the report year is prefixed.
	sheetBase string
}

// NewClient creates a Sheets client authenticated with a service account.
func NewClient(ctx context.Context, spreadsheetID, sheetBase string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetBase = strings.TrimSpace(sheetBase)
	if sheetBase == "" {
		sheetBase = "Statements"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: sheetBase}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentSheets)

	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.DebugContext(ctx, "Google Sheets service created", "credentials_size", len(credentialsJSON))
	return service, nil
}

// AppendMonthOverview appends one row per category plus a total row to the
// year's sheet and returns the updated range.
func (c *Client) AppendMonthOverview(ctx context.Context, ov core.MonthOverview, exportedAt time.Time) (string, error) {
	if ov.Month < 1 || ov.Month > 12 {
		return "", fmt.Errorf("%w: %d", core.ErrInvalidMonth, ov.Month)
	}
	return c.appendRows(ctx, yearPrefixedName(c.sheetBase, ov.Year), overviewRows(ov, exportedAt))
}

// AppendStatements appends one row per card cycle to the sheet of the year
// the latest cycle ends in.
func (c *Client) AppendStatements(ctx context.Context, cards []core.CardCycles, exportedAt time.Time) (string, error) {
	rows := statementRows(cards, exportedAt)
	if len(rows) == 0 {
		return "", nil
	}
	return c.appendRows(ctx, yearPrefixedName(c.sheetBase+" cycles", exportedAt.Year()), rows)
}

func (c *Client) appendRows(ctx context.Context, sheet string, rows [][]any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:G", sheet)
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	log.FromContext(ctx).WithComponent(log.ComponentSheets).InfoContext(ctx, "Rows appended",
		"sheet", sheet, log.FieldCount, len(rows), "range", ref)
	return ref, nil
}

// overviewRows lays out: period, category, amount, share of total, exported at.
func overviewRows(ov core.MonthOverview, exportedAt time.Time) [][]any {
	period := fmt.Sprintf("%04d-%02d", ov.Year, ov.Month)
	stamp := exportedAt.Format("2006-01-02 15:04")
	rows := make([][]any, 0, len(ov.ByCategory)+1)
	for _, c := range ov.ByCategory {
		rows = append(rows, []any{period, c.Name, c.Amount.String(), share(c.Amount, ov.Total), stamp})
	}
	rows = append(rows, []any{period, "TOTAL", ov.Total.String(), strconv.Itoa(ov.Count), stamp})
	return rows
}

// statementRows lays out: card, cycle start, cycle end, due date, spent, count, exported at.
func statementRows(cards []core.CardCycles, exportedAt time.Time) [][]any {
	stamp := exportedAt.Format("2006-01-02 15:04")
	var rows [][]any
	for _, card := range cards {
		for _, cs := range card.Cycles {
			rows = append(rows, []any{
				card.Card.DisplayName(),
				cs.Cycle.Start.String(),
				cs.Cycle.End.String(),
				cs.Cycle.Due.String(),
				cs.Spent.String(),
				cs.Count,
				stamp,
			})
		}
	}
	return rows
}

func share(part, total core.Money) string {
	if total.Cents == 0 {
		return "0%"
	}
	return part.Decimal().Div(total.Decimal()).Shift(2).StringFixed(1) + "%"
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
