// Package google reads transactions from a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendwise/internal/core"
	"spendwise/internal/source"
)

const DefaultSheetName = "Transactions"

// Options configures a Client. Credentials come from CredentialsJSON, then
// CredentialsFile, then GOOGLE_APPLICATION_CREDENTIALS.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	Location        *time.Location
}

// Client is a read-only transaction source over one sheet whose first row
// holds the headers Date, User, Amount, Category, Type and Description.
type Client struct {
	spreadsheetID string
	sheet         string
	loc           *time.Location
	get           func(ctx context.Context, rng string) ([][]interface{}, error)
}

var (
	_ source.TransactionSource = (*Client)(nil)
	_ source.TransactionWriter = (*Client)(nil)
)

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	c := newClient(opts)
	c.get = func(ctx context.Context, rng string) ([][]interface{}, error) {
		resp, err := svc.Spreadsheets.Values.Get(opts.SpreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	}
	return c, nil
}

func newClient(opts Options) *Client {
	sheet := strings.TrimSpace(opts.SheetName)
	if sheet == "" {
		sheet = DefaultSheetName
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Client{spreadsheetID: opts.SpreadsheetID, sheet: sheet, loc: loc}
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	credsFile := opts.CredentialsFile
	if opts.CredentialsJSON == "" && credsFile == "" {
		credsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case opts.CredentialsJSON != "":
		credentialsJSON = []byte(opts.CredentialsJSON)
	case credsFile != "":
		b, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// Find implements source.TransactionSource. The sheet has no server-side
// filter, so every call reads the whole range and filters locally.
func (c *Client) Find(ctx context.Context, userID string, r core.DateRange) ([]core.Transaction, error) {
	rng := fmt.Sprintf("%s!A:F", c.sheet)
	values, err := c.get(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	all, skipped, err := parseRows(values, c.loc)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped unreadable sheet rows", "sheet", c.sheet, "skipped", skipped)
	}

	var out []core.Transaction
	for _, tx := range all {
		if tx.UserID == userID && r.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Add always fails: the sheet is maintained by hand.
func (c *Client) Add(context.Context, core.Transaction) (string, error) {
	return "", source.ErrReadOnly
}
