// Package sheets appends staff shift reports to a Google Spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const dateLayout = "02.01.2006"

// Report is one completed shift.
type Report struct {
	Date          time.Time
	Object        string
	Staff         string
	Adults        int
	Discount      int
	PriceAdult    int
	PriceDiscount int
	Comment       string
}

// Revenue is adults at the full price plus discounted visitors.
func (r Report) Revenue() int {
	return r.Adults*r.PriceAdult + r.Discount*r.PriceDiscount
}

// Row renders the report as
// [date, object, staff, adults, discount, revenue, comment].
func (r Report) Row() []any {
	return []any{
		r.Date.Format(dateLayout),
		r.Object,
		r.Staff,
		r.Adults,
		r.Discount,
		r.Revenue(),
		r.Comment,
	}
}

// Appender adds one row to the report sheet.
type Appender interface {
	Append(ctx context.Context, row []any) error
}

// Google appends through the Sheets API values.append call.
type Google struct {
	svc           *gsheets.Service
	spreadsheetID string
	rng           string
}

// NewGoogle builds the service from opts, which must carry credentials or an
// authenticated HTTP client.
func NewGoogle(ctx context.Context, spreadsheetID, rng string, opts ...option.ClientOption) (*Google, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("sheets: spreadsheet id not configured")
	}
	if rng == "" {
		rng = "A:G"
	}
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: service: %w", err)
	}
	return &Google{svc: svc, spreadsheetID: spreadsheetID, rng: rng}, nil
}

// CredentialOptions picks inline JSON over a file path.
func CredentialOptions(file, inline string) ([]option.ClientOption, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(inline)), option.WithScopes(gsheets.SpreadsheetsScope)}, nil
	case strings.TrimSpace(file) != "":
		return []option.ClientOption{option.WithCredentialsFile(file), option.WithScopes(gsheets.SpreadsheetsScope)}, nil
	}
	return nil, errors.New("sheets: no service account credentials")
}

func (g *Google) Append(ctx context.Context, row []any) error {
	vr := &gsheets.ValueRange{Values: [][]any{row}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, g.rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append: %w", err)
	}
	return nil
}
