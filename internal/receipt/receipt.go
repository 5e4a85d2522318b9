// Package receipt renders a priced bill as plain text or PDF.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"restaurant-billing/internal/config"
	"restaurant-billing/internal/menu"
	"restaurant-billing/internal/models"
	"restaurant-billing/internal/pricing"
)

const dateLayout = "2006-01-02 15:04:05"

// Format selects the receipt encoding.
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "text", "txt" or "pdf"; the empty string means text.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text", "txt":
		return FormatText, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", errors.Newf("unknown receipt format %q", s)
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	if f == FormatPDF {
		return "pdf"
	}
	return "txt"
}

// ContentType is the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

// Header is printed at the top of every receipt.
type Header struct {
	Name     string
	Tagline  string
	Currency string
}

// HeaderFromConfig builds the header from the restaurant section.
func HeaderFromConfig(cfg config.RestaurantConfig) Header {
	return Header{Name: cfg.Name, Tagline: cfg.Tagline, Currency: cfg.Currency}
}

// Bill is everything a receipt shows.
type Bill struct {
	Header        Header
	BillNumber    string
	Date          time.Time
	CustomerName  string
	CustomerPhone string
	Lines         []pricing.Line
	Totals        models.Totals
}

// FromRecord builds a receipt for a stored order. Amounts come from the
// ledger; the item rows are priced against the current catalog.
func FromRecord(h Header, rec models.OrderRecord, catalog *menu.Catalog) Bill {
	return Bill{
		Header:        h,
		BillNumber:    rec.BillNumber,
		Date:          rec.OrderDate,
		CustomerName:  rec.CustomerName,
		CustomerPhone: rec.CustomerPhone,
		Lines:         pricing.Breakdown(rec.Lines, catalog),
		Totals:        rec.Totals,
	}
}

func (b Bill) money(d decimal.Decimal) string {
	return fmt.Sprintf("%s %s", b.Header.Currency, d.StringFixed(2))
}

// FileName is Bill_<billNumber>.<ext>.
func FileName(billNumber string, f Format) string {
	return fmt.Sprintf("Bill_%s.%s", billNumber, f.Ext())
}

// WriteFile renders the bill into dir and returns the path written.
func WriteFile(dir string, b Bill, f Format) (string, error) {
	path := filepath.Join(dir, FileName(b.BillNumber, f))
	out, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create receipt file")
	}

	switch f {
	case FormatPDF:
		err = PDF(out, b)
	default:
		err = Text(out, b)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
