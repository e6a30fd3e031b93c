// Package export renders date-range reports as spreadsheet and PDF
// documents. Exporters never query; they lay out the rows they are given.
package export

import (
	"fmt"
	"strings"
	"time"

	"faithledger/internal/ledger"
	"faithledger/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Content types of the exported documents.
const (
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF   = "application/pdf"
)

// rowDateLayout is the day-first date used inside documents.
const rowDateLayout = "02-01-2006"

// Report is everything an exporter needs. Rows are rendered in the order
// given.
type Report struct {
	Organization   string
	From           time.Time
	To             time.Time
	CurrencySymbol string
	Rows           []models.Transaction
	Summary        ledger.Summary
}

// Period renders the report range as "Period: <from> to <to>".
func (r Report) Period() string {
	return fmt.Sprintf("Period: %s to %s", r.From.Format(models.DateLayout), r.To.Format(models.DateLayout))
}

// Filename names the download for the report range, e.g.
// FaithLedger_Report_2026-03-01_2026-03-31.pdf.
func Filename(from, to time.Time, ext string) string {
	return fmt.Sprintf("FaithLedger_Report_%s_%s.%s", from.Format(models.DateLayout), to.Format(models.DateLayout), ext)
}

// Money formats d with the currency symbol and thousands separators,
// e.g. ₹1,234.50. Negative values keep the sign in front of the symbol.
func Money(symbol string, d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Round(2).Float64()
	return sign + symbol + humanize.FormatFloat("#,###.##", f)
}

// pdfSymbol replaces currency signs the PDF core fonts cannot draw.
func pdfSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "₹", "Rs.")
}

// truncate shortens s to n runes followed by "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// orDash substitutes "-" for empty cells.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
