package export

import (
	"fmt"
	"io"
	"time"

	"faithledger/internal/models"

	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres.
const (
	marginSide   = 15
	marginTop    = 10
	marginBottom = 10
	rowHeight    = 7
	notesLimit   = 40
)

var pdfColWidths = []float64{25, 20, 30, 40, 40, 80, 25}

type rgb struct{ r, g, b int }

var (
	pdfBlue      = rgb{0x1A, 0x56, 0xDB}
	pdfGreen     = rgb{0x05, 0x96, 0x69}
	pdfRed       = rgb{0xDC, 0x26, 0x26}
	pdfAmber     = rgb{0xD9, 0x77, 0x06}
	pdfGray      = rgb{0x80, 0x80, 0x80}
	pdfBlack     = rgb{0, 0, 0}
	pdfWhite     = rgb{0xFF, 0xFF, 0xFF}
	pdfLightBlue = rgb{0xEF, 0xF6, 0xFF}
	pdfZebra     = rgb{0xF8, 0xFA, 0xFC}
	pdfGrid      = rgb{0xD3, 0xD3, 0xD3}
)

// documentDate stamps reports without a range end.
var documentDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// pdfWriter wraps fpdf with the report's text translation and palette.
type pdfWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	symbol string
}

func (p *pdfWriter) text(c rgb)   { p.pdf.SetTextColor(c.r, c.g, c.b) }
func (p *pdfWriter) fill(c rgb)   { p.pdf.SetFillColor(c.r, c.g, c.b) }
func (p *pdfWriter) stroke(c rgb) { p.pdf.SetDrawColor(c.r, c.g, c.b) }

func (p *pdfWriter) centered(s string, size float64, style string, c rgb, h float64) {
	p.pdf.SetFont("Helvetica", style, size)
	p.text(c)
	p.pdf.CellFormat(0, h, p.tr(s), "", 1, "C", false, 0, "")
}

// WritePDF renders the report as an A4 landscape document. Output is
// byte-for-byte reproducible for the same report.
func WritePDF(w io.Writer, r Report) error {
	stamp := r.To
	if stamp.IsZero() {
		stamp = documentDate
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(r.Organization+" Transaction Report", true)

	p := &pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		symbol: pdfSymbol(r.CurrencySymbol),
	}

	pdf.AddPage()
	p.centered(r.Organization, 18, "B", pdfBlue, 10)
	p.centered("Transaction Report", 14, "", pdfBlue, 8)
	p.centered(r.Period(), 10, "", pdfGray, 6)
	pdf.Ln(4)

	p.summary(r)
	pdf.Ln(6)

	p.tableHeader()
	_, pageHeight := pdf.GetPageSize()
	for i := range r.Rows {
		if pdf.GetY()+rowHeight > pageHeight-marginBottom {
			pdf.AddPage()
			p.tableHeader()
		}
		p.row(&r.Rows[i], i%2 == 1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func (p *pdfWriter) summary(r Report) {
	p.stroke(pdfBlue)
	p.fill(pdfLightBlue)
	p.pdf.SetLineWidth(0.3)
	for _, item := range summaryItems(r) {
		p.text(pdfBlack)
		p.pdf.SetFont("Helvetica", "B", 10)
		p.pdf.CellFormat(60, rowHeight, item.label, "1", 0, "L", true, 0, "")
		p.pdf.SetFont("Helvetica", "", 10)
		p.pdf.CellFormat(50, rowHeight, Money(p.symbol, item.value), "1", 1, "C", true, 0, "")
	}
}

func (p *pdfWriter) tableHeader() {
	p.stroke(pdfGrid)
	p.fill(pdfBlue)
	p.text(pdfWhite)
	p.pdf.SetLineWidth(0.2)
	p.pdf.SetFont("Helvetica", "B", 9)
	headers := []string{"Date", "Type", "Amount (" + p.symbol + ")", "Category", "SubCategory", "Notes", "Status"}
	for i, h := range headers {
		p.pdf.CellFormat(pdfColWidths[i], rowHeight, p.tr(h), "1", 0, "C", true, 0, "")
	}
	p.pdf.Ln(-1)
}

func (p *pdfWriter) row(t *models.Transaction, zebra bool) {
	background := pdfWhite
	if zebra {
		background = pdfZebra
	}
	typeColor := pdfRed
	if t.IsIncome() {
		typeColor = pdfGreen
	}
	statusColor := pdfBlack
	if t.Status == models.StatusPending {
		statusColor = pdfAmber
	}

	cells := []struct {
		value string
		color rgb
		align string
	}{
		{t.Date.Format(rowDateLayout), pdfBlack, "C"},
		{string(t.Type), typeColor, "C"},
		{Money(p.symbol, t.Amount), typeColor, "C"},
		{t.CategoryName(), pdfBlack, "C"},
		{orDash(t.SubCategoryName()), pdfBlack, "C"},
		{orDash(truncate(t.Notes, notesLimit)), pdfBlack, "L"},
		{string(t.Status), statusColor, "C"},
	}

	p.fill(background)
	p.pdf.SetFont("Helvetica", "", 8)
	for i, c := range cells {
		p.text(c.color)
		p.pdf.CellFormat(pdfColWidths[i], rowHeight, p.tr(c.value), "1", 0, c.align, true, 0, "")
	}
	p.pdf.Ln(-1)
}
