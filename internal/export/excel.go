package export

import (
	"fmt"
	"io"

	"faithledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the report.
const SheetName = "Transactions"

// Layout of the worksheet.
const (
	headerRow    = 4
	firstDataRow = headerRow + 1
)

var (
	excelHeaders   = []string{"Date", "Type", "Amount (%s)", "Category", "SubCategory", "Notes", "Status"}
	excelColWidths = []float64{14, 10, 14, 20, 20, 40, 10}
)

// Excel palette.
const (
	colorBlue        = "1A56DB"
	colorGreen       = "059669"
	colorRed         = "DC2626"
	colorIncomeFill  = "D1FAE5"
	colorPendingFill = "FEF3C7"
	colorExpenseFill = "FEE2E2"
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// rowStyles holds the style IDs of one fill colour, with and without the
// currency number format.
type rowStyles struct {
	text   int
	amount int
}

type excelStyles struct {
	title   int
	period  int
	header  int
	income  rowStyles
	pending rowStyles
	expense rowStyles
	label   int
	heading int
	values  map[string]int
}

func newExcelStyles(f *excelize.File, symbol string) (*excelStyles, error) {
	numFmt := fmt.Sprintf(`"%s"#,##0.00`, symbol)
	s := &excelStyles{values: make(map[string]int)}

	var err error
	newStyle := func(style *excelize.Style) int {
		if err != nil {
			return 0
		}
		var id int
		id, err = f.NewStyle(style)
		return id
	}
	fill := func(color string) rowStyles {
		base := excelize.Style{
			Border: thinBorder,
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		}
		withFmt := base
		withFmt.CustomNumFmt = &numFmt
		return rowStyles{text: newStyle(&base), amount: newStyle(&withFmt)}
	}

	s.title = newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: colorBlue},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.period = newStyle(&excelize.Style{Alignment: &excelize.Alignment{Horizontal: "center"}})
	s.header = newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{colorBlue}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorder,
	})
	s.income = fill(colorIncomeFill)
	s.pending = fill(colorPendingFill)
	s.expense = fill(colorExpenseFill)
	s.heading = newStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	s.label = newStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for _, v := range []struct{ label, color string }{
		{"Total Income", colorGreen},
		{"Total Expense", colorRed},
		{"Total Pending", ""},
		{"Net Balance", colorBlue},
	} {
		style := &excelize.Style{CustomNumFmt: &numFmt}
		if v.color != "" {
			style.Font = &excelize.Font{Bold: true, Color: v.color}
		}
		s.values[v.label] = newStyle(style)
	}
	return s, err
}

// forRow picks the fill of a transaction row.
func (s *excelStyles) forRow(t *models.Transaction) rowStyles {
	switch {
	case t.IsIncome():
		return s.income
	case t.Status == models.StatusPending:
		return s.pending
	default:
		return s.expense
	}
}

// WriteExcel renders the report as an .xlsx workbook with a single
// "Transactions" sheet.
func WriteExcel(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newExcelStyles(f, r.CurrencySymbol)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	cells := &cellWriter{f: f}
	cells.merged("A1", "G1", r.Organization+" – Transaction Report", styles.title)
	cells.merged("A2", "G2", r.Period(), styles.period)

	for i, h := range excelHeaders {
		if i == 2 {
			h = fmt.Sprintf(h, r.CurrencySymbol)
		}
		cells.set(i+1, headerRow, h, styles.header)
	}

	for i := range r.Rows {
		t := &r.Rows[i]
		row := firstDataRow + i
		style := styles.forRow(t)
		amount, _ := t.Amount.Float64()

		cells.set(1, row, t.Date.Format(rowDateLayout), style.text)
		cells.set(2, row, string(t.Type), style.text)
		cells.set(3, row, amount, style.amount)
		cells.set(4, row, t.CategoryName(), style.text)
		cells.set(5, row, t.SubCategoryName(), style.text)
		cells.set(6, row, t.Notes, style.text)
		cells.set(7, row, string(t.Status), style.text)
	}

	summaryRow := headerRow + len(r.Rows) + 2
	cells.set(1, summaryRow, "SUMMARY", styles.heading)
	for i, item := range summaryItems(r) {
		row := summaryRow + i + 1
		value, _ := item.value.Float64()
		cells.set(1, row, item.label, styles.label)
		cells.set(2, row, value, styles.values[item.label])
	}

	for i, width := range excelColWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if cells.err != nil {
		return fmt.Errorf("write cells: %w", cells.err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// summaryItem is one labelled total of the summary block.
type summaryItem struct {
	label string
	value decimal.Decimal
}

func summaryItems(r Report) []summaryItem {
	return []summaryItem{
		{"Total Income", r.Summary.Income},
		{"Total Expense", r.Summary.Expense},
		{"Total Pending", r.Summary.PendingTotal},
		{"Net Balance", r.Summary.Net},
	}
}

// cellWriter sets values and styles on the report sheet, keeping the first
// error.
type cellWriter struct {
	f   *excelize.File
	err error
}

func (c *cellWriter) set(col, row int, value interface{}, style int) {
	if c.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		c.err = err
		return
	}
	if c.err = c.f.SetCellValue(SheetName, cell, value); c.err != nil {
		return
	}
	c.err = c.f.SetCellStyle(SheetName, cell, cell, style)
}

func (c *cellWriter) merged(from, to string, value string, style int) {
	if c.err != nil {
		return
	}
	if c.err = c.f.MergeCell(SheetName, from, to); c.err != nil {
		return
	}
	if c.err = c.f.SetCellValue(SheetName, from, value); c.err != nil {
		return
	}
	c.err = c.f.SetCellStyle(SheetName, from, to, style)
}
