package ledger

import (
	"time"

	"faithledger/internal/models"

	"github.com/shopspring/decimal"
)

// DayNames heads the calendar columns. Weeks start on Sunday.
var DayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayTotals is the activity recorded on one day.
type DayTotals struct {
	Income       decimal.Decimal
	Expense      decimal.Decimal
	PendingCount int
}

// DayCell is one in-month cell of the calendar grid. Totals is nil on days
// without transactions.
type DayCell struct {
	Day    int
	Date   time.Time
	Totals *DayTotals
}

// Calendar is a month grid of seven-column weeks. Cells outside the month
// are nil.
type Calendar struct {
	Year      int
	Month     time.Month
	MonthName string
	Weeks     [][]*DayCell
	Prev      time.Time
	Next      time.Time
}

// DailyTotals groups rows by day of month.
func DailyTotals(rows []models.Transaction) map[int]*DayTotals {
	daily := make(map[int]*DayTotals)
	for i := range rows {
		t := &rows[i]
		d := t.Date.Day()
		dt, ok := daily[d]
		if !ok {
			dt = &DayTotals{}
			daily[d] = dt
		}
		if t.IsIncome() {
			dt.Income = dt.Income.Add(t.Amount)
		} else {
			dt.Expense = dt.Expense.Add(t.Amount)
		}
		if t.Status == models.StatusPending {
			dt.PendingCount++
		}
	}
	return daily
}

// BuildCalendar lays out year/month as a Sunday-first grid and attaches the
// daily totals of rows, which must all fall inside that month.
func BuildCalendar(year int, month time.Month, rows []models.Transaction) Calendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	daily := DailyTotals(rows)

	cal := Calendar{
		Year:      first.Year(),
		Month:     first.Month(),
		MonthName: first.Month().String(),
		Prev:      AddMonths(first, -1),
		Next:      NextMonth(first),
	}

	week := make([]*DayCell, 7)
	col := int(first.Weekday())
	for day := 1; day <= daysInMonth; day++ {
		week[col] = &DayCell{
			Day:    day,
			Date:   time.Date(cal.Year, cal.Month, day, 0, 0, 0, 0, time.UTC),
			Totals: daily[day],
		}
		col++
		if col == 7 {
			cal.Weeks = append(cal.Weeks, week)
			week = make([]*DayCell, 7)
			col = 0
		}
	}
	if col > 0 {
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal
}
