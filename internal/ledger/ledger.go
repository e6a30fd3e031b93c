// Package ledger computes the aggregates shown on the dashboard, analytics,
// calendar and report screens. Every function is pure: callers query the
// rows and hand them in, so results depend only on the input slice.
package ledger

import (
	"sort"
	"time"

	"faithledger/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary holds the totals for a set of transactions.
type Summary struct {
	Income       decimal.Decimal
	Expense      decimal.Decimal
	PendingTotal decimal.Decimal
	PendingCount int
	Net          decimal.Decimal
}

// Summarize totals income, expense and pending amounts. Pending rows count
// toward their type's total as well as the pending total.
func Summarize(rows []models.Transaction) Summary {
	var s Summary
	for i := range rows {
		t := &rows[i]
		if t.IsIncome() {
			s.Income = s.Income.Add(t.Amount)
		} else {
			s.Expense = s.Expense.Add(t.Amount)
		}
		if t.IsPending {
			s.PendingTotal = s.PendingTotal.Add(t.Amount)
			s.PendingCount++
		}
	}
	s.Income = s.Income.Round(2)
	s.Expense = s.Expense.Round(2)
	s.PendingTotal = s.PendingTotal.Round(2)
	s.Net = s.Income.Sub(s.Expense)
	return s
}

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the first day of the month after t's month.
func NextMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// AddMonths shifts the month containing t by n calendar months and returns
// its first day.
func AddMonths(t time.Time, n int) time.Time {
	return MonthStart(t).AddDate(0, n, 0)
}

// TrendWindow returns the half-open [from, to) range covering the n months
// that end with end's month.
func TrendWindow(end time.Time, n int) (from, to time.Time) {
	if n < 1 {
		n = 1
	}
	return AddMonths(end, -(n - 1)), NextMonth(end)
}

// MonthPoint is one month of a trend series.
type MonthPoint struct {
	Label   string          `json:"month"`
	Start   time.Time       `json:"-"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Trend buckets rows into the n months ending with end's month, oldest
// first. Months without rows are present with zero totals.
func Trend(rows []models.Transaction, end time.Time, n int) []MonthPoint {
	from, _ := TrendWindow(end, n)
	points := make([]MonthPoint, 0, n)
	index := make(map[time.Time]int, n)
	for i := 0; i < n; i++ {
		start := AddMonths(from, i)
		index[start] = i
		points = append(points, MonthPoint{Label: start.Format("Jan 2006"), Start: start})
	}

	for i := range rows {
		idx, ok := index[MonthStart(rows[i].Date)]
		if !ok {
			continue
		}
		if rows[i].IsIncome() {
			points[idx].Income = points[idx].Income.Add(rows[i].Amount)
		} else {
			points[idx].Expense = points[idx].Expense.Add(rows[i].Amount)
		}
	}
	return points
}

// SeriesPoint is one month of a single-category series.
type SeriesPoint struct {
	Label  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// CategorySeries totals rows whose category is named categoryName per month,
// over the n months ending with end's month.
func CategorySeries(rows []models.Transaction, categoryName string, end time.Time, n int) []SeriesPoint {
	var matching []models.Transaction
	for i := range rows {
		if rows[i].CategoryName() == categoryName {
			matching = append(matching, rows[i])
		}
	}

	trend := Trend(matching, end, n)
	series := make([]SeriesPoint, len(trend))
	for i, p := range trend {
		series[i] = SeriesPoint{Label: p.Label, Amount: p.Income.Add(p.Expense)}
	}
	return series
}

// CategoryTotal is the amount recorded against one category.
type CategoryTotal struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
	Percent    decimal.Decimal `json:"pct"`
}

// totalsByCategory groups rows of the given type by category, sorted by
// total descending then name.
func totalsByCategory(rows []models.Transaction, typ models.TransactionType) []CategoryTotal {
	byID := make(map[string]*CategoryTotal)
	var order []string
	for i := range rows {
		t := &rows[i]
		if t.Type != typ {
			continue
		}
		ct, ok := byID[t.CategoryID]
		if !ok {
			ct = &CategoryTotal{CategoryID: t.CategoryID, Name: t.CategoryName()}
			byID[t.CategoryID] = ct
			order = append(order, t.CategoryID)
		}
		ct.Total = ct.Total.Add(t.Amount)
	}

	totals := make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		totals = append(totals, *byID[id])
	}
	sort.SliceStable(totals, func(i, j int) bool {
		if c := totals[i].Total.Cmp(totals[j].Total); c != 0 {
			return c > 0
		}
		return totals[i].Name < totals[j].Name
	})
	return totals
}

// ExpenseBreakdown returns the share of overall expense held by each
// expense category. Percentages are rounded to one decimal place.
func ExpenseBreakdown(rows []models.Transaction) []CategoryTotal {
	totals := totalsByCategory(rows, models.TransactionTypeExpense)

	overall := decimal.Zero
	for _, ct := range totals {
		overall = overall.Add(ct.Total)
	}
	if overall.IsZero() {
		overall = decimal.NewFromInt(1)
	}

	for i := range totals {
		totals[i].Percent = totals[i].Total.Div(overall).Mul(hundred).Round(1)
	}
	return totals
}

// TopCategory returns the category with the largest total for typ.
func TopCategory(rows []models.Transaction, typ models.TransactionType) (CategoryTotal, bool) {
	totals := totalsByCategory(rows, typ)
	if len(totals) == 0 {
		return CategoryTotal{}, false
	}
	return totals[0], true
}

// AverageMonthly is the mean monthly total of typ over the months that have
// at least one row of that type.
func AverageMonthly(rows []models.Transaction, typ models.TransactionType) decimal.Decimal {
	months := make(map[time.Time]decimal.Decimal)
	for i := range rows {
		if rows[i].Type != typ {
			continue
		}
		m := MonthStart(rows[i].Date)
		months[m] = months[m].Add(rows[i].Amount)
	}
	if len(months) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, v := range months {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(int64(len(months)))).Round(2)
}
