package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/ledger"
	"faithledger/internal/models"
)

// Window lengths of the trend charts.
const (
	DashboardTrendMonths = 6
	AnalyticsTrendMonths = 12
	recentLimit          = 10
)

// reportService builds the read-only aggregate views. Queries select the
// rows; the ledger package does the arithmetic.
type reportService struct {
	db               *gorm.DB
	offeringCategory string
}

// NewReportService creates a new ReportServicer. offeringCategory names the
// income category charted as the offering trend.
func NewReportService(db *gorm.DB, offeringCategory string) ReportServicer {
	return &reportService{db: db, offeringCategory: offeringCategory}
}

// between loads the entries dated in [from, to) with their categories.
func (s *reportService) between(from, to time.Time, order string) ([]models.Transaction, error) {
	var rows []models.Transaction
	if err := s.db.Preload("Category").Preload("SubCategory").
		Where("date >= ? AND date < ?", from, to).
		Order(order).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

// offerings keeps the income rows booked against the offering category.
func (s *reportService) offerings(rows []models.Transaction) []models.Transaction {
	var out []models.Transaction
	for i := range rows {
		if rows[i].IsIncome() && rows[i].CategoryName() == s.offeringCategory {
			out = append(out, rows[i])
		}
	}
	return out
}

// Dashboard summarises the current month, the recent entries and the
// trailing six months.
func (s *reportService) Dashboard(today time.Time) (*Dashboard, error) {
	from, to := ledger.TrendWindow(today, DashboardTrendMonths)
	rows, err := s.between(from, to, "date ASC, created_at ASC")
	if err != nil {
		return nil, err
	}

	monthStart := ledger.MonthStart(today)
	var month []models.Transaction
	for i := range rows {
		if !rows[i].Date.Before(monthStart) {
			month = append(month, rows[i])
		}
	}
	summary := ledger.Summarize(month)

	var pending int64
	if err := s.db.Model(&models.Transaction{}).
		Where("status = ?", models.StatusPending).
		Count(&pending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var recent []models.Transaction
	if err := s.db.Preload("Category").Preload("SubCategory").
		Order("date DESC, created_at DESC").
		Limit(recentLimit).
		Find(&recent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &Dashboard{
		MonthIncome:   summary.Income,
		MonthExpense:  summary.Expense,
		MonthNet:      summary.Net,
		PendingCount:  pending,
		Recent:        recent,
		Trend:         ledger.Trend(rows, today, DashboardTrendMonths),
		Breakdown:     ledger.ExpenseBreakdown(month),
		OfferingTrend: ledger.CategorySeries(s.offerings(rows), s.offeringCategory, today, DashboardTrendMonths),
	}, nil
}

// Analytics computes the all-time figures and the twelve-month trend.
func (s *reportService) Analytics(today time.Time) (*Analytics, error) {
	var rows []models.Transaction
	if err := s.db.Preload("Category").Order("date ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	a := &Analytics{
		AverageMonthly: ledger.AverageMonthly(rows, models.TransactionTypeIncome),
		Breakdown:      ledger.ExpenseBreakdown(rows),
		Trend:          ledger.Trend(rows, today, AnalyticsTrendMonths),
	}
	if top, ok := ledger.TopCategory(rows, models.TransactionTypeIncome); ok {
		a.TopIncome = &top
	}
	if top, ok := ledger.TopCategory(rows, models.TransactionTypeExpense); ok {
		a.TopExpense = &top
	}

	yearStart := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, t := range s.offerings(rows) {
		if !t.Date.Before(yearStart) {
			a.OfferingsYearToDate = a.OfferingsYearToDate.Add(t.Amount)
		}
	}
	a.OfferingsYearToDate = a.OfferingsYearToDate.Round(2)

	return a, nil
}

// Calendar builds the month grid for year/month.
func (s *reportService) Calendar(year int, month time.Month) (*ledger.Calendar, error) {
	if month < time.January || month > time.December || year < 1 || year > 9999 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid calendar month")
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.between(start, ledger.NextMonth(start), "date ASC")
	if err != nil {
		return nil, err
	}

	cal := ledger.BuildCalendar(year, month, rows)
	return &cal, nil
}

// DayDetail lists one day's entries with their totals.
func (s *reportService) DayDetail(date time.Time) (*DayDetail, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := s.between(day, day.AddDate(0, 0, 1), "created_at ASC")
	if err != nil {
		return nil, err
	}

	return &DayDetail{
		Date:         day,
		Transactions: rows,
		Summary:      ledger.Summarize(rows),
	}, nil
}

// Report selects the entries dated from..to inclusive, oldest first, and
// totals them. The same rows feed the exporters.
func (s *reportService) Report(from, to time.Time) (*Report, error) {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)

	rows, err := s.between(from, to.AddDate(0, 0, 1), "date ASC, created_at ASC")
	if err != nil {
		return nil, err
	}

	return &Report{
		From:         from,
		To:           to,
		Transactions: rows,
		Summary:      ledger.Summarize(rows),
	}, nil
}
