package handlers

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/export"
	"faithledger/internal/ledger"
	"faithledger/internal/models"
	"faithledger/internal/services"
)

func setupReportRouter(handler *ReportHandler) (*gin.Engine, *recordingRender) {
	r, group, pages := newTestRouter(handler.view, testUser)
	group.GET("/reports", handler.Reports)
	return r, pages
}

func sampleReport(from, to time.Time) *services.Report {
	rows := []models.Transaction{*existingTransaction()}
	return &services.Report{From: from, To: to, Transactions: rows, Summary: ledger.Summarize(rows)}
}

func TestReportHandler_Reports(t *testing.T) {
	t.Run("defaults_to_the_month_so_far", func(t *testing.T) {
		var gotFrom, gotTo time.Time
		reports := &mockReportService{
			reportFn: func(from, to time.Time) (*services.Report, error) {
				gotFrom, gotTo = from, to
				return sampleReport(from, to), nil
			},
		}
		r, pages := setupReportRouter(NewReportHandler(newTestView(), reports, "₹"))

		rec := doRequest(r, "GET", "/reports", "")

		page := assertPage(t, rec, pages, http.StatusOK, "reports.html")
		if gotFrom.Format(models.DateLayout) != "2026-03-01" || gotTo.Format(models.DateLayout) != "2026-03-15" {
			t.Errorf("unexpected range %v..%v", gotFrom, gotTo)
		}
		if page.Data["DateFrom"] != "2026-03-01" || page.Data["DateTo"] != "2026-03-15" {
			t.Errorf("unexpected form values %v %v", page.Data["DateFrom"], page.Data["DateTo"])
		}
		report := page.Data["Report"].(*services.Report)
		if !report.Summary.Income.Equal(decimal.RequireFromString("1500.5")) {
			t.Errorf("unexpected income %s", report.Summary.Income)
		}
	})

	t.Run("reports_bad_dates", func(t *testing.T) {
		reports := &mockReportService{
			reportFn: func(time.Time, time.Time) (*services.Report, error) {
				t.Fatal("expected no report")
				return nil, nil
			},
		}
		r, pages := setupReportRouter(NewReportHandler(newTestView(), reports, "₹"))

		rec := doRequest(r, "GET", "/reports?date_from=01/03/2026&date_to=2026-03-31", "")

		page := assertPage(t, rec, pages, http.StatusOK, "reports.html")
		errs := page.Data["Errors"].(apperrors.FieldErrors)
		if errs["date_from"] != msgInvalidDate {
			t.Errorf("unexpected errors %v", errs)
		}
		if page.Data["Report"] != nil {
			t.Error("expected no report")
		}
	})

	t.Run("rejects_a_reversed_range", func(t *testing.T) {
		r, pages := setupReportRouter(NewReportHandler(newTestView(), &mockReportService{}, "₹"))

		rec := doRequest(r, "GET", "/reports?date_from=2026-03-31&date_to=2026-03-01", "")

		page := assertPage(t, rec, pages, http.StatusOK, "reports.html")
		if errs := page.Data["Errors"].(apperrors.FieldErrors); errs["date_to"] == "" {
			t.Errorf("expected a date_to error, got %v", errs)
		}
	})

	t.Run("exports_excel", func(t *testing.T) {
		reports := &mockReportService{
			reportFn: func(from, to time.Time) (*services.Report, error) { return sampleReport(from, to), nil },
		}
		r, _ := setupReportRouter(NewReportHandler(newTestView(), reports, "₹"))

		rec := doRequest(r, "GET", "/reports?date_from=2026-03-01&date_to=2026-03-31&export_excel=1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != export.ContentTypeExcel {
			t.Errorf("unexpected content type %q", ct)
		}
		want := `attachment; filename="FaithLedger_Report_2026-03-01_2026-03-31.xlsx"`
		if cd := rec.Header().Get("Content-Disposition"); cd != want {
			t.Errorf("expected %q, got %q", want, cd)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
			t.Error("expected a zip container")
		}
	})

	t.Run("exports_pdf", func(t *testing.T) {
		reports := &mockReportService{
			reportFn: func(from, to time.Time) (*services.Report, error) { return sampleReport(from, to), nil },
		}
		r, _ := setupReportRouter(NewReportHandler(newTestView(), reports, "₹"))

		rec := doRequest(r, "GET", "/reports?date_from=2026-03-01&date_to=2026-03-31&export_pdf=1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != export.ContentTypePDF {
			t.Errorf("unexpected content type %q", ct)
		}
		want := `attachment; filename="FaithLedger_Report_2026-03-01_2026-03-31.pdf"`
		if cd := rec.Header().Get("Content-Disposition"); cd != want {
			t.Errorf("expected %q, got %q", want, cd)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
			t.Error("expected a PDF document")
		}
	})
}
