package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/export"
	"faithledger/internal/ledger"
	"faithledger/internal/models"
	"faithledger/internal/services"
)

// ReportHandler serves the date-range report and its downloads.
type ReportHandler struct {
	view     *View
	reports  services.ReportServicer
	currency string
}

// NewReportHandler creates a new ReportHandler. Exported amounts carry the
// currency symbol.
func NewReportHandler(view *View, reports services.ReportServicer, currency string) *ReportHandler {
	return &ReportHandler{view: view, reports: reports, currency: currency}
}

// Reports shows the entries between date_from and date_to inclusive, by
// default the current month so far. With export_excel or export_pdf set the
// same rows are sent as a download instead.
func (h *ReportHandler) Reports(c *gin.Context) {
	today := h.view.Today()
	fromValue := queryOr(c, "date_from", ledger.MonthStart(today).Format(models.DateLayout))
	toValue := queryOr(c, "date_to", today.Format(models.DateLayout))

	errs := apperrors.FieldErrors{}
	from, err := parseDate(fromValue)
	if err != nil {
		errs.Add("date_from", msgInvalidDate)
	}
	to, err := parseDate(toValue)
	if err != nil {
		errs.Add("date_to", msgInvalidDate)
	}
	if len(errs) == 0 && to.Before(from) {
		errs.Add("date_to", "End date must not be before the start date.")
	}

	data := gin.H{
		"DateFrom": fromValue,
		"DateTo":   toValue,
		"Errors":   errs,
		"Report":   nil,
	}
	if len(errs) > 0 {
		h.view.render(c, http.StatusOK, "reports.html", data)
		return
	}

	report, err := h.reports.Report(from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	switch {
	case c.Query("export_excel") != "":
		h.download(c, report, "xlsx", export.ContentTypeExcel, export.WriteExcel)
	case c.Query("export_pdf") != "":
		h.download(c, report, "pdf", export.ContentTypePDF, export.WritePDF)
	default:
		data["Report"] = report
		h.view.render(c, http.StatusOK, "reports.html", data)
	}
}

// download renders the whole document before writing, so a failed export
// still gets an error page.
func (h *ReportHandler) download(c *gin.Context, report *services.Report, ext, contentType string, write func(io.Writer, export.Report) error) {
	var buf bytes.Buffer
	err := write(&buf, export.Report{
		Organization:   h.view.ChurchName,
		From:           report.From,
		To:             report.To,
		CurrencySymbol: h.currency,
		Rows:           report.Transactions,
		Summary:        report.Summary,
	})
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(report.From, report.To, ext)+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// queryOr returns the trimmed query value of key, or fallback when it is
// missing or blank.
func queryOr(c *gin.Context, key, fallback string) string {
	if v := strings.TrimSpace(c.Query(key)); v != "" {
		return v
	}
	return fallback
}
