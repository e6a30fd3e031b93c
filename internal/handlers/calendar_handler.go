package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/ledger"
	"faithledger/internal/services"
)

// CalendarHandler serves the month grid and the day detail pages.
type CalendarHandler struct {
	view    *View
	reports services.ReportServicer
}

// NewCalendarHandler creates a new CalendarHandler.
func NewCalendarHandler(view *View, reports services.ReportServicer) *CalendarHandler {
	return &CalendarHandler{view: view, reports: reports}
}

// Calendar shows the month named by ?year=&month=. Missing or unusable
// values fall back to the current month.
func (h *CalendarHandler) Calendar(c *gin.Context) {
	today := h.view.Today()
	year, month := today.Year(), today.Month()

	if y, err := strconv.Atoi(c.Query("year")); err == nil && y >= 1 && y <= 9999 {
		year = y
	}
	if m, err := strconv.Atoi(c.Query("month")); err == nil && m >= 1 && m <= 12 {
		month = time.Month(m)
	}

	cal, err := h.reports.Calendar(year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.view.render(c, http.StatusOK, "calendar.html", gin.H{
		"Calendar": cal,
		"DayNames": ledger.DayNames,
	})
}

// Day lists the entries of one date. A date that does not exist is a 404.
func (h *CalendarHandler) Day(c *gin.Context) {
	date, ok := calendarDate(c.Param("year"), c.Param("month"), c.Param("day"))
	if !ok {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrNotFound, "Day not found"))
		return
	}

	detail, err := h.reports.DayDetail(date)
	if err != nil {
		respondWithError(c, err)
		return
	}
	h.view.render(c, http.StatusOK, "calendar_day.html", gin.H{"Detail": detail})
}

// calendarDate builds a date from path segments, rejecting values that
// time.Date would normalize, such as February 30.
func calendarDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}

	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if date.Day() != d || date.Month() != time.Month(m) {
		return time.Time{}, false
	}
	return date, true
}
