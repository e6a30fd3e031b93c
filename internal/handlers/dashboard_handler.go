package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"faithledger/internal/services"
)

// DashboardHandler serves the landing page and the analytics page.
type DashboardHandler struct {
	view             *View
	reports          services.ReportServicer
	offeringCategory string
}

// NewDashboardHandler creates a new DashboardHandler. offeringCategory is
// the income category charted as offerings.
func NewDashboardHandler(view *View, reports services.ReportServicer, offeringCategory string) *DashboardHandler {
	return &DashboardHandler{view: view, reports: reports, offeringCategory: offeringCategory}
}

// Dashboard shows the current month at a glance.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	today := h.view.Today()
	dash, err := h.reports.Dashboard(today)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.view.render(c, http.StatusOK, "dashboard.html", gin.H{
		"Dashboard":      dash,
		"MonthLabel":     today.Format("January 2006"),
		"TrendChart":     newTrendChart(dash.Trend),
		"BreakdownChart": newBreakdownChart(dash.Breakdown),
		"OfferingChart":  newSeriesChart(dash.OfferingTrend),
	})
}

// Analytics shows the all-time figures.
func (h *DashboardHandler) Analytics(c *gin.Context) {
	analytics, err := h.reports.Analytics(h.view.Today())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.view.render(c, http.StatusOK, "analytics.html", gin.H{
		"Analytics":        analytics,
		"OfferingCategory": h.offeringCategory,
		"TrendChart":       newTrendChart(analytics.Trend),
		"BreakdownChart":   newBreakdownChart(analytics.Breakdown),
	})
}
