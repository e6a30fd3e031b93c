package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/middleware"
	"faithledger/internal/models"
)

// View renders HTML pages and fills in the values the layout needs.
type View struct {
	ChurchName string
	now        func() time.Time
}

// NewView creates a View for the named organization.
func NewView(churchName string) *View {
	return &View{ChurchName: churchName, now: time.Now}
}

// Page completes data with the signed-in user, pending flash messages and
// the organization name. It satisfies middleware.PageData.
func (v *View) Page(c *gin.Context, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.CurrentUser(c)
	data["Flashes"] = middleware.Flashes(c)
	data["ChurchName"] = v.ChurchName
	data["Path"] = c.Request.URL.Path
	data["Today"] = v.Today()
	return data
}

// Today returns the current calendar date as midnight UTC.
func (v *View) Today() time.Time {
	now := v.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (v *View) render(c *gin.Context, status int, page string, data gin.H) {
	c.HTML(status, page, v.Page(c, data))
}

// respondWithError hands err to middleware.ErrorHandler, which renders the
// error page (or JSON for AJAX requests) after the handler returns.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// redirectWithFlash queues a flash message and redirects with 302 Found.
func redirectWithFlash(c *gin.Context, level, message, location string) {
	middleware.AddFlash(c, level, message)
	c.Redirect(http.StatusFound, location)
}

// fieldErrors extracts per-field form messages from err.
func fieldErrors(err error) (apperrors.FieldErrors, bool) {
	var fields apperrors.FieldErrors
	if errors.As(err, &fields) {
		return fields, true
	}
	return nil, false
}

// parseDate parses a yyyy-mm-dd form value as midnight UTC.
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout, strings.TrimSpace(value), time.UTC)
}

// formBool interprets a checkbox value. Browsers post "on" for a checked box.
func formBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

var (
	transactionTypes = []models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}
	categoryTypes    = []models.CategoryType{models.CategoryTypeIncome, models.CategoryTypeExpense}
	statuses         = []models.TransactionStatus{models.StatusPaid, models.StatusPending}
)
