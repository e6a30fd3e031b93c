package handlers

import (
	"errors"
	"html/template"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/models"
	"faithledger/internal/services"
	"faithledger/internal/validator"
)

// Messages shared by several forms.
const (
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidDate   = "Enter a valid date."
	msgInvalidNumber = "Enter a number."
)

// TransactionForm is the add/edit transaction form as posted.
type TransactionForm struct {
	Date        string `form:"date" binding:"required"`
	Type        string `form:"transaction_type" binding:"required,transaction_type"`
	Amount      string `form:"amount" binding:"required"`
	Category    string `form:"category" binding:"required"`
	SubCategory string `form:"subcategory"`
	Notes       string `form:"notes"`
	IsPending   string `form:"is_pending"`
}

// Pending reports whether the pending box is ticked.
func (f TransactionForm) Pending() bool { return formBool(f.IsPending) }

func transactionFormFor(t *models.Transaction) TransactionForm {
	form := TransactionForm{
		Date:     t.Date.Format(models.DateLayout),
		Type:     string(t.Type),
		Amount:   t.Amount.StringFixed(2),
		Category: t.CategoryID,
		Notes:    t.Notes,
	}
	if t.SubCategoryID != nil {
		form.SubCategory = *t.SubCategoryID
	}
	if t.IsPending {
		form.IsPending = "on"
	}
	return form
}

// bindTransactionForm reads the posted form and converts it to service
// input. Conversion problems are reported per field.
func bindTransactionForm(c *gin.Context) (TransactionForm, services.TransactionInput, apperrors.FieldErrors) {
	var form TransactionForm
	errs := apperrors.FieldErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = validator.FieldErrors(err)
	}

	in := services.TransactionInput{
		Type:       models.TransactionType(form.Type),
		CategoryID: strings.TrimSpace(form.Category),
		Notes:      form.Notes,
		IsPending:  form.Pending(),
	}
	if form.Date != "" {
		date, err := parseDate(form.Date)
		if err != nil {
			errs.Add("date", msgInvalidDate)
		}
		in.Date = date
	}
	if form.Amount != "" {
		amount, err := decimal.NewFromString(strings.TrimSpace(form.Amount))
		if err != nil {
			errs.Add("amount", msgInvalidNumber)
		}
		in.Amount = amount
	}
	if sub := strings.TrimSpace(form.SubCategory); sub != "" {
		in.SubCategoryID = &sub
	}
	return form, in, errs
}

// transactionFieldErrors maps the write-time checks of the transaction
// service onto the form field they concern. It returns nil for errors that
// are not about the input.
func transactionFieldErrors(err error) apperrors.FieldErrors {
	if fields, ok := fieldErrors(err); ok {
		return fields
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return nil
	}

	switch appErr.Code {
	case apperrors.ErrInvalidTransactionType.Code:
		return apperrors.FieldErrors{"transaction_type": msgInvalidChoice}
	case apperrors.ErrInvalidAmount.Code:
		return apperrors.FieldErrors{"amount": appErr.Message}
	case apperrors.ErrInvalidInput.Code:
		return apperrors.FieldErrors{"date": "This field is required."}
	case apperrors.ErrCategoryNotFound.Code, apperrors.ErrCategoryInactive.Code:
		return apperrors.FieldErrors{"category": msgInvalidChoice}
	case apperrors.ErrCategoryTypeMismatch.Code:
		return apperrors.FieldErrors{"category": appErr.Message}
	case apperrors.ErrSubCategoryNotFound.Code, apperrors.ErrSubCategoryInactive.Code:
		return apperrors.FieldErrors{"subcategory": msgInvalidChoice}
	case apperrors.ErrSubCategoryMismatch.Code:
		return apperrors.FieldErrors{"subcategory": appErr.Message}
	}
	return nil
}

// TransactionFilterForm holds the list filters as submitted.
type TransactionFilterForm struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Type     string `form:"transaction_type" binding:"omitempty,transaction_type"`
	Category string `form:"category" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"status_filter"`
	Search   string `form:"search"`
}

// Filter converts the form. ok is false when any value is invalid, in which
// case no filter applies.
func (f TransactionFilterForm) Filter() (filter services.TransactionFilter, ok bool) {
	if f.DateFrom != "" {
		from, err := parseDate(f.DateFrom)
		if err != nil {
			return services.TransactionFilter{}, false
		}
		filter.DateFrom = &from
	}
	if f.DateTo != "" {
		to, err := parseDate(f.DateTo)
		if err != nil {
			return services.TransactionFilter{}, false
		}
		filter.DateTo = &to
	}
	if f.Type != "" {
		t := models.TransactionType(f.Type)
		filter.Type = &t
	}
	if f.Category != "" {
		id := f.Category
		filter.CategoryID = &id
	}
	if f.Status != "" {
		s := models.TransactionStatus(f.Status)
		filter.Status = &s
	}
	filter.Search = strings.TrimSpace(f.Search)
	return filter, true
}

// Query encodes the non-empty filters for pagination links, ending with "&"
// when any filter is set.
func (f TransactionFilterForm) Query() template.URL {
	values := url.Values{}
	for key, value := range map[string]string{
		"date_from":        f.DateFrom,
		"date_to":          f.DateTo,
		"transaction_type": f.Type,
		"category":         f.Category,
		"status":           f.Status,
		"search":           f.Search,
	} {
		if value != "" {
			values.Set(key, value)
		}
	}
	if len(values) == 0 {
		return ""
	}
	return template.URL(values.Encode() + "&")
}

// CategoryForm is the add/edit category form as posted.
type CategoryForm struct {
	Name     string `form:"name" binding:"required,max=100"`
	Type     string `form:"type" binding:"required,category_type"`
	IsActive string `form:"is_active"`
}

// bindCategoryForm reads the posted category form. Every failing field is
// reported at once.
func bindCategoryForm(c *gin.Context) (CategoryForm, apperrors.FieldErrors) {
	var form CategoryForm
	if err := c.ShouldBind(&form); err != nil {
		return form, validator.FieldErrors(err)
	}
	return form, apperrors.FieldErrors{}
}

// Active reports whether the active box is ticked.
func (f CategoryForm) Active() bool { return formBool(f.IsActive) }

// Input converts the form to service input.
func (f CategoryForm) Input() services.CategoryInput {
	return services.CategoryInput{
		Name:     f.Name,
		Type:     models.CategoryType(f.Type),
		IsActive: f.Active(),
	}
}

// SubCategoryForm is the add/edit sub-category form as posted.
type SubCategoryForm struct {
	Category string `form:"category" binding:"required"`
	Name     string `form:"name" binding:"required,max=100"`
	IsActive string `form:"is_active"`
}

func bindSubCategoryForm(c *gin.Context) (SubCategoryForm, apperrors.FieldErrors) {
	var form SubCategoryForm
	if err := c.ShouldBind(&form); err != nil {
		return form, validator.FieldErrors(err)
	}
	return form, apperrors.FieldErrors{}
}

// Active reports whether the active box is ticked.
func (f SubCategoryForm) Active() bool { return formBool(f.IsActive) }

// Input converts the form to service input.
func (f SubCategoryForm) Input() services.SubCategoryInput {
	return services.SubCategoryInput{
		CategoryID: strings.TrimSpace(f.Category),
		Name:       f.Name,
		IsActive:   f.Active(),
	}
}
