// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "faithledger/internal/errors"
	"faithledger/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
// Field names in validation errors follow the form tag.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(formName)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("status_filter", validateStatusFilter)
	}
}

func formName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return models.TransactionType(fl.Field().String()).Valid()
}

func validateCategoryType(fl validator.FieldLevel) bool {
	return models.CategoryType(fl.Field().String()).Valid()
}

// validateStatusFilter accepts a transaction status or an empty filter.
func validateStatusFilter(fl validator.FieldLevel) bool {
	switch models.TransactionStatus(fl.Field().String()) {
	case "", models.StatusPaid, models.StatusPending:
		return true
	}
	return false
}

// FieldErrors converts binding validation errors into per-field form
// messages. Errors that are not validation errors are reported against
// the "__all__" key.
func FieldErrors(err error) apperrors.FieldErrors {
	fields := apperrors.FieldErrors{}
	if err == nil {
		return fields
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields.Add("__all__", "Enter a valid value.")
		return fields
	}
	for _, fe := range verrs {
		fields.Add(fe.Field(), message(fe))
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "transaction_type", "category_type", "status_filter", "oneof", "uuid":
		return "Select a valid choice."
	default:
		return "Enter a valid value."
	}
}
