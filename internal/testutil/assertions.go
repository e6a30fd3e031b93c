package testutil

import (
	"errors"
	"testing"

	apperrors "faithledger/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertFieldError checks that err is a FieldErrors carrying msg for field.
func AssertFieldError(t *testing.T, err error, field, msg string) {
	t.Helper()

	var fields apperrors.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %T: %v", err, err)
	}
	if got, ok := fields[field]; !ok {
		t.Errorf("expected an error on field %q, got %v", field, fields)
	} else if msg != "" && got != msg {
		t.Errorf("field %q: expected %q, got %q", field, msg, got)
	}
}
