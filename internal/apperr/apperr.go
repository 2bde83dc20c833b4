package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// AppError carries the HTTP status and the user-facing message; the wrapped
// error is for logs only.
type AppError struct {
	Code    int
	Message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.err }

func BadRequest(message string, cause ...error) *AppError {
	e := &AppError{Code: http.StatusBadRequest, Message: message}
	if len(cause) > 0 {
		e.err = cause[0]
	}
	return e
}

func NotFound(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, err: ErrNotFound}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message, err: ErrForbidden}
}

func Conflict(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, err: ErrConflict}
}

func Internal(message string, cause error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message, err: cause}
}

type Reason string

const (
	Required       Reason = "required"
	InvalidChoice  Reason = "invalid_choice"
	MustBePositive Reason = "must_be_positive"
	MustBeNonNeg   Reason = "must_be_non_negative"
	TooManyDigits  Reason = "max_digits"
	TooLong        Reason = "max_length"
	InvalidFormat  Reason = "invalid"
	InvalidNumber  Reason = "invalid_number"
	OutOfRange     Reason = "out_of_range"
)

var reasonText = map[Reason]string{
	Required:       "This field is required.",
	InvalidChoice:  "Not a valid choice.",
	MustBePositive: "Ensure this value is greater than zero.",
	MustBeNonNeg:   "Ensure this value is greater than or equal to zero.",
	TooManyDigits:  "Ensure there are no more than 6 digits in total and 2 decimal places.",
	TooLong:        "Ensure this field is not too long.",
	InvalidFormat:  "Enter a valid value.",
	InvalidNumber:  "A valid number is required.",
	OutOfRange:     "Rating must be between 1 and 5 stars.",
}

type FieldError struct {
	Field  string
	Reason Reason
}

// FieldErrors is a validation failure listing every offending field.
type FieldErrors []FieldError

func (fe *FieldErrors) Add(field string, reason Reason) {
	*fe = append(*fe, FieldError{Field: field, Reason: reason})
}

func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Reason))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, ", ")
}

// Messages renders the errors keyed by field, one message per reason.
func (fe FieldErrors) Messages() map[string][]string {
	out := make(map[string][]string, len(fe))
	for _, e := range fe {
		out[e.Field] = append(out[e.Field], reasonText[e.Reason])
	}
	return out
}

// AsFieldErrors reports whether err is (or wraps) a validation failure.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
