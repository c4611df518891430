package errs

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinels matched with errors.Is through ApiErr.Unwrap.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("operation not allowed")
	ErrValidation           = errors.New("validation failed")
	ErrConflict             = errors.New("resource conflict")
	ErrNotFound             = errors.New("not found")
	ErrInternal             = errors.New("internal server error")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrTooLarge             = errors.New("file too large")
	ErrInvalidPath          = errors.New("invalid path")
)

type ApiErr struct {
	StatusCode int
	err        error
	Details    string              // human readable detail
	Field      string              // single offending field
	Fields     map[string][]string // offending fields for validation errors
	Cause      error               // underlying cause, never sent to clients
}

func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// GetFullError returns the message followed by the cause chain.
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause != nil {
		var inner *ApiErr
		if errors.As(e.Cause, &inner) {
			msg = fmt.Sprintf("%s -> %s", msg, inner.GetFullError())
		} else {
			msg = fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
		}
	}
	return msg
}

func (e *ApiErr) Unwrap() error {
	return e.err
}

// Message is the text safe to show to API clients.
func (e *ApiErr) Message() string {
	if e.StatusCode >= http.StatusInternalServerError {
		return ErrInternal.Error()
	}
	return e.Error()
}

func NewUnauthorizedError(details string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusUnauthorized, err: ErrUnauthorized, Details: details}
}

func NewForbiddenError(details string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusForbidden, err: ErrForbidden, Details: details}
}

// NewValidationError reports every offending field with its messages.
func NewValidationError(fields map[string][]string) *ApiErr {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    "invalid fields: " + strings.Join(names, ", "),
		Fields:     fields,
	}
}

func NewInvalidFieldError(field, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrValidation,
		Details:    fmt.Sprintf("invalid field %s: %s", field, reason),
		Field:      field,
		Fields:     map[string][]string{field: {reason}},
	}
}

func NewConflictError(details string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusConflict, err: ErrConflict, Details: details}
}

func NewNotFoundError(entity string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: ErrNotFound, Details: entity}
}

func NewInternalErrorWithCause(details string, cause error) *ApiErr {
	return &ApiErr{StatusCode: http.StatusInternalServerError, err: ErrInternal, Details: details, Cause: cause}
}

func NewUnsupportedMediaTypeError(contentType string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        ErrUnsupportedMediaType,
		Details:    fmt.Sprintf("%s is not one of %s", contentType, strings.Join(allowed, ", ")),
		Field:      "file",
	}
}

func NewTooLargeError(maxBytes int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrTooLarge,
		Details:    fmt.Sprintf("maximum size is %d bytes", maxBytes),
		Field:      "file",
	}
}

func NewInvalidPathError(p string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: ErrInvalidPath, Details: p, Field: "path"}
}

func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }
func IsForbidden(err error) bool    { return errors.Is(err, ErrForbidden) }
func IsValidation(err error) bool   { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool     { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool     { return errors.Is(err, ErrNotFound) }
func IsInvalidPath(err error) bool  { return errors.Is(err, ErrInvalidPath) }
