package errs

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// NewDatabaseError classifies a gorm/driver error for the given operation.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	if cause == nil {
		return nil
	}
	var apiErr *ApiErr
	if errors.As(cause, &apiErr) {
		return apiErr
	}
	if errors.Is(cause, gorm.ErrRecordNotFound) {
		e := NewNotFoundError(entity)
		e.Cause = cause
		return e
	}
	if errors.Is(cause, gorm.ErrDuplicatedKey) || isUniqueViolation(cause) {
		return &ApiErr{
			StatusCode: 409,
			err:        ErrConflict,
			Details:    fmt.Sprintf("%s already exists", entity),
			Cause:      cause,
		}
	}
	if errors.Is(cause, gorm.ErrForeignKeyViolated) || isForeignKeyViolation(cause) {
		return &ApiErr{
			StatusCode: 400,
			err:        ErrValidation,
			Details:    fmt.Sprintf("%s references a missing record", entity),
			Cause:      cause,
		}
	}
	return NewInternalErrorWithCause(fmt.Sprintf("failed to %s %s", operation, entity), cause)
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "foreign key constraint") || strings.Contains(msg, "FOREIGN KEY constraint failed")
}
