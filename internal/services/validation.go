package services

import (
	"errors"

	"blogapi/internal/apperrors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// validationError converts ozzo validation errors into a ValidationError
// carrying one message per field.
func validationError(message string, err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		if fieldErr != nil {
			fields[field] = fieldErr.Error()
		}
	}
	return apperrors.Validation(message, fields)
}
