package services

import (
	"animax/internal/validation"
)

// validateInput runs the struct tags and returns a validation error.
func validateInput(v interface{}) error {
	if err := validation.ValidateStruct(v); err != nil {
		return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
	}
	return nil
}
