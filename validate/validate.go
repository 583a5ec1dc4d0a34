// Package validate rejects incomplete form input before it reaches the upstream backend.
package validate

import (
	"net/mail"
	"strings"

	"github.com/devmarvs/pmboard/apperr"
)

// Required ensures a non-blank string.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation(field+" is required", &Errors{Fields: []FieldError{{Field: field, Message: field + " is required"}}})
	}
	return nil
}

// Email validates an email address. Empty values are left to Required.
func Email(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return apperr.Validation(field+" must be a valid email", err)
	}
	return nil
}

// PositiveID ensures an identifier taken from a path or form is usable.
func PositiveID(field string, value int64) error {
	if value <= 0 {
		return apperr.Validation(field+" must be a positive integer", &Errors{Fields: []FieldError{{Field: field, Message: field + " must be a positive integer"}}})
	}
	return nil
}
