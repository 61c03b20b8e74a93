// Package validation wraps the struct validator shared by all request DTOs.
package validation

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Struct validates a request DTO. The returned error is a
// validator.ValidationErrors, rendered with per-field messages by the central
// error handler.
func Struct(s any) error {
	return validate.Struct(s)
}
