package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// New builds the shared validator for marketplace inputs.
func New() *validator.Validate {
	validate := validator.New()

	// Verify that the input string has visible content, not just whitespace.
	validate.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return validate
}
