package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"villarent/internal/app/apperr"
)

var validate = validator.New()

// Struct validates v by its `validate` tags. The first failing field is reported
// as an invalid request using messages[field] or a generic fallback.
func Struct(v any, messages map[string]string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validation: %w", err)
	}
	field := fieldErrs[0].Field()
	if msg, ok := messages[field]; ok {
		return apperr.Invalid(msg)
	}
	return apperr.Invalid(fmt.Sprintf("%s is invalid", strings.ToLower(field)))
}
