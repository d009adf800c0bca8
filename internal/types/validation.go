package types

import (
	"fmt"
	"reflect"
	"strings"

	"folio/internal/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so messages match the request payload
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks a request struct against its `validate` tags.
// The returned error is an *errors.AppError of type validation.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, validationMessage(err), err)
	}
	return nil
}

// validationMessage extracts the first field failure in a readable form
func validationMessage(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		switch ve.Tag() {
		case "required":
			return fmt.Sprintf("validation error: %s is required", ve.Field())
		case "email":
			return fmt.Sprintf("validation error: %s must be a valid email address", ve.Field())
		case "min":
			return fmt.Sprintf("validation error: %s must be at least %s characters", ve.Field(), ve.Param())
		case "max":
			return fmt.Sprintf("validation error: %s must be at most %s characters", ve.Field(), ve.Param())
		case "oneof":
			return fmt.Sprintf("validation error: %s must be one of [%s]", ve.Field(), ve.Param())
		default:
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
