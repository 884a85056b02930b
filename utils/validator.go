package utils

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/eerojala/My-video-game-collection/apperr"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report json names so violations match the request body.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		panic(err)
	}
}

// Validate runs the struct's validate tags and returns every broken rule.
func Validate(s interface{}) []apperr.Violation {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []apperr.Violation{{Field: "body", Reason: err.Error()}}
	}
	violations := make([]apperr.Violation, 0, len(validationErrors))
	for _, e := range validationErrors {
		violations = append(violations, apperr.Violation{
			Field:  fieldPath(e),
			Reason: formatValidationError(e),
		})
	}
	return violations
}

// BindViolations turns a JSON decoding failure into violations, e.g. a
// fractional year.
func BindViolations(err error) []apperr.Violation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []apperr.Violation{{
			Field:  typeErr.Field,
			Reason: "must be a valid " + typeErr.Type.String(),
		}}
	}
	return []apperr.Violation{{Field: "body", Reason: "must be a JSON object"}}
}

// fieldPath strips the root struct name: "GameInput.developers[0]" -> "developers[0]".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "oneof":
		return "must be one of " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "must contain at least " + e.Param() + " entries"
		}
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	default:
		return "is invalid"
	}
}
