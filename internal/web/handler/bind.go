// Package handler holds what the route handlers share: paths, body binding and validation.
package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/mirror-ball/mirrorball/internal/apierror"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// NewValidator returns a validator reporting json field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// BindAndValidate decodes the json body into out and validates it.
// The content type is not checked and an empty body decodes as {}.
// Failures are returned as 400 errors with message and a list of FieldError as details.
func BindAndValidate(c *fiber.Ctx, v *validator.Validate, out any, message string) error {
	if body := c.Body(); len(body) > 0 {
		if err := c.App().Config().JSONDecoder(body, out); err != nil {
			return apierror.New(fiber.StatusBadRequest, message, []FieldError{{
				Field:   "body",
				Tag:     "json",
				Message: err.Error(),
			}})
		}
	}

	if err := v.Struct(out); err != nil {
		return apierror.New(fiber.StatusBadRequest, message, fieldErrors(err))
	}

	return nil
}

func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fe.Error(),
		})
	}

	return out
}
