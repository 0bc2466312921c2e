package handlers

import (
	"errors"
	"reflect"
	"strings"

	"blog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// newValidator returns a validator that reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the JSON request body into out with the app's JSON
// decoder, whatever the Content-Type. An empty body leaves out untouched so
// that presence validation reports the missing fields.
func parseBody(c *fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		return services.NewValidationError("body", "Invalid request body")
	}
	return nil
}

// validateStruct runs validate on req and converts the first failure into a
// ValidationError naming the offending field.
func validateStruct(validate *validator.Validate, req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}
	field := validationErrors[0].Field()
	return services.NewValidationError(field, field+" is required")
}
