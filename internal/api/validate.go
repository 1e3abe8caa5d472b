package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidBody    = "Invalid request body"
	msgInvalidField   = "Field '%s' is invalid"
	jsonTagSeparator  = ","
	fieldTagSeparator = "."
)

// fieldMessages maps "<json field>.<failed tag>" to the message returned to
// the client.
var fieldMessages = map[string]string{
	"topic.required":           "Topic cannot be empty",
	"topic.max":                "Topic must be at most 200 characters",
	"duration.min":             "Duration must be between 1 and 60 minutes",
	"duration.max":             "Duration must be between 1 and 60 minutes",
	"text.required":            "Text cannot be empty",
	"target_language.required": "Target language is required",
	"speed.min":                "Speed must be between 0.5 and 2.0",
	"speed.max":                "Speed must be between 0.5 and 2.0",
	"pitch.min":                "Pitch must be between -10 and 10",
	"pitch.max":                "Pitch must be between -10 and 10",
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), jsonTagSeparator)
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return validate
}

// defaulter is implemented by request bodies that normalize themselves
// before validation.
type defaulter interface {
	applyDefaults()
}

// bindJSON decodes the request body into req, applies defaults and
// validates it. The returned error is always an *Error.
func bindJSON(c *gin.Context, req defaulter) error {
	err := c.ShouldBindJSON(req)
	if err != nil {
		return validationError(msgInvalidBody)
	}

	req.applyDefaults()

	return validateStruct(req)
}

func validateStruct(req any) error {
	err := getValidator().Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return validationError(msgInvalidBody)
	}

	first := fieldErrors[0]

	message, ok := fieldMessages[first.Field()+fieldTagSeparator+first.Tag()]
	if !ok {
		message = fmt.Sprintf(msgInvalidField, first.Field())
	}

	return validationError(message)
}
