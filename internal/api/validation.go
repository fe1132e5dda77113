package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct validates a struct by its validate tags and groups the
// failure messages per field. Nil means the struct passed.
func ValidateStruct(s interface{}) map[string][]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fields := map[string][]string{}
	for _, fe := range err.(validator.ValidationErrors) {
		name := strings.ToLower(fe.Field())
		fields[name] = append(fields[name], errorMessage(fe))
	}
	return fields
}

func errorMessage(err validator.FieldError) string {
	field := strings.ToLower(err.Field())
	switch err.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "e164":
		return field + " must be an E.164 phone number"
	case "min":
		return field + " must be at least " + err.Param()
	case "max":
		return field + " must be at most " + err.Param()
	case "gte":
		return field + " must be greater than or equal to " + err.Param()
	case "lte":
		return field + " must be less than or equal to " + err.Param()
	case "oneof":
		return field + " must be one of: " + err.Param()
	default:
		return field + " is invalid"
	}
}

// RespondValidationErrors writes the grouped validation failures.
func RespondValidationErrors(c *gin.Context, fields map[string][]string) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Error:  "validation_failed",
		Fields: fields,
	})
}
