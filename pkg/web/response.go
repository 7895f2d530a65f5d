// Package web defines common components for a web application.
package web

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Error wraps a given err into json frinedly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// BindError converts a request binding error into a response.
//
// Validation failures are reported as "<Field> <reason>", anything else verbatim.
func BindError(err error) Response {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		field := ve[0]
		return Response{Error: field.Field() + GetErrorMsg(field)}
	}

	return Error(err)
}

// GetErrorMsg returns a human readable reason of the failed validation tag.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "alphanum":
		return " accepts only alphanumeric characters"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "role":
		return " must be buyer or seller"
	case "status":
		return " must be PAID, COMPLETED or CANCELLED"
	case "money":
		return " must be a positive decimal amount"
	}

	return " is invalid"
}
