package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iaconlabs/multiform"
)

// Internal singleton instance to allow custom tag registration.
var defaultValidator = validator.New()

// GetValidator returns the shared validator instance used by the BindForm
// middleware. Use this to register custom validation tags or translations.
func GetValidator() *validator.Validate {
	return defaultValidator
}

// ValidationError represents a specific validation failure for a field.
// It is intended to be returned as part of a structured JSON response.
type ValidationError struct {
	// Field is the name of the struct field that failed validation.
	Field string `json:"field"`
	// Rule is the name of the validator tag that was violated (e.g., "required", "email").
	Rule string `json:"rule"`
	// Message is a human-readable description of the error.
	Message string `json:"message"`
}

// BindForm returns a middleware that binds the merged form parameters of a
// resolved multipart request into a new instance of T, using the "form"
// struct tag, and validates it with go-playground/validator. It must run
// after Multipart. On validation failure it returns 422 Unprocessable Entity
// with detailed error information; on success the validated value is stored
// in the request context under multiform.BindingKey.
func BindForm[T any](_ T) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req, ok := multiform.FromRequest(r)
			if !ok {
				http.Error(w, "multipart request not resolved", http.StatusInternalServerError)
				return
			}

			target := new(T)
			mapFormParams(target, req)

			if err := defaultValidator.Struct(target); err != nil {
				sendDetailedError(w, formatValidationErrors(err))
				return
			}

			ctx := context.WithValue(r.Context(), multiform.BindingKey, target)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// mapFormParams uses reflection to populate struct fields decorated with the
// "form" tag from the request's merged parameters. String and []string
// fields are supported.
func mapFormParams(target any, req multiform.Request) {
	val := reflect.ValueOf(target).Elem()
	typ := val.Type()

	for i := range typ.NumField() {
		tag := typ.Field(i).Tag.Get("form")
		if tag == "" {
			continue
		}
		values := req.ParameterValues(tag)
		if values == nil {
			continue
		}

		f := val.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			if len(values) > 0 {
				f.SetString(values[0])
			}
		case reflect.Slice:
			if f.Type().Elem().Kind() == reflect.String {
				f.Set(reflect.ValueOf(values))
			}
		}
	}
}

// formatValidationErrors converts internal validator errors into a slice of ValidationError.
func formatValidationErrors(err error) []ValidationError {
	var errs []ValidationError
	var vErrors validator.ValidationErrors

	if errors.As(err, &vErrors) {
		for _, vErr := range vErrors {
			errs = append(errs, ValidationError{
				Field:   strings.ToLower(vErr.Field()),
				Rule:    vErr.Tag(),
				Message: createMsgForTag(vErr),
			})
		}
	}
	return errs
}

// createMsgForTag generates a professional error message based on the failed validation tag.
func createMsgForTag(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length/value is %s", v.Param())
	case "max":
		return fmt.Sprintf("Maximum length/value is %s", v.Param())
	default:
		return fmt.Sprintf("Validation failed on rule: %s", v.Tag())
	}
}

// sendDetailedError sends a 422 response containing a list of validation errors.
func sendDetailedError(w http.ResponseWriter, errors []ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "error",
		"errors": errors,
	})
}
